package contour

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which boundaries a trace retains.
// Values match the retrieval modes of the OpenCV API.
type Mode int

const (
	// ModeExternal keeps outermost boundaries only.
	ModeExternal Mode = iota
	// ModeList keeps every boundary without nesting information.
	ModeList
	// ModeCComp keeps outermost boundaries and their immediate holes.
	ModeCComp
	// ModeTree keeps the full nesting forest.
	ModeTree
)

// Approximation selects how traced pixel chains are compressed.
type Approximation int

const (
	// ApproxNone keeps every boundary pixel.
	ApproxNone Approximation = iota + 1
	// ApproxSimple keeps only the end points of horizontal, vertical and
	// diagonal runs.
	ApproxSimple
)

// None is the sentinel for a missing hierarchy link.
const None = -1

var (
	// ErrMode is returned for an unknown retrieval mode.
	ErrMode = errors.New("unknown contour retrieval mode")
	// ErrApproximation is returned for an unknown approximation method.
	ErrApproximation = errors.New("unknown contour approximation method")
	// ErrHierarchy is returned by Result.Validate for a malformed forest.
	ErrHierarchy = errors.New("invalid contour hierarchy")
)

var modeNames = map[Mode]string{
	ModeExternal: "external",
	ModeList:     "list",
	ModeCComp:    "ccomp",
	ModeTree:     "tree",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode parses a mode name ("external", "list", "ccomp", "tree").
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrMode, "%q", s)
}

func (a Approximation) String() string {
	switch a {
	case ApproxNone:
		return "none"
	case ApproxSimple:
		return "simple"
	}
	return fmt.Sprintf("Approximation(%d)", int(a))
}

// Valid reports whether a is a known approximation.
func (a Approximation) Valid() bool {
	return a == ApproxNone || a == ApproxSimple
}

// ParseApproximation parses an approximation name ("none", "simple").
func ParseApproximation(s string) (Approximation, error) {
	switch strings.ToLower(s) {
	case "none":
		return ApproxNone, nil
	case "simple":
		return ApproxSimple, nil
	}
	return 0, errors.Wrapf(ErrApproximation, "%q", s)
}

// Boundary is one traced region outline. The first point is not repeated at
// the end.
type Boundary struct {
	Points []image.Point
	// Hole is true for a boundary that separates a region from a hole inside it.
	Hole bool
}

// Node holds the hierarchy links of one boundary. Each field is a boundary
// index or None.
type Node struct {
	Next       int
	Prev       int
	FirstChild int
	Parent     int
}

func emptyNode() Node {
	return Node{Next: None, Prev: None, FirstChild: None, Parent: None}
}

// Result is the outcome of a trace: boundaries and their hierarchy, both
// indexed by boundary id.
type Result struct {
	Boundaries []Boundary
	Hierarchy  []Node
}

// Len returns the number of boundaries.
func (r *Result) Len() int {
	return len(r.Boundaries)
}

// Children returns the ids of the direct children of id in sibling order.
// Pass None to list the top-level boundaries.
func (r *Result) Children(id int) []int {
	var first int
	if id == None {
		first = None
		for i, n := range r.Hierarchy {
			if n.Parent == None && n.Prev == None {
				first = i
				break
			}
		}
	} else {
		first = r.Hierarchy[id].FirstChild
	}
	var out []int
	for c := first; c != None; c = r.Hierarchy[c].Next {
		out = append(out, c)
		if len(out) > len(r.Hierarchy) {
			break
		}
	}
	return out
}

// Depth returns the number of ancestors of id.
func (r *Result) Depth(id int) int {
	d := 0
	for p := r.Hierarchy[id].Parent; p != None && d <= len(r.Hierarchy); p = r.Hierarchy[p].Parent {
		d++
	}
	return d
}

// Validate checks the forest invariants: every link is in range or None, no
// boundary is its own ancestor, sibling lists are doubly linked and end in
// None at both ends, and every child points back at its parent.
func (r *Result) Validate() error {
	n := len(r.Hierarchy)
	if n != len(r.Boundaries) {
		return errors.Wrapf(ErrHierarchy, "%d nodes for %d boundaries", n, len(r.Boundaries))
	}
	inRange := func(v int) bool { return v == None || (v >= 0 && v < n) }
	for i, node := range r.Hierarchy {
		if !inRange(node.Next) || !inRange(node.Prev) || !inRange(node.FirstChild) || !inRange(node.Parent) {
			return errors.Wrapf(ErrHierarchy, "node %d has a link out of range: %+v", i, node)
		}
		if node.Next != None {
			next := r.Hierarchy[node.Next]
			if next.Prev != i || next.Parent != node.Parent {
				return errors.Wrapf(ErrHierarchy, "node %d and its next sibling %d disagree", i, node.Next)
			}
		}
		if node.Prev != None && r.Hierarchy[node.Prev].Next != i {
			return errors.Wrapf(ErrHierarchy, "node %d and its previous sibling %d disagree", i, node.Prev)
		}
		if node.FirstChild != None {
			child := r.Hierarchy[node.FirstChild]
			if child.Parent != i || child.Prev != None {
				return errors.Wrapf(ErrHierarchy, "node %d has first child %d that is not a head", i, node.FirstChild)
			}
		}
		steps := 0
		for p := node.Parent; p != None; p = r.Hierarchy[p].Parent {
			if p == i || steps > n {
				return errors.Wrapf(ErrHierarchy, "node %d is its own ancestor", i)
			}
			steps++
		}
	}

	// Every node must sit on exactly one sibling chain reached from a head.
	seen := make([]bool, n)
	for i, node := range r.Hierarchy {
		if node.Prev != None {
			continue
		}
		if node.Parent != None && r.Hierarchy[node.Parent].FirstChild != i {
			return errors.Wrapf(ErrHierarchy, "node %d heads a sibling list its parent does not own", i)
		}
		for c := i; c != None; c = r.Hierarchy[c].Next {
			if seen[c] {
				return errors.Wrapf(ErrHierarchy, "sibling cycle through node %d", c)
			}
			seen[c] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			return errors.Wrapf(ErrHierarchy, "node %d is not reachable from a sibling head", i)
		}
	}
	return nil
}

package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// frame maps points to a centred, unit-scale copy so the fits work on
// well-conditioned data.
type frame struct {
	origin r2.Point
	scale  float64
}

func newFrame(pts []r2.Point) frame {
	var sum r2.Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	origin := sum.Mul(1 / float64(len(pts)))
	spread := 0.0
	for _, p := range pts {
		spread += p.Sub(origin).Norm()
	}
	scale := 1.0
	if spread > 0 {
		scale = float64(len(pts)) / spread
	}
	return frame{origin: origin, scale: scale}
}

func (f frame) apply(pts []r2.Point) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Sub(f.origin).Mul(f.scale)
	}
	return out
}

// restore maps a box found in the normalized frame back to input coordinates.
func (f frame) restore(box RotatedRect) RotatedRect {
	box.Center = box.Center.Mul(1 / f.scale).Add(f.origin)
	box.Width /= f.scale
	box.Height /= f.scale
	return box
}

// FitEllipse fits an ellipse by algebraic least squares: a conic without
// constant term is fitted first, its centre solved for, and the quadratic part
// refitted about that centre.
func FitEllipse(pts []r2.Point) (RotatedRect, error) {
	if err := need("ellipse fit", pts, 5); err != nil {
		return RotatedRect{}, err
	}
	f := newFrame(pts)
	q := f.apply(pts)
	n := len(q)

	a := mat.NewDense(n, 5, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range q {
		a.SetRow(i, []float64{-p.X * p.X, -p.Y * p.Y, -p.X * p.Y, p.X, p.Y})
		b.SetVec(i, 10000)
	}
	var g mat.VecDense
	if err := g.SolveVec(a, b); err != nil {
		return RotatedRect{}, errors.Wrapf(ErrDegenerate, "conic fit: %v", err)
	}

	// The gradient of the conic vanishes at the centre.
	grad := mat.NewDense(2, 2, []float64{2 * g.AtVec(0), g.AtVec(2), g.AtVec(2), 2 * g.AtVec(1)})
	var c mat.VecDense
	if err := c.SolveVec(grad, mat.NewVecDense(2, []float64{g.AtVec(3), g.AtVec(4)})); err != nil {
		return RotatedRect{}, errors.Wrapf(ErrDegenerate, "ellipse centre: %v", err)
	}
	center := r2.Point{X: c.AtVec(0), Y: c.AtVec(1)}

	a = mat.NewDense(n, 3, nil)
	b = mat.NewVecDense(n, nil)
	for i, p := range q {
		d := p.Sub(center)
		a.SetRow(i, []float64{d.X * d.X, d.X * d.Y, d.Y * d.Y})
		b.SetVec(i, 1)
	}
	var k mat.VecDense
	if err := k.SolveVec(a, b); err != nil {
		return RotatedRect{}, errors.Wrapf(ErrDegenerate, "axis fit: %v", err)
	}

	box, err := ellipseBox(center, k.AtVec(0), k.AtVec(1), k.AtVec(2))
	if err != nil {
		return RotatedRect{}, err
	}
	return f.restore(box), nil
}

// FitEllipseAMS fits an ellipse with the approximate mean square (Taubin)
// criterion, which normalizes the algebraic residual by its gradient. If the
// best conic is not an ellipse the direct fit is used instead.
func FitEllipseAMS(pts []r2.Point) (RotatedRect, error) {
	if err := need("ellipse fit", pts, 5); err != nil {
		return RotatedRect{}, err
	}
	f := newFrame(pts)
	q := f.apply(pts)
	inv := 1 / float64(len(q))

	// Design rows z = [x², xy, y², x, y, 1] and their x and y derivatives.
	m := mat.NewSymDense(6, nil)
	nm := mat.NewSymDense(5, nil)
	for _, p := range q {
		z := []float64{p.X * p.X, p.X * p.Y, p.Y * p.Y, p.X, p.Y, 1}
		zx := []float64{2 * p.X, p.Y, 0, 1, 0}
		zy := []float64{0, p.X, 2 * p.Y, 0, 1}
		m.SymRankOne(m, inv, mat.NewVecDense(6, z))
		nm.SymRankOne(nm, inv, mat.NewVecDense(5, zx))
		nm.SymRankOne(nm, inv, mat.NewVecDense(5, zy))
	}

	// The constant term is free of the gradient constraint, so it is
	// eliminated: f = -m12·a / m22.
	reduced := mat.NewSymDense(5, nil)
	m22 := m.At(5, 5)
	for i := 0; i < 5; i++ {
		for j := i; j < 5; j++ {
			reduced.SetSym(i, j, m.At(i, j)-m.At(i, 5)*m.At(j, 5)/m22)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(nm) {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "gradient matrix is not positive definite")
	}
	var l mat.TriDense
	chol.LTo(&l)
	var linv mat.Dense
	if err := linv.Inverse(&l); err != nil {
		return RotatedRect{}, errors.Wrapf(ErrDegenerate, "gradient factor: %v", err)
	}

	var tmp, s mat.Dense
	tmp.Mul(&linv, reduced)
	s.Mul(&tmp, linv.T())
	sym := mat.NewSymDense(5, nil)
	for i := 0; i < 5; i++ {
		for j := i; j < 5; j++ {
			sym.SetSym(i, j, (s.At(i, j)+s.At(j, i))/2)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "eigen decomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	var coef mat.VecDense
	coef.MulVec(linv.T(), vecs.ColView(0)) // eigenvalues ascend

	conic := make([]float64, 6)
	for i := 0; i < 5; i++ {
		conic[i] = coef.AtVec(i)
	}
	for i := 0; i < 5; i++ {
		conic[5] -= m.At(i, 5) * conic[i] / m22
	}

	box, err := conicBox(conic)
	if err != nil {
		return FitEllipseDirect(pts)
	}
	return f.restore(box), nil
}

// FitEllipseDirect fits an ellipse with the direct least squares method of
// Fitzgibbon, in the numerically stable form of Halíř and Flusser. The result
// is always an ellipse when one exists.
func FitEllipseDirect(pts []r2.Point) (RotatedRect, error) {
	if err := need("ellipse fit", pts, 5); err != nil {
		return RotatedRect{}, err
	}
	f := newFrame(pts)
	q := f.apply(pts)
	n := len(q)

	d1 := mat.NewDense(n, 3, nil)
	d2 := mat.NewDense(n, 3, nil)
	for i, p := range q {
		d1.SetRow(i, []float64{p.X * p.X, p.X * p.Y, p.Y * p.Y})
		d2.SetRow(i, []float64{p.X, p.Y, 1})
	}
	var s1, s2, s3 mat.Dense
	s1.Mul(d1.T(), d1)
	s2.Mul(d1.T(), d2)
	s3.Mul(d2.T(), d2)

	// T = -S3⁻¹ S2ᵀ gives the linear part from the quadratic part.
	var t mat.Dense
	if err := t.Solve(&s3, s2.T()); err != nil {
		return RotatedRect{}, errors.Wrapf(ErrDegenerate, "linear part: %v", err)
	}
	t.Scale(-1, &t)

	var reduced mat.Dense
	reduced.Mul(&s2, &t)
	reduced.Add(&s1, &reduced)

	// Premultiply by the inverse of the ellipse constraint matrix.
	cinv := mat.NewDense(3, 3, []float64{0, 0, 0.5, 0, -1, 0, 0.5, 0, 0})
	var sys mat.Dense
	sys.Mul(cinv, &reduced)

	var eig mat.Eigen
	if !eig.Factorize(&sys, mat.EigenRight) {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "eigen decomposition failed")
	}
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	best := -1
	for j := 0; j < 3; j++ {
		a, b, c := real(vecs.At(0, j)), real(vecs.At(1, j)), real(vecs.At(2, j))
		if 4*a*c-b*b > 0 {
			best = j
			break
		}
	}
	if best < 0 {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "no elliptic solution")
	}

	a1 := mat.NewVecDense(3, []float64{real(vecs.At(0, best)), real(vecs.At(1, best)), real(vecs.At(2, best))})
	var a2 mat.VecDense
	a2.MulVec(&t, a1)
	conic := []float64{a1.AtVec(0), a1.AtVec(1), a1.AtVec(2), a2.AtVec(0), a2.AtVec(1), a2.AtVec(2)}

	box, err := conicBox(conic)
	if err != nil {
		return RotatedRect{}, err
	}
	return f.restore(box), nil
}

// conicBox turns A x² + B xy + C y² + D x + E y + F = 0 into an ellipse box.
func conicBox(k []float64) (RotatedRect, error) {
	a, b, c, d, e, f := k[0], k[1], k[2], k[3], k[4], k[5]
	det := 4*a*c - b*b
	if det <= 0 {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "conic is not an ellipse")
	}
	center := r2.Point{X: (b*e - 2*c*d) / det, Y: (b*d - 2*a*e) / det}
	rhs := -(f + (d*center.X+e*center.Y)/2)
	if rhs == 0 {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "conic is a single point")
	}
	return ellipseBox(center, a/rhs, b/rhs, c/rhs)
}

// ellipseBox turns a u² + b uv + c v² = 1, with (u, v) relative to center,
// into an ellipse box.
func ellipseBox(center r2.Point, a, b, c float64) (RotatedRect, error) {
	q := mat.NewSymDense(2, []float64{a, b / 2, b / 2, c})
	var eig mat.EigenSym
	if !eig.Factorize(q, true) {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "eigen decomposition failed")
	}
	vals := eig.Values(nil)
	if vals[0] <= 0 || vals[1] <= 0 {
		return RotatedRect{}, errors.Wrap(ErrDegenerate, "conic is not an ellipse")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// The larger eigenvalue belongs to the shorter axis.
	angle := math.Atan2(vecs.At(1, 1), vecs.At(0, 1)) * 180 / math.Pi
	return RotatedRect{
		Center: center,
		Width:  2 / math.Sqrt(vals[1]),
		Height: 2 / math.Sqrt(vals[0]),
		Angle:  normalizeAngle(angle, 180),
	}, nil
}

// normalizeAngle maps degrees into [0, period).
func normalizeAngle(deg, period float64) float64 {
	deg = math.Mod(deg, period)
	if deg < 0 {
		deg += period
	}
	if deg >= period {
		deg = 0
	}
	return deg
}

package main

import (
	"encoding/json"
	"image"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/ironsheep/shape-tools-mcp/internal/assemble"
	"github.com/ironsheep/shape-tools-mcp/internal/components"
	"github.com/ironsheep/shape-tools-mcp/internal/contour"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

// loadRaster decodes the single image argument and binarizes it.
func loadRaster(c *cli.Context) (*raster.Binary, error) {
	if c.NArg() != 1 {
		return nil, errors.Errorf("%s expects exactly one image path, got %d arguments", c.Command.Name, c.NArg())
	}
	threshold := c.Int(flagThreshold)
	if threshold < 0 || threshold > 255 {
		return nil, errors.Errorf("--%s %d outside 0-255", flagThreshold, threshold)
	}
	img, err := imaging.NewImageCache(1).Load(c.Args().First())
	if err != nil {
		return nil, err
	}
	return raster.FromImage(img, uint8(threshold), c.Bool(flagInvert)), nil
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "write result")
}

func contoursAction(c *cli.Context) error {
	mode, modeErr := contour.ParseMode(c.String(flagMode))
	approx, approxErr := contour.ParseApproximation(c.String(flagMethod))
	if err := multierr.Combine(modeErr, approxErr); err != nil {
		return errors.Wrap(err, "invalid flags")
	}
	b, err := loadRaster(c)
	if err != nil {
		return err
	}
	res, err := contour.Trace(b, mode, approx, image.Point{})
	if err != nil {
		return err
	}
	return printJSON(c, assemble.Contours(res))
}

func componentsAction(c *cli.Context) error {
	conn := components.Connectivity(c.Int(flagConnectivity))
	var connErr error
	if !conn.Valid() {
		connErr = errors.Wrapf(components.ErrConnectivity, "got %d", conn)
	}
	alg, algErr := components.ParseAlgorithm(c.String(flagAlgorithm))
	if err := multierr.Combine(connErr, algErr); err != nil {
		return errors.Wrap(err, "invalid flags")
	}
	b, err := loadRaster(c)
	if err != nil {
		return err
	}
	l, err := components.Label(b, conn, alg)
	if err != nil {
		return err
	}
	return printJSON(c, assemble.Components(l, c.Bool(flagStats)))
}

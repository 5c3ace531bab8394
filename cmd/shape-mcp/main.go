// Command shape-mcp serves the shape analysis tools over MCP on stdio, and
// runs single analyses from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/shape-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	flagLogLevel     = "log-level"
	flagCacheSize    = "cache-size"
	flagThreshold    = "threshold"
	flagInvert       = "invert"
	flagMode         = "mode"
	flagMethod       = "method"
	flagConnectivity = "connectivity"
	flagAlgorithm    = "algorithm"
	flagStats        = "stats"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s %s\n  Build time: %s\n  Git commit: %s\n",
			server.Name, Version, BuildTime, GitCommit)
	}

	rasterFlags := []cli.Flag{
		&cli.IntFlag{Name: flagThreshold, Value: 128, Usage: "luminance level (0-255) at or above which pixels are foreground"},
		&cli.BoolFlag{Name: flagInvert, Usage: "treat pixels below the threshold as foreground"},
	}

	app := &cli.App{
		Name:      server.Name,
		Usage:     "MCP server for contour tracing, region labeling and shape geometry",
		Version:   Version,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagLogLevel,
				Value:   "info",
				Usage:   "log level: debug, info, warn or error",
				EnvVars: []string{"SHAPE_MCP_LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:    flagCacheSize,
				Value:   0,
				Usage:   "maximum number of decoded images kept in memory, 0 for no limit",
				EnvVars: []string{"SHAPE_MCP_CACHE_SIZE"},
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve MCP requests on stdin/stdout (default)",
				Action: serveAction,
			},
			{
				Name:      "contours",
				Usage:     "trace the boundaries in an image and print them as JSON",
				ArgsUsage: "<image>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: flagMode, Value: "tree", Usage: "external, list, ccomp or tree"},
					&cli.StringFlag{Name: flagMethod, Value: "none", Usage: "none or simple"},
				}, rasterFlags...),
				Action: contoursAction,
			},
			{
				Name:      "components",
				Usage:     "label the connected regions of an image and print them as JSON",
				ArgsUsage: "<image>",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: flagConnectivity, Value: 8, Usage: "4 or 8"},
					&cli.StringFlag{Name: flagAlgorithm, Value: "default", Usage: "default, union-find or multi-pass"},
					&cli.BoolFlag{Name: flagStats, Usage: "include per-region statistics"},
				}, rasterFlags...),
				Action: componentsAction,
			},
		},
	}
	return app
}

// newLogger builds a console logger. stdout carries the protocol, so logs
// always go to w (stderr in production).
func newLogger(level string, w io.Writer) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", flagLogLevel)
	}
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

func serveAction(c *cli.Context) error {
	if c.Args().Present() {
		return errors.Errorf("unexpected argument %q", c.Args().First())
	}
	log, err := newLogger(c.String(flagLogLevel), c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debugw("starting", "version", Version, "built", BuildTime, "commit", GitCommit,
		"cache_size", c.Int(flagCacheSize))
	srv := server.New(
		server.WithLogger(log),
		server.WithCacheLimit(c.Int(flagCacheSize)),
		server.WithVersion(Version),
	)
	if err := srv.Run(ctx, c.App.Reader, c.App.Writer); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Command meditate inspects type models: it resolves members the way a
// dynamic call would, lists what a type exposes, and imports models from
// YAML schemas, Go packages and protobuf files into a SQLite catalog.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/meditation/internal/catalog"
	"github.com/funvibe/meditation/internal/config"
	"github.com/funvibe/meditation/internal/logger"
	"github.com/funvibe/meditation/internal/schema"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	schemas    []string
	snapshot   string
	verbose    bool

	cfg   *config.Config
	log   *zap.Logger
	paint painter
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: logger.Nop()}

	root := &cobra.Command{
		Use:   "meditate",
		Short: "Resolve and inspect members of a type model",
		Long: `meditate works on a type model: classes and interfaces with constructors,
methods and fields, loaded from YAML schema files (see meditate.yaml), a catalog
snapshot (--from), or imported from Go packages and .proto files.

Member resolution picks the most specific candidate for a list of argument types,
ranking widening before boxing before unboxing before varargs spreading.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.OutOrStdout())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync(a.log)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: meditate.yaml found from the working directory up)")
	flags.StringSliceVarP(&a.schemas, "schema", "s", nil, "additional schema files")
	flags.StringVar(&a.snapshot, "from", "", "load a catalog snapshot by ID or name")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newResolveCmd(a),
		newMembersCmd(a),
		newDistanceCmd(a),
		newImportCmd(a),
		newCatalogCmd(a),
	)
	return root
}

func (a *app) init(out io.Writer) error {
	path := a.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if path, err = config.FindConfig(wd); err != nil {
			return err
		}
	}

	if path == "" {
		a.cfg = config.Default()
	} else {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	lc := logger.DefaultConfig()
	if a.cfg.Log.Level != "" {
		lc.Level = a.cfg.Log.Level
	}
	if a.cfg.Log.Format != "" {
		lc.Format = a.cfg.Log.Format
	}
	if a.verbose {
		lc.Level = "debug"
	}
	l, err := logger.Init(lc)
	if err != nil {
		return err
	}
	a.log = l
	a.paint = newPainter(out)
	if path != "" {
		a.log.Debug("loaded config", zap.String("path", path))
	}
	return nil
}

// universe builds the model from configured schemas, --schema files and
// the --from snapshot.
func (a *app) universe(ctx context.Context) (*ts.Universe, error) {
	u := ts.NewUniverse()
	paths := append(a.cfg.SchemaPaths(), a.schemas...)
	if len(paths) > 0 {
		if err := schema.Load(u, paths...); err != nil {
			return nil, err
		}
		a.log.Debug("loaded schemas", zap.Strings("paths", paths))
	}
	if a.snapshot != "" {
		c, err := a.catalog()
		if err != nil {
			return nil, err
		}
		defer c.Close()
		if _, err := c.Load(ctx, a.snapshot, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (a *app) catalog() (*catalog.Catalog, error) {
	path := a.cfg.Resolve(a.cfg.Catalog)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}
	return catalog.Open(path, catalog.WithLogger(logger.ForComponent("catalog")))
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/meditation/internal/goimport"
	"github.com/funvibe/meditation/internal/logger"
	"github.com/funvibe/meditation/internal/protoimport"
	"github.com/funvibe/meditation/internal/schema"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

func newImportCmd(a *app) *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a type model from Go packages or protobuf files",
		Long: `Import declares types from an external source on top of the configured model
and prints the result as a schema file, or stores it in the catalog with --save.`,
	}
	cmd.PersistentFlags().StringVar(&save, "save", "", "store the result as a catalog snapshot with this name")

	var dir string
	goCmd := &cobra.Command{
		Use:   "go <package pattern>...",
		Short: "Import exported structs and interfaces of Go packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe(cmd.Context())
			if err != nil {
				return err
			}
			im := goimport.New(dir, goimport.WithLogger(logger.ForComponent("goimport")))
			if _, err := im.Import(u, args...); err != nil {
				return err
			}
			return a.emit(cmd, u, save)
		},
	}
	goCmd.Flags().StringVar(&dir, "dir", "", "directory the patterns are resolved from")

	var importPaths []string
	protoCmd := &cobra.Command{
		Use:   "proto <file.proto>...",
		Short: "Import messages, enums and services of protobuf files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe(cmd.Context())
			if err != nil {
				return err
			}
			paths := importPaths
			if len(paths) == 0 {
				for _, p := range a.cfg.ProtoImportPaths {
					paths = append(paths, a.cfg.Resolve(p))
				}
			}
			im := protoimport.New(
				protoimport.WithImportPaths(paths...),
				protoimport.WithLogger(logger.ForComponent("protoimport")),
			)
			if _, err := im.Import(u, args...); err != nil {
				return err
			}
			return a.emit(cmd, u, save)
		},
	}
	protoCmd.Flags().StringSliceVarP(&importPaths, "proto-path", "I", nil, "import paths (default: proto_import_paths from the config)")

	cmd.AddCommand(goCmd, protoCmd)
	return cmd
}

// emit prints u as a schema file, or saves it when name is set.
func (a *app) emit(cmd *cobra.Command, u *ts.Universe, name string) error {
	if name == "" {
		data, err := schema.Export(u).Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	c, err := a.catalog()
	if err != nil {
		return err
	}
	defer c.Close()
	snap, err := c.Save(cmd.Context(), name, u)
	if err != nil {
		return err
	}
	a.log.Debug("import saved", zap.String("id", snap.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d types)\n", a.paint.bold(snap.ID), snap.Name, snap.Types)
	return nil
}

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage stored type-model snapshots",
		Long: `The catalog is a SQLite database (catalog in meditate.yaml, default meditate.db)
holding snapshots of type models. Snapshots are addressed by ID or by name; the
newest snapshot wins when a name is reused.`,
	}

	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Store the current model (schemas plus --from) as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, u, args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			defer c.Close()
			snaps, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPES\tCREATED")
			for _, s := range snaps {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Types, s.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Print a snapshot as a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			defer c.Close()
			s, err := c.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.paint.faint(fmt.Sprintf("# %s %s %s", s.ID, s.Name, s.CreatedAt.Format(time.RFC3339))))
			_, err = out.Write(s.Content)
			return err
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Remove a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(saveCmd, listCmd, showCmd, deleteCmd)
	return cmd
}

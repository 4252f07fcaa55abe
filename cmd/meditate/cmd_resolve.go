package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/funvibe/meditation/internal/config"
	"github.com/funvibe/meditation/internal/hierarchy"
	"github.com/funvibe/meditation/internal/holder"
	"github.com/funvibe/meditation/internal/logger"
	"github.com/funvibe/meditation/internal/resolve"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		argList    string
		staticOnly bool
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <type> <constructor|method|field> [name]",
		Short: "Select the member a call with the given argument types would use",
		Example: `  meditate resolve Account method deposit --args int
  meditate resolve Account constructor --args String,long
  meditate resolve Account method open --args null --static
  meditate resolve Shape method label --args String,int,int --all`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe(cmd.Context())
			if err != nil {
				return err
			}
			t, err := u.Lookup(args[0])
			if err != nil {
				return err
			}
			kind, ok := ts.ParseMemberKind(args[1])
			if !ok {
				return fmt.Errorf("unknown member kind %q", args[1])
			}
			var name string
			if len(args) == 3 {
				name = args[2]
			}
			argTypes, err := u.ParseTypes(argList)
			if err != nil {
				return fmt.Errorf("--args: %w", err)
			}

			r := resolve.New(u, resolve.WithLogger(logger.ForComponent("resolve")))
			out := cmd.OutOrStdout()

			if all {
				for _, c := range rank(r, t, kind, name, staticOnly, argTypes) {
					fmt.Fprintf(out, "%6d  %s\n", c.First, c.Second)
				}
			}

			sel := resolve.For(kind)
			if name != "" {
				sel = sel.Named(name)
			}
			if staticOnly && kind != ts.Constructor {
				sel = sel.StaticOnly()
			}
			if kind == ts.Field {
				if name == "" {
					return fmt.Errorf("field lookup needs a name")
				}
				sel = sel.UseAny()
				argTypes = nil
			} else {
				sel = sel.MostSpecific()
			}

			m, err := r.Select(t, sel, argTypes)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, a.paint.ok(m.String()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&argList, "args", "a", "", "comma separated argument types, e.g. String,int,null")
	cmd.Flags().BoolVar(&staticOnly, "static", false, "only consider static members")
	cmd.Flags().BoolVar(&all, "all", false, "also list every compatible candidate with its weight")
	return cmd
}

// rank returns the compatible candidates ordered by weight, then signature.
func rank(r *resolve.Resolver, t *ts.TClass, kind ts.MemberKind, name string, staticOnly bool, args []ts.Type) []holder.ComparablePair[int, string] {
	var out []holder.ComparablePair[int, string]
	for m := range hierarchy.Members(t, kind, staticOnly && kind != ts.Constructor) {
		if name != "" && m.Name != name {
			continue
		}
		w, ok := r.Weight(m, args)
		if !ok {
			continue
		}
		out = append(out, holder.NewComparablePair(w, m.String()))
	}
	slices.SortFunc(out, holder.ComparablePair[int, string].Compare)
	return out
}

func newMembersCmd(a *app) *cobra.Command {
	var (
		kinds      []string
		staticOnly bool
	)
	cmd := &cobra.Command{
		Use:   "members <type>",
		Short: "List the members visible on a type, most-derived first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe(cmd.Context())
			if err != nil {
				return err
			}
			t, err := u.Lookup(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, k := range kinds {
				kind, ok := ts.ParseMemberKind(k)
				if !ok {
					return fmt.Errorf("unknown member kind %q", k)
				}
				for m := range hierarchy.Members(t, kind, staticOnly && kind != ts.Constructor) {
					line := m.String()
					if m.Owner != t {
						line += a.paint.faint("  (from " + m.Owner.Name + ")")
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", []string{"constructor", "field", "method"}, "member kinds to list")
	cmd.Flags().BoolVar(&staticOnly, "static", false, "only list static members")
	return cmd
}

func newDistanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <required> <supplied>",
		Short: "Print the conversion distance from a supplied to a required type",
		Example: `  meditate distance long int        # 1
  meditate distance Object Integer  # 4
  meditate distance int Integer     # 10000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe(cmd.Context())
			if err != nil {
				return err
			}
			required, err := u.ParseType(args[0])
			if err != nil {
				return err
			}
			supplied, err := u.ParseType(args[1])
			if err != nil {
				return err
			}
			d := resolve.Distance(u, required, supplied)
			if d == config.Incompatible {
				fmt.Fprintln(cmd.OutOrStdout(), a.paint.fail("incompatible"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

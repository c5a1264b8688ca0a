package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrumery/fgraph"
)

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	var primed []string

	cmd := &cobra.Command{
		Use:   "order <leader.yaml> <follower.yaml>",
		Short: "Print the fused variable order of two diagrams",
		Long: `Print the variable order used for combining two diagrams. Variables
given with --primed are placed as late as possible.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := NewRegistry()
			ds, err := LoadDiagrams(cmd.Context(), reg, args, fgraph.Logger(rootOpts.logger))
			if err != nil {
				return WrapExitError(ExitCommandError, "loading diagrams", err)
			}
			vars, err := lookupAll(reg, primed)
			if err != nil {
				return err
			}
			fused := fgraph.FuseOrder(ds[0].Order(), ds[1].Order(), vars...)
			names := make([]string, len(fused))
			for k, v := range fused {
				names[k] = v.Name()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " "))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&primed, "primed", nil, "variables placed as late as possible")

	return cmd
}

// lookupAll returns the variables with the given names.
func lookupAll(reg *Registry, names []string) ([]*fgraph.Variable, error) {
	res := make([]*fgraph.Variable, 0, len(names))
	for _, name := range names {
		v, ok := reg.Lookup(name)
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown variable %q", name))
		}
		res = append(res, v)
	}
	return res, nil
}

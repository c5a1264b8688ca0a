package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrumery/fgraph"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <diagram.yaml> [VAR=value...]",
		Short: "Evaluate a diagram on an assignment",
		Long: `Evaluate a diagram for the given assignment. Values are either
labels or modality indices.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := NewRegistry()
			d, err := LoadDiagram(args[0], reg, fgraph.Logger(rootOpts.logger))
			if err != nil {
				return WrapExitError(ExitCommandError, "loading diagram", err)
			}
			inst, err := parseAssignment(reg, args[1:])
			if err != nil {
				return err
			}
			v, err := d.Eval(inst)
			if err != nil {
				return WrapExitError(ExitFailure, "eval", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	return cmd
}

// parseAssignment reads a list of VAR=value arguments.
func parseAssignment(reg *Registry, args []string) (map[*fgraph.Variable]int, error) {
	inst := make(map[*fgraph.Variable]int, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid assignment %q: expected VAR=value", arg))
		}
		v, ok := reg.Lookup(name)
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown variable %q", name))
		}
		m, ok := v.Modality(value)
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid value %q for variable %s", value, name))
		}
		inst[v] = m
	}
	return inst, nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrumery/fgraph"
)

// operator returns the predefined operator with the given name.
func operator(flag, name string) (func(float64, float64) float64, error) {
	op, ok := fgraph.OperatorByName[float64](name)
	if !ok {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("invalid --%s %q: must be one of %s", flag, name, strings.Join(fgraph.OperatorNames(), ", ")))
	}
	return op, nil
}

// NewCombineCommand creates the combine command.
func NewCombineCommand(rootOpts *RootOptions) *cobra.Command {
	var opname string

	cmd := &cobra.Command{
		Use:   "combine <leader.yaml> <follower.yaml>",
		Short: "Combine two diagrams pointwise",
		Long: `Compute the pointwise combination of two diagrams with possibly
different variable orders and print the result.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := operator("op", opname)
			if err != nil {
				return err
			}
			ds, err := LoadDiagrams(cmd.Context(), NewRegistry(), args, fgraph.Logger(rootOpts.logger))
			if err != nil {
				return WrapExitError(ExitCommandError, "loading diagrams", err)
			}
			var stats fgraph.Stats
			res, err := fgraph.Combine[float64](ds[0], ds[1], op,
				fgraph.Logger(rootOpts.logger),
				fgraph.Statistics(&stats))
			if err != nil {
				return WrapExitError(ExitFailure, "combine", err)
			}
			rootOpts.logger.Debug("combine statistics", "explored", stats.Explored, "hits", stats.MemoHits, "produced", stats.Produced)
			return writeDiagram(rootOpts, cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&opname, "op", "times", "combination operator")

	return cmd
}

// NewRegressCommand creates the regress command.
func NewRegressCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		opname  string
		project string
		target  string
		neutral float64
		primed  []string
	)

	cmd := &cobra.Command{
		Use:   "regress <leader.yaml> <follower.yaml>",
		Short: "Combine two diagrams and eliminate a variable",
		Long: `Compute the combination of two diagrams and eliminate the target
variable with the projection operator, in a single traversal. For instance,
with --op times --project plus, the result is the sum over the target of the
product of the two diagrams.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cop, err := operator("op", opname)
			if err != nil {
				return err
			}
			pop, err := operator("project", project)
			if err != nil {
				return err
			}
			reg := NewRegistry()
			ds, err := LoadDiagrams(cmd.Context(), reg, args, fgraph.Logger(rootOpts.logger))
			if err != nil {
				return WrapExitError(ExitCommandError, "loading diagrams", err)
			}
			vars, err := lookupAll(reg, append([]string{target}, primed...))
			if err != nil {
				return err
			}
			var stats fgraph.Stats
			res, err := fgraph.Regress[float64](ds[0], ds[1], vars[1:], vars[0], cop, pop, neutral,
				fgraph.Logger(rootOpts.logger),
				fgraph.Statistics(&stats))
			if err != nil {
				return WrapExitError(ExitFailure, "regress", err)
			}
			rootOpts.logger.Debug("regress statistics", "explored", stats.Explored, "hits", stats.MemoHits, "produced", stats.Produced)
			return writeDiagram(rootOpts, cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&opname, "op", "times", "combination operator")
	cmd.Flags().StringVar(&project, "project", "plus", "projection operator")
	cmd.Flags().StringVar(&target, "target", "", "variable to eliminate (required)")
	cmd.Flags().Float64Var(&neutral, "neutral", 0, "neutral element of the projection operator")
	cmd.Flags().StringSliceVar(&primed, "primed", nil, "variables placed as late as possible")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

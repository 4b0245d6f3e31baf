package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taigrr/loopsub/pkg/loop"
	"github.com/taigrr/loopsub/pkg/math3d"
)

func (a *app) ringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ring <model> <vertex>",
		Short: "Print the one-ring of a vertex",
		Long: `Print the neighbours of a vertex in walk order, its valence and the Loop
smoothing weight it receives. With -n the model is subdivided first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("vertex index %q: %w", args[1], err)
			}
			return a.runRing(cmd, args[0], v)
		},
	}
	cmd.Flags().IntVarP(&a.levels, "levels", "n", 0, "Subdivision levels to apply first")
	return cmd
}

func (a *app) runRing(cmd *cobra.Command, modelPath string, v int) error {
	_, s, err := a.loadSurface(modelPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("levels") {
		zero := 0
		a.cfg.Levels = &zero
	}
	if err := a.subdivide(cmd.Context(), s); err != nil {
		return err
	}
	ring, err := loop.OneRing(s, v)
	if err != nil {
		return err
	}
	printRing(cmd.OutOrStdout(), s.Positions[v], v, ring)
	return nil
}

func printRing(w io.Writer, p math3d.Vec3, v int, ring []int) {
	n := len(ring)
	fmt.Fprintf(w, "Vertex:     %d at (%.4f, %.4f, %.4f)\n", v, p.X, p.Y, p.Z)
	fmt.Fprintf(w, "Valence:    %d\n", n)
	fmt.Fprintf(w, "Weight:     %.6f\n", loop.WeightConstant(n))
	fmt.Fprintf(w, "One-ring:   %v\n", ring)
}

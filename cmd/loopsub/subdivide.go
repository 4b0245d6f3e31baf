package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigrr/loopsub/pkg/models"
)

func (a *app) subdivideCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "subdivide <model> -o <output>",
		Short: "Subdivide a model and write the result",
		Long: `Subdivide a closed triangle mesh with Loop's scheme and write the refined
mesh. The output format follows the extension: .obj, .stl or .glb.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSubdivide(cmd, args[0], output)
		},
	}
	a.addLevelsFlag(cmd, "Subdivision levels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.obj, .stl, .glb)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runSubdivide(cmd *cobra.Command, input, output string) error {
	if _, err := models.FormatFromPath(output); err != nil {
		return err
	}
	_, s, err := a.loadSurface(input)
	if err != nil {
		return err
	}
	v, f := s.VertexCount(), s.FaceCount()
	if err := a.subdivide(cmd.Context(), s); err != nil {
		return err
	}
	if err := models.Save(output, s.ToMesh(modelName(input))); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d levels, %d -> %d vertices, %d -> %d triangles, wrote %s\n",
		input, a.cfg.LevelCount(), v, s.VertexCount(), f, s.FaceCount(), output)
	return nil
}

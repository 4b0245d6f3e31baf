package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/loopsub/pkg/diredge"
	"github.com/taigrr/loopsub/pkg/models"
)

func (a *app) infoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <model>",
		Short: "Display model information",
		Long: `Display information about a 3D model: format, vertex and triangle counts,
bounding box, and whether it is a closed oriented manifold that can be
subdivided, with its Euler characteristic and valence histogram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(cmd.OutOrStdout(), args[0])
		},
	}
	a.addLevelsFlag(cmd, "Levels to project counts for")
	return cmd
}

func (a *app) runInfo(w io.Writer, modelPath string) error {
	format := "built-in"
	var fileSize int64 = -1
	if !strings.HasPrefix(modelPath, models.BuiltinPrefix) {
		info, err := os.Stat(modelPath)
		if err != nil {
			return fmt.Errorf("cannot access file: %w", err)
		}
		fileSize = info.Size()
		f, err := models.FormatFromPath(modelPath)
		if err != nil {
			return err
		}
		format = strings.ToUpper(string(f))
	}

	mesh, err := models.Load(modelPath, a.cfg.LoadOptions())
	if err != nil {
		return err
	}
	mesh.CalculateBounds()
	size := mesh.Size()
	center := mesh.Center()

	fmt.Fprintf(w, "File:       %s\n", filepath.Base(modelPath))
	fmt.Fprintf(w, "Format:     %s\n", format)
	if fileSize >= 0 {
		fmt.Fprintf(w, "Size:       %.2f KB\n", float64(fileSize)/1024)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vertices:   %d\n", mesh.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", mesh.TriangleCount())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds Min: (%.3f, %.3f, %.3f)\n", mesh.BoundsMin.X, mesh.BoundsMin.Y, mesh.BoundsMin.Z)
	fmt.Fprintf(w, "Bounds Max: (%.3f, %.3f, %.3f)\n", mesh.BoundsMax.X, mesh.BoundsMax.Y, mesh.BoundsMax.Z)
	fmt.Fprintf(w, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	fmt.Fprintln(w)

	s, err := diredge.FromMesh(mesh)
	if err != nil {
		fmt.Fprintf(w, "Manifold:   no (%v)\n", err)
		return nil
	}
	chi := s.EulerCharacteristic()
	fmt.Fprintf(w, "Manifold:   closed, oriented\n")
	fmt.Fprintf(w, "Edges:      %d\n", s.EdgeCount()/2)
	fmt.Fprintf(w, "Euler:      %d (genus %d)\n", chi, (2-chi)/2)

	hist, err := s.ValenceHistogram()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Valence:   ")
	for _, n := range slices.Sorted(maps.Keys(hist)) {
		fmt.Fprintf(w, " %d×%d", hist[n], n)
	}
	fmt.Fprintln(w)

	if levels := a.cfg.LevelCount(); levels > 0 {
		v, e, f := projectCounts(s.VertexCount(), s.EdgeCount(), s.FaceCount(), levels)
		fmt.Fprintf(w, "Refined:    %d levels -> %d vertices, %d edges, %d triangles\n", levels, v, e/2, f)
	}
	return nil
}

// projectCounts applies the per-level counting laws: V' = V + E/2,
// E' = 4E, F' = 4F, with E counting directed edges.
func projectCounts(v, e, f, levels int) (int, int, int) {
	for range levels {
		v += e / 2
		e *= 4
		f *= 4
	}
	return v, e, f
}

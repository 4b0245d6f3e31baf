package main

import (
	"fmt"
	"image"
	"math"

	"github.com/spf13/cobra"

	"github.com/taigrr/loopsub/pkg/math3d"
	"github.com/taigrr/loopsub/pkg/render"
)

type renderFlags struct {
	output     string
	wire       bool
	allEdges   bool
	yaw, pitch float64
}

func (a *app) renderCommand() *cobra.Command {
	var rf renderFlags
	cmd := &cobra.Command{
		Use:   "render <model> -o <image>",
		Short: "Render a subdivided model to an image",
		Long: `Render a model after subdivision, shaded or as a wireframe. The image
format follows the extension: .png, .webp, .bmp or .tga.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args[0], rf)
		},
	}
	a.addLevelsFlag(cmd, "Subdivision levels")
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "Output image (.png, .webp, .bmp, .tga)")
	cmd.Flags().BoolVar(&rf.wire, "wire", false, "Draw a wireframe instead of a shaded surface")
	cmd.Flags().BoolVar(&rf.allEdges, "all-edges", false, "Wireframe: also draw edges of back faces")
	cmd.Flags().Float64Var(&rf.yaw, "yaw", 30, "View rotation around Y in degrees")
	cmd.Flags().Float64Var(&rf.pitch, "pitch", 20, "View rotation around X in degrees")
	cmd.Flags().IntVar(&a.flags.Width, "width", 0, "Image width (default from config, 512)")
	cmd.Flags().IntVar(&a.flags.Height, "height", 0, "Image height (default: width)")
	cmd.Flags().IntVar(&a.flags.Supersample, "supersample", 0, "Supersampling factor (default from config, 2)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, modelPath string, rf renderFlags) error {
	if _, err := render.ImageFormatFromPath(rf.output); err != nil {
		return err
	}
	opts, err := a.cfg.RenderOptions()
	if err != nil {
		return err
	}
	opts.HiddenLines = !rf.allEdges

	mesh, s, err := a.loadSurface(modelPath)
	if err != nil {
		return err
	}
	// Fit on the input so every level is framed the same way.
	fit := mesh.FitTransform(2)
	if err := a.subdivide(cmd.Context(), s); err != nil {
		return err
	}

	view := math3d.RotateX(deg(rf.pitch)).Mul(math3d.RotateY(deg(rf.yaw))).Mul(fit)
	var img image.Image
	if rf.wire {
		img, err = render.Wireframe(s, view, opts)
		if err != nil {
			return err
		}
	} else {
		img = render.Shaded(s, view, opts)
	}
	if err := render.SaveImage(rf.output, img); err != nil {
		return fmt.Errorf("write %s: %w", rf.output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d triangles, wrote %s (%dx%d)\n",
		modelPath, s.FaceCount(), rf.output, opts.Width, opts.Height)
	return nil
}

func deg(d float64) float64 {
	return d * math.Pi / 180
}

// loopsub - Loop subdivision for closed triangle meshes
// Refine OBJ, STL and glTF models, inspect their topology, render them to
// images or explore them in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/loopsub/internal/config"
	"github.com/taigrr/loopsub/pkg/diredge"
	"github.com/taigrr/loopsub/pkg/loop"
	"github.com/taigrr/loopsub/pkg/models"
)

var version = "dev"

// app carries settings shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	flags      config.Flags
	levels     int
	cfg        config.Config
}

func main() {
	a := &app{}
	cmd := a.rootCommand()
	if err := fang.Execute(context.Background(), cmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loopsub",
		Short: "Loop subdivision for closed triangle meshes",
		Long: `loopsub - Loop subdivision for closed triangle meshes

Refines OBJ, STL and glTF/GLB models one or more levels with Loop's scheme.
Built-in primitives are available as res:tetrahedron, res:octahedron,
res:icosahedron and res:cube.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: user config dir/loopsub/config.json)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	cmd.PersistentFlags().Float64Var(&a.flags.MergeTolerance, "merge", 0, "Weld vertices closer than this distance")
	cmd.PersistentFlags().BoolVar(&a.flags.NoClean, "no-clean", false, "Keep degenerate and duplicate faces")

	cmd.AddCommand(
		a.subdivideCommand(),
		a.infoCommand(),
		a.ringCommand(),
		a.renderCommand(),
		a.viewCommand(),
	)
	return cmd
}

// addLevelsFlag registers -n on a subcommand.
func (a *app) addLevelsFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().IntVarP(&a.levels, "levels", "n", 1, usage)
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.verbose {
		log.SetLogLevel(log.Debug)
	}
	if f := cmd.Flags().Lookup("levels"); f != nil && f.Changed {
		a.flags.Levels = &a.levels
	}
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	cfg.Resolve(a.flags)
	a.cfg = cfg
	log.Debugf("config: levels=%d size=%dx%d supersample=%d", cfg.LevelCount(), cfg.RenderWidth, cfg.RenderHeight, cfg.Supersample)
	return nil
}

// loadSurface loads a model and builds its directed-edge surface.
func (a *app) loadSurface(path string) (*models.Mesh, *diredge.Surface, error) {
	mesh, err := models.Load(path, a.cfg.LoadOptions())
	if err != nil {
		return nil, nil, err
	}
	s, err := diredge.FromMesh(mesh)
	if err != nil {
		return mesh, nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("loaded %s: %d vertices, %d triangles", path, s.VertexCount(), s.FaceCount())
	return mesh, s, nil
}

// subdivide runs the configured number of levels, logging each one.
func (a *app) subdivide(ctx context.Context, s *diredge.Surface) error {
	return loop.SubdivideLevels(ctx, s, a.cfg.LevelCount(), func(st loop.Stats) {
		log.S(log.Info, "level done",
			log.Any("level", st.Level),
			log.Any("vertices", st.Vertices),
			log.Any("triangles", st.Faces),
			log.Str("took", st.Duration.String()))
	})
}

// modelName is the display name for a model path.
func modelName(path string) string {
	if strings.HasPrefix(path, models.BuiltinPrefix) {
		return strings.TrimPrefix(path, models.BuiltinPrefix)
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

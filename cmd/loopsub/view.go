package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"fortio.org/log"
	"fortio.org/terminal/ansipixels"
	"fortio.org/terminal/ansipixels/tcolor"
	"github.com/spf13/cobra"

	"github.com/taigrr/loopsub/pkg/render"
)

// maxViewFaces bounds interactive refinement.
const maxViewFaces = 1 << 20

func (a *app) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <model>",
		Short: "Explore a model and its subdivision levels in the terminal",
		Long: `Interactive terminal viewer.

Controls:
  Mouse drag  - Rotate model
  Scroll      - Zoom in/out
  W/S/A/D     - Pitch and yaw
  Q/E         - Roll left/right
  + or N      - Subdivide one more level
  - or U      - Undo the last level
  X           - Toggle wireframe
  B           - Toggle backface culling
  L           - Position light (move mouse, click to set)
  Space       - Toggle spin
  R           - Reset view
  ?           - Toggle HUD overlay
  Esc         - Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(args[0])
		},
	}
	a.addLevelsFlag(cmd, "Initial subdivision levels")
	cmd.Flags().Float64Var(&a.flags.FPS, "fps", 0, "Target FPS (default from config, 60)")
	return cmd
}

// HUD renders an overlay with model info and controls.
type HUD struct {
	filename  string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	message   string
	state     *ViewState
	stack     *levelStack
}

// NewHUD creates a new HUD.
func NewHUD(filename string, state *ViewState, stack *levelStack) *HUD {
	return &HUD{
		filename: filename,
		fpsTime:  time.Now(),
		state:    state,
		stack:    stack,
	}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw renders the HUD overlay to the terminal using ansipixels.
func (h *HUD) Draw(ap *ansipixels.AnsiPixels) {
	if h.message != "" {
		ap.WriteCentered(ap.H-2, "%s%s%s", tcolor.BrightYellow.Foreground(), h.message, tcolor.Reset)
	}
	if !h.state.ShowHUD {
		return
	}
	s := h.stack.current()

	ap.WriteAt(0, 0, tcolor.Green.Foreground()+"%.0f FPS "+tcolor.Reset, h.fps)
	ap.WriteCentered(0, "%s", h.filename)
	ap.WriteRight(0, tcolor.Cyan.Foreground()+"level %d  %d verts  %d tris"+tcolor.Reset,
		h.stack.level(), s.VertexCount(), s.FaceCount())

	checkWire := "[ ]"
	if h.state.Wireframe {
		checkWire = "[✓]"
	}
	checkCull := "[ ]"
	if h.state.BackfaceCull {
		checkCull = "[✓]"
	}
	ap.WriteAt(0, ap.H-1, "%s Wireframe  %s Cull", checkWire, checkCull)
	if h.state.LightMode {
		ap.WriteCentered(ap.H-1, "%sLIGHT: click to set%s", tcolor.BrightYellow.Foreground(), tcolor.Reset)
	}
	if d := h.stack.lastDuration(); d > 0 {
		ap.WriteRight(ap.H-1, "%s+/n refine  -/u undo  (last %v)%s", tcolor.Yellow.Foreground(), d.Round(time.Microsecond), tcolor.Reset)
	} else {
		ap.WriteRight(ap.H-1, "%s+/n refine  -/u undo%s", tcolor.Yellow.Foreground(), tcolor.Reset)
	}
}

//nolint:gocognit,gocyclo,funlen // one big input switch, like any viewer loop.
func (a *app) runView(modelPath string) error {
	mesh, s, err := a.loadSurface(modelPath)
	if err != nil {
		return err
	}
	fit := mesh.FitTransform(2)

	stack := newLevelStack(s, maxViewFaces)
	for range a.cfg.LevelCount() {
		if err := stack.refine(); err != nil {
			return err
		}
	}

	opts, err := a.cfg.RenderOptions()
	if err != nil {
		return err
	}

	fps := a.cfg.FPS
	ap := ansipixels.NewAnsiPixels(fps)
	if err := ap.Open(); err != nil {
		return fmt.Errorf("open ansipixels: %w", err)
	}
	defer func() {
		ap.ShowCursor()
		ap.MouseTrackingOff()
		ap.Out.Flush()
		ap.Restore()
	}()
	ap.SyncBackgroundColor()
	ap.MouseTrackingOn()
	ap.HideCursor()

	if ap.W <= 0 || ap.H <= 0 {
		return fmt.Errorf("invalid terminal size: %dx%d", ap.W, ap.H)
	}

	// Using 2x height for half-block characters
	fb := render.NewFramebuffer(ap.W, ap.H*2)
	fb.BG = color.RGBA{ap.Background.R, ap.Background.G, ap.Background.B, 255}
	rasterizer := render.NewRasterizer(fb)
	wireColor := render.RGB(0, 255, 128)

	rotation := NewRotationState(int(math.Round(fps)))
	viewState := NewViewState(opts.LightDir)
	hud := NewHUD(modelName(modelPath), viewState, stack)

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	lastFrame := time.Now()
	lastMouseX, lastMouseY := 0, 0

	ap.OnMouse = func() {
		switch {
		case ap.MouseWheelUp():
			viewState.ZoomBy(1.1)
		case ap.MouseWheelDown():
			viewState.ZoomBy(1 / 1.1)
		case ap.LeftDrag():
			dx := ap.Mx - lastMouseX
			dy := ap.My - lastMouseY
			rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
		}
		if viewState.LightMode {
			viewState.PendingLight = ScreenToLightDir(ap.Mx, ap.My, ap.W, ap.H)
			if ap.MouseRelease() {
				viewState.LightDir = viewState.PendingLight
				viewState.LightMode = false
			}
		}
		lastMouseX, lastMouseY = ap.Mx, ap.My
	}
	ap.OnResize = func() error {
		fb.Resize(ap.W, ap.H*2)
		return nil
	}

	err = ap.FPSTicks(func() bool {
		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		for _, b := range ap.Data {
			switch b {
			case 'q', 'Q':
				inputTorque.roll = -torqueStrength
			case 'e', 'E':
				inputTorque.roll = torqueStrength
			case 'w', 'W':
				inputTorque.pitch = -torqueStrength
			case 's', 'S':
				inputTorque.pitch = torqueStrength
			case 'a', 'A':
				inputTorque.yaw = -torqueStrength
			case 'd', 'D':
				inputTorque.yaw = torqueStrength
			case '+', '=', 'n', 'N':
				hud.message = ""
				if err := stack.refine(); err != nil {
					if !errors.Is(err, errTooDense) {
						log.Errf("refine: %v", err)
					}
					hud.message = err.Error()
				}
			case '-', '_', 'u', 'U':
				hud.message = ""
				if !stack.undo() {
					hud.message = "already at the input mesh"
				}
			case 'x', 'X':
				viewState.Wireframe = !viewState.Wireframe
			case 'b', 'B':
				viewState.BackfaceCull = !viewState.BackfaceCull
			case 'l', 'L':
				viewState.LightMode = true
				viewState.PendingLight = viewState.LightDir
			case 'r', 'R':
				rotation.Reset()
				viewState.Zoom = 1
			case '?':
				viewState.ShowHUD = !viewState.ShowHUD
			case ' ':
				viewState.SpinMode = !viewState.SpinMode
				if viewState.SpinMode {
					rotation.Yaw.Velocity = 0.02
				}
			case 27, 3, 4: // Escape, Ctrl-C, Ctrl-D
				return false
			}
		}

		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9
		rotation.Update(!viewState.SpinMode)

		transform := rotation.Matrix().Mul(fit)
		rasterizer.Zoom = render.DefaultZoom * viewState.Zoom
		rasterizer.DisableBackfaceCulling = !viewState.BackfaceCull

		fb.Clear()
		surface := stack.current()
		if viewState.Wireframe {
			rasterizer.DrawMeshWireframe(surface, transform, wireColor)
		} else {
			rasterizer.DrawMeshGouraud(surface, transform, opts.Surface, viewState.Light())
		}

		ap.ClearScreen()
		if err := ap.ShowScaledImage(fb.ToImage()); err != nil {
			log.Errf("show image: %v", err)
			return false
		}
		hud.UpdateFPS()
		hud.Draw(ap)
		return true
	})
	if err != nil {
		return fmt.Errorf("main loop: %w", err)
	}
	return nil
}

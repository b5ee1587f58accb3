// lumen - parallel CPU ray tracer
// Renders YAML scene files (or a built-in demo scene) to PPM/PNG/JPG, or
// interactively in the terminal.
//
// Controls (interactive mode):
//
//	W/S         - Move forward/backward
//	A/D         - Move left/right
//	R/F         - Move up/down
//	Home        - Return to the scene's starting camera position
//	P           - Save the current frame next to -out (or frame.png)
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/disintegration/imaging"
	"golang.org/x/term"

	"github.com/tlawson/lumen/pkg/math3d"
	"github.com/tlawson/lumen/pkg/render"
	"github.com/tlawson/lumen/pkg/scene"
)

var (
	scenePath = flag.String("scene", "", "Path to a YAML scene file (default: built-in demo scene)")
	outPath   = flag.String("out", "", "Output image path (.ppm, .png or .jpg); renders once and exits")
	width     = flag.Int("width", 1280, "Output image width")
	height    = flag.Int("height", 800, "Output image height")
	fov       = flag.Float64("fov", 1.05, "Vertical field of view in radians")
	workers   = flag.Int("workers", 0, "Worker pool size (default: hardware concurrency)")
	view      = flag.Bool("view", false, "Open the interactive terminal viewer")
	targetFPS = flag.Int("fps", 15, "Viewer target FPS")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lumen - parallel CPU ray tracer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lumen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nViewer controls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Move forward/backward/left/right\n")
		fmt.Fprintf(os.Stderr, "  R/F         - Move up/down\n")
		fmt.Fprintf(os.Stderr, "  Home        - Return to the starting camera position\n")
		fmt.Fprintf(os.Stderr, "  P           - Save the current frame\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sc, err := buildScene()
	if err != nil {
		return err
	}

	if *outPath != "" && !*view {
		return renderToFile(sc, *outPath)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; use -out to render to a file")
	}
	return runViewer(sc)
}

func buildScene() (*scene.Scene, error) {
	if *scenePath == "" {
		return scene.Default(), nil
	}
	sc, err := scene.Load(*scenePath)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	return sc, nil
}

// renderToFile renders one frame and writes it by extension.
func renderToFile(sc *scene.Scene, path string) error {
	fb := render.NewFrameBuffer(*width, *height)
	r := render.NewRenderer(*fov, fb)
	r.SetWorkers(*workers)

	status := r.Render(fb, sc)
	fb.Normalize()

	if err := saveFrame(fb, path); err != nil {
		return err
	}

	fmt.Println(status)
	fmt.Printf("wrote %s\n", path)
	return nil
}

// saveFrame writes the framebuffer by extension: PPM natively, everything
// else through imaging.
func saveFrame(fb *render.FrameBuffer, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		return fb.WritePPM(path)
	}
	if err := imaging.Save(fb.ToImage(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// moveAxis tracks velocity along one camera axis with spring decay, so a
// tapped key glides the camera instead of teleporting it.
type moveAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// newMoveAxis creates an axis with a critically damped spring pulling the
// velocity back to zero.
func newMoveAxis(fps int) moveAxis {
	return moveAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 5.0, 1.0),
	}
}

// Update decays the velocity toward zero and returns this frame's travel.
func (a *moveAxis) Update() float64 {
	step := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return step
}

// moveState holds the three camera translation axes.
type moveState struct {
	X, Y, Z moveAxis
}

func newMoveState(fps int) *moveState {
	return &moveState{
		X: newMoveAxis(fps),
		Y: newMoveAxis(fps),
		Z: newMoveAxis(fps),
	}
}

// Update advances all axes and returns the frame's camera offset.
func (m *moveState) Update() math3d.Vec3 {
	return math3d.V3(m.X.Update(), m.Y.Update(), m.Z.Update())
}

func (m *moveState) ApplyImpulse(x, y, z float64) {
	m.X.Velocity += x
	m.Y.Velocity += y
	m.Z.Velocity += z
}

func runViewer(sc *scene.Scene) error {
	tty := uv.DefaultTerminal()

	cols, rows, err := tty.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := tty.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	tty.EnterAltScreen()
	tty.HideCursor()
	tty.Resize(cols, rows)

	// Half-block cells double the vertical resolution; dimensions align to
	// the renderer's patch size so no edge pixels are skipped.
	fb := render.NewFrameBuffer(patchAligned(cols), patchAligned(rows*2))
	renderer := render.NewRenderer(*fov, fb)
	renderer.SetWorkers(*workers)

	home := sc.Camera
	movement := newMoveState(*targetFPS)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	const moveStrength = 0.8
	var lastStatus string
	savedFrames := 0

	resize := func(c, r int) {
		cols, rows = c, r
		tty.Erase()
		tty.Resize(cols, rows)
		fb = render.NewFrameBuffer(patchAligned(cols), patchAligned(rows*2))
		renderer = render.NewRenderer(*fov, fb)
		renderer.SetWorkers(*workers)
	}

	events := tty.Events()

	cleanup := func() {
		tty.ExitAltScreen()
		tty.ShowCursor()
		tty.Shutdown(context.Background())
		if lastStatus != "" {
			fmt.Println(lastStatus)
		}
	}

	frame := time.Second / time.Duration(*targetFPS)

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil

		case ev, ok := <-events:
			if !ok {
				cleanup()
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				resize(ev.Width, ev.Height)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"), ev.MatchString("q"):
					cancel()
				case ev.MatchString("w", "up"):
					movement.ApplyImpulse(0, 0, -moveStrength)
				case ev.MatchString("s", "down"):
					movement.ApplyImpulse(0, 0, moveStrength)
				case ev.MatchString("a", "left"):
					movement.ApplyImpulse(-moveStrength, 0, 0)
				case ev.MatchString("d", "right"):
					movement.ApplyImpulse(moveStrength, 0, 0)
				case ev.MatchString("r"):
					movement.ApplyImpulse(0, moveStrength, 0)
				case ev.MatchString("f"):
					movement.ApplyImpulse(0, -moveStrength, 0)
				case ev.MatchString("home"):
					sc.Camera = home
				case ev.MatchString("p"):
					savedFrames++
					path := snapshotPath(savedFrames)
					if err := saveFrame(fb, path); err == nil {
						lastStatus = fmt.Sprintf("saved %s", path)
					}
				}
			}

		default:
			start := time.Now()

			if offset := movement.Update(); offset != math3d.Zero3() {
				sc.OffsetCamera(offset)
			}

			lastStatus = renderer.Render(fb, sc)
			fb.Normalize()
			fb.Draw(tty, cols, rows)
			if err := tty.Display(); err != nil {
				cleanup()
				return fmt.Errorf("display: %w", err)
			}

			if elapsed := time.Since(start); elapsed < frame {
				time.Sleep(frame - elapsed)
			}
		}
	}
}

// patchAligned rounds n down to a multiple of the renderer's patch size,
// never below one patch.
func patchAligned(n int) int {
	n -= n % render.PatchSize
	if n < render.PatchSize {
		n = render.PatchSize
	}
	return n
}

// snapshotPath derives the viewer's save-frame path from -out.
func snapshotPath(n int) string {
	base := *outPath
	if base == "" {
		base = "frame.png"
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(base, ext), n, ext)
}

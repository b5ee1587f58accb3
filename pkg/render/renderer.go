package render

import (
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tlawson/lumen/pkg/math3d"
	"github.com/tlawson/lumen/pkg/scene"
)

// PatchSize is the side of the square pixel patches handed to workers.
// 32×32 keeps a patch's samples cache-local.
const PatchSize = 32

// WorkersEnv overrides the worker-pool size when set to a positive integer.
const WorkersEnv = "LUMEN_WORKERS"

// Renderer back-projects pixels into primary rays and drives the
// patch-parallel render. It borrows the scene and framebuffer for the
// duration of one Render call and owns no per-render state.
type Renderer struct {
	fov     float64
	halfFov float64
	width   float64
	height  float64
	ratio   float64
	workers int
}

// NewRenderer creates a renderer for the given vertical field of view (in
// radians) and framebuffer geometry. The worker count defaults to the
// hardware concurrency, or to the WorkersEnv override.
func NewRenderer(fov float64, fb *FrameBuffer) *Renderer {
	workers := runtime.NumCPU()
	if env := os.Getenv(WorkersEnv); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			workers = n
		}
	}

	return &Renderer{
		fov:     fov,
		halfFov: math.Tan(fov / 2),
		width:   float64(fb.Width),
		height:  float64(fb.Height),
		ratio:   float64(fb.Width) / float64(fb.Height),
		workers: workers,
	}
}

// SetWorkers fixes the worker-pool size. Values below one are ignored.
func (r *Renderer) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

// Backproject returns the normalized world-space direction of the primary
// ray through pixel column i, row j.
func (r *Renderer) Backproject(i, j int) math3d.Vec3 {
	return math3d.V3(
		2*(float64(i)/r.width-0.5)*r.halfFov*r.ratio,
		-2*(float64(j)/r.height-0.5)*r.halfFov,
		-1,
	).Normalize()
}

// patch is one unit of work: a square pixel region and its local sample
// buffer, owned by a single worker until the gather phase.
type patch struct {
	col     int
	row     int
	samples []math3d.Vec3
}

// Render fills the framebuffer with one sample per pixel and returns a
// status message with the elapsed time and throughput. The scene is
// read-only for the duration of the call; two renders of the same scene at
// the same resolution produce identical buffers regardless of the pool
// size.
func (r *Renderer) Render(fb *FrameBuffer, sc *scene.Scene) string {
	start := time.Now()

	if fb.Width%PatchSize != 0 || fb.Height%PatchSize != 0 {
		log.Printf("render: %dx%d is not a multiple of the %d-pixel patch size, edge pixels are skipped",
			fb.Width, fb.Height, PatchSize)
	}

	widthPatches := fb.Width / PatchSize
	heightPatches := fb.Height / PatchSize

	patches := make([]patch, widthPatches*heightPatches)

	var g errgroup.Group
	g.SetLimit(r.workers)

	for p := range patches {
		g.Go(func() error {
			r.renderPatch(&patches[p], p, widthPatches, sc)
			return nil
		})
	}

	// Patch tasks never fail; the only error path is the barrier itself.
	_ = g.Wait()

	// Sequential gather: each patch lands at its fixed region regardless of
	// completion order.
	for _, p := range patches {
		n := 0
		for j := 0; j < PatchSize; j++ {
			for i := 0; i < PatchSize; i++ {
				fb.Pixels[p.row+j][p.col+i] = p.samples[n]
				n++
			}
		}
	}

	elapsed := time.Since(start)
	rays := widthPatches * heightPatches * PatchSize * PatchSize
	return fmt.Sprintf("rendered %d primary rays in %v (%.2f Mray/s, %d workers)",
		rays, elapsed.Round(time.Millisecond), float64(rays)/elapsed.Seconds()/1e6, r.workers)
}

// renderPatch back-projects and traces every pixel of patch p into a local
// buffer.
func (r *Renderer) renderPatch(out *patch, p, widthPatches int, sc *scene.Scene) {
	out.col = (p % widthPatches) * PatchSize
	out.row = (p / widthPatches) * PatchSize
	out.samples = make([]math3d.Vec3, 0, PatchSize*PatchSize)

	for j := 0; j < PatchSize; j++ {
		for i := 0; i < PatchSize; i++ {
			dir := r.Backproject(out.col+i, out.row+j)
			out.samples = append(out.samples,
				CastRay(sc.Camera, dir, sc.Shapes, sc.Lights, sc.Background, 1))
		}
	}
}

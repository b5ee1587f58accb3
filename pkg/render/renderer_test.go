package render

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tlawson/lumen/pkg/math3d"
	"github.com/tlawson/lumen/pkg/scene"
)

func TestBackproject(t *testing.T) {
	fb := NewFrameBuffer(64, 64)
	r := NewRenderer(1.5, fb)

	// The center pixel looks straight down -z.
	center := r.Backproject(32, 32)
	if math.Abs(center.X) > 0.05 || math.Abs(center.Y) > 0.05 {
		t.Errorf("center direction = %v, want near (0, 0, -1)", center)
	}
	if center.Z >= 0 {
		t.Errorf("center direction looks backward: %v", center)
	}

	// All directions are unit length.
	for _, p := range [][2]int{{0, 0}, {63, 0}, {0, 63}, {63, 63}, {32, 10}} {
		dir := r.Backproject(p[0], p[1])
		if d := math.Abs(dir.LenSq() - 1); d > 1e-12 {
			t.Errorf("|Backproject(%d, %d)|² = %v, want 1", p[0], p[1], dir.LenSq())
		}
	}

	// Pixel columns increase x; pixel rows decrease y.
	left, right := r.Backproject(0, 32), r.Backproject(63, 32)
	if left.X >= right.X {
		t.Errorf("x does not grow with the pixel column: %v vs %v", left.X, right.X)
	}
	top, bottom := r.Backproject(32, 0), r.Backproject(32, 63)
	if top.Y <= bottom.Y {
		t.Errorf("y does not shrink with the pixel row: %v vs %v", top.Y, bottom.Y)
	}
}

// Scenario: a single red sphere at the image center at 64×64, fov 1.5.
func TestRenderRedSphereScene(t *testing.T) {
	fb := NewFrameBuffer(64, 64)
	r := NewRenderer(1.5, fb)

	status := r.Render(fb, redSphereScene())
	if status == "" {
		t.Error("empty status message")
	}

	center := fb.At(32, 32)
	if center.X <= 0 {
		t.Errorf("center pixel = %v, want a red component", center)
	}
	if center.Y != 0 || center.Z != 0 {
		t.Errorf("center pixel = %v, want zero green and blue", center)
	}

	if corner := fb.At(0, 0); corner != math3d.Zero3() {
		t.Errorf("corner pixel = %v, want black", corner)
	}
}

// Determinism: the same scene renders bit-identically regardless of the
// worker-pool size.
func TestRenderDeterministicAcrossWorkers(t *testing.T) {
	sc := scene.Default()

	fb1 := NewFrameBuffer(256, 256)
	r1 := NewRenderer(1.0, fb1)
	r1.SetWorkers(1)
	r1.Render(fb1, sc)

	fb8 := NewFrameBuffer(256, 256)
	r8 := NewRenderer(1.0, fb8)
	r8.SetWorkers(8)
	r8.Render(fb8, sc)

	if diff := cmp.Diff(fb1.Bytes(), fb8.Bytes()); diff != "" {
		t.Errorf("framebuffers differ between 1 and 8 workers:\n%s", diff)
	}
}

// Rendering twice into the same buffer must produce the same samples.
func TestRenderRepeatable(t *testing.T) {
	sc := scene.Default()

	fb := NewFrameBuffer(64, 64)
	r := NewRenderer(1.0, fb)

	r.Render(fb, sc)
	first := fb.Bytes()
	r.Render(fb, sc)

	if diff := cmp.Diff(first, fb.Bytes()); diff != "" {
		t.Errorf("second render differs:\n%s", diff)
	}
}

// The camera offset shifts what the primary rays see.
func TestRenderCameraOffset(t *testing.T) {
	sc := redSphereScene()

	fb := NewFrameBuffer(64, 64)
	r := NewRenderer(1.5, fb)
	r.Render(fb, sc)
	if fb.At(32, 32) == math3d.Zero3() {
		t.Fatal("sphere not visible before the offset")
	}

	sc.OffsetCamera(math3d.V3(50, 0, 0))
	r.Render(fb, sc)
	if got := fb.At(32, 32); got != math3d.Zero3() {
		t.Errorf("center pixel = %v after moving the camera away, want black", got)
	}
}

// Dimensions that are not multiples of the patch size truncate: the ragged
// edge keeps whatever was in the buffer.
func TestRenderTruncatesRaggedEdge(t *testing.T) {
	fb := NewFrameBuffer(48, 48)
	sentinel := math3d.V3(9, 9, 9)
	for j := range fb.Pixels {
		for i := range fb.Pixels[j] {
			fb.Pixels[j][i] = sentinel
		}
	}

	r := NewRenderer(1.5, fb)
	r.Render(fb, redSphereScene())

	// The single 32×32 patch is rendered over.
	if fb.At(0, 0) == sentinel {
		t.Error("patch area was not rendered")
	}
	// Pixels outside any patch are untouched.
	if fb.At(47, 47) != sentinel {
		t.Errorf("ragged-edge pixel overwritten: %v", fb.At(47, 47))
	}
}

func TestRenderStatusMessage(t *testing.T) {
	fb := NewFrameBuffer(32, 32)
	r := NewRenderer(1.5, fb)
	r.SetWorkers(2)

	status := r.Render(fb, redSphereScene())
	for _, want := range []string{"1024 primary rays", "2 workers"} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q does not mention %q", status, want)
		}
	}
}

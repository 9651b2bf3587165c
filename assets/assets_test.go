package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/gfx/headless"
	"github.com/bootzin/BootEngine-sub000/resource"
	"github.com/bootzin/BootEngine-sub000/shader"
)

func TestEmbeddedShadersParse(t *testing.T) {
	for _, backend := range []string{"ebiten", "headless"} {
		t.Run(backend, func(t *testing.T) {
			stages, err := shader.Load(Shaders(), ShaderPath(backend, "sprite"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			for _, st := range []gfx.Stage{gfx.StageVertex, gfx.StageFragment} {
				if _, ok := stages[st]; !ok {
					t.Fatalf("missing %s stage", st)
				}
			}
		})
	}
}

func TestLoadShaderSet(t *testing.T) {
	dev := headless.NewDevice(false)
	cache := resource.NewCache[gfx.ShaderSet]()
	set, err := LoadShaderSet(dev, cache, "headless", "sprite")
	if err != nil {
		t.Fatalf("LoadShaderSet: %v", err)
	}
	if got, ok := cache.Get("sprite"); !ok || got != set {
		t.Fatalf("shader set not cached")
	}
	if _, err := LoadShaderSet(dev, cache, "headless", "sprite"); !errors.Is(err, resource.ErrDuplicateName) {
		t.Fatalf("second load err = %v, want ErrDuplicateName", err)
	}
	if _, err := LoadShaderSet(dev, cache, "vulkan", "sprite"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestTextureLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "textures"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := filepath.Join(dir, "textures", "red.png")
	writePNG(t, file, 2, 2, color.RGBA{R: 0xff, A: 0xff})

	dev := headless.NewDevice(false)
	cache := resource.NewCache[gfx.Texture]()
	l := NewTextureLoader(dev, cache, dir, nil)

	tex, err := l.Load("textures/red.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.Width() != 2 || tex.Height() != 2 {
		t.Fatalf("size = %dx%d", tex.Width(), tex.Height())
	}
	if px := headless.Pixels(tex); px[0] != 0xff || px[1] != 0 || px[3] != 0xff {
		t.Fatalf("pixels = %v", px[:4])
	}
	again, err := l.Load("assets/textures/red.png")
	if err != nil || again != tex {
		t.Fatalf("second Load = %v, %v; want cached texture", again, err)
	}

	writePNG(t, file, 2, 2, color.RGBA{B: 0xff, A: 0xff})
	if err := l.Reload(file); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if px := headless.Pixels(tex); px[0] != 0 || px[2] != 0xff {
		t.Fatalf("pixels after reload = %v", px[:4])
	}

	writePNG(t, file, 4, 4, color.RGBA{G: 0xff, A: 0xff})
	if err := l.Reload(file); !errors.Is(err, ErrSizeChanged) {
		t.Fatalf("Reload resized = %v, want ErrSizeChanged", err)
	}
	if err := l.Reload(filepath.Join(dir, "textures", "unknown.png")); err != nil {
		t.Fatalf("Reload of unloaded file = %v", err)
	}
	if _, err := l.Load("textures/missing.png"); err == nil {
		t.Fatalf("Load of missing file succeeded")
	}
}

func TestFromImageConvertsAndDedupes(t *testing.T) {
	dev := headless.NewDevice(false)
	cache := resource.NewCache[gfx.Texture]()
	l := NewTextureLoader(dev, cache, t.TempDir(), nil)

	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.NRGBA{G: 0xff, A: 0xff})
	first, err := l.FromImage("checker", src)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if first.Width() != 2 || first.Height() != 1 {
		t.Fatalf("size = %dx%d, want 2x1", first.Width(), first.Height())
	}
	if px := headless.Pixels(first); px[1] != 0xff || px[3] != 0xff {
		t.Fatalf("pixels = %v", px)
	}

	live := dev.Live()
	second, err := l.FromImage("checker", src)
	if err != nil || second != first {
		t.Fatalf("duplicate FromImage = %v, %v; want cached texture", second, err)
	}
	if dev.Live() != live {
		t.Fatalf("duplicate texture not released")
	}
}

func TestCleanAssetPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"textures/a.png", "textures/a.png"},
		{"assets/textures/a.png", "textures/a.png"},
		{"./textures/../textures/a.png", "textures/a.png"},
		{"/home/me/game/assets/textures/a.png", "textures/a.png"},
		{"/tmp/a.png", "a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanAssetPath(tt.in); got != tt.want {
				t.Fatalf("cleanAssetPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsTextureFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.png": true, "b.PNG": true, "c.webp": true, "d.bmp": true,
		"e.yaml": false, "f": false, "g.shader": false,
	} {
		if got := isTextureFile(path); got != want {
			t.Fatalf("isTextureFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcherReportsTextureWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(dir, "tile.png")
	writePNG(t, target, 1, 1, color.RGBA{A: 0xff})

	select {
	case got := <-w.Events:
		if got != target {
			t.Fatalf("event for %q, want %q", got, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for texture write")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for range w.Events {
	}
}

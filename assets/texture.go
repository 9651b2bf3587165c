package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/resource"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrSizeChanged = errors.New("assets: texture size changed")

// DecodeRGBA decodes a png, jpeg, bmp or webp image into premultiplied RGBA.
func DecodeRGBA(r io.Reader) (*image.RGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return toRGBA(src), nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// TextureLoader creates textures from files under an asset directory and
// registers them in a cache keyed by their asset-relative path.
type TextureLoader struct {
	dev   gfx.Device
	cache *resource.Cache[gfx.Texture]
	root  string
	fsys  fs.FS
	log   *zap.Logger
}

func NewTextureLoader(dev gfx.Device, cache *resource.Cache[gfx.Texture], dir string, log *zap.Logger) *TextureLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextureLoader{
		dev:   dev,
		cache: cache,
		root:  dir,
		fsys:  os.DirFS(dir),
		log:   log.Named("textures"),
	}
}

// Dir returns the directory textures are loaded from.
func (l *TextureLoader) Dir() string {
	return l.root
}

// Load returns the cached texture for rel, decoding and uploading it on the
// first request.
func (l *TextureLoader) Load(rel string) (gfx.Texture, error) {
	name := cleanAssetPath(rel)
	if t, ok := l.cache.Get(name); ok {
		return t, nil
	}
	img, err := l.decode(name)
	if err != nil {
		return nil, err
	}
	return l.FromImage(name, img)
}

// FromImage uploads img and registers it under name. If name is already
// registered the cached texture wins and the new one is released.
func (l *TextureLoader) FromImage(name string, img image.Image) (gfx.Texture, error) {
	rgba := toRGBA(img)
	w, h := uint32(rgba.Rect.Dx()), uint32(rgba.Rect.Dy())
	t, err := l.dev.CreateTexture(gfx.TextureDescription{Width: w, Height: h, Format: gfx.FormatRGBA8})
	if err != nil {
		return nil, fmt.Errorf("assets: create texture %q: %w", name, err)
	}
	if err := l.dev.UpdateTexture(t, rgba.Pix, 0, 0, w, h); err != nil {
		t.Dispose()
		return nil, fmt.Errorf("assets: upload texture %q: %w", name, err)
	}
	if err := l.cache.Add(name, t); err != nil {
		t.Dispose()
		if existing, ok := l.cache.Get(name); ok {
			return existing, nil
		}
		return nil, err
	}
	l.log.Debug("texture loaded", zap.String("name", name), zap.Uint32("width", w), zap.Uint32("height", h))
	return t, nil
}

// Reload re-uploads the texture backing the file at path. Files that were
// never loaded are ignored. A changed size is reported with ErrSizeChanged
// and leaves the texture untouched.
func (l *TextureLoader) Reload(path string) error {
	name := l.nameFor(path)
	t, ok := l.cache.Get(name)
	if !ok {
		return nil
	}
	img, err := l.decode(name)
	if err != nil {
		return err
	}
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	if w != t.Width() || h != t.Height() {
		return fmt.Errorf("%w: %q is %dx%d, was %dx%d", ErrSizeChanged, name, w, h, t.Width(), t.Height())
	}
	if err := l.dev.UpdateTexture(t, img.Pix, 0, 0, w, h); err != nil {
		return fmt.Errorf("assets: reload %q: %w", name, err)
	}
	l.log.Info("texture reloaded", zap.String("name", name))
	return nil
}

func (l *TextureLoader) nameFor(p string) string {
	rel, err := filepath.Rel(l.root, p)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return cleanAssetPath(p)
}

func (l *TextureLoader) decode(name string) (*image.RGBA, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("assets: open %q: %w", name, err)
	}
	defer f.Close()
	img, err := DecodeRGBA(f)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %q: %w", name, err)
	}
	return img, nil
}

package app

import (
	"fmt"

	"github.com/bootzin/BootEngine-sub000/assets"
	"github.com/bootzin/BootEngine-sub000/config"
	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/gfx/ebitengfx"
	"github.com/bootzin/BootEngine-sub000/gfx/headless"
	"github.com/bootzin/BootEngine-sub000/render"
	"github.com/bootzin/BootEngine-sub000/resource"
	"go.uber.org/zap"
)

// Context holds the engine services every subsystem receives explicitly.
type Context struct {
	Config   *config.Config
	Logger   *zap.Logger
	Device   gfx.Device
	Textures *resource.Cache[gfx.Texture]
	Shaders  *resource.Cache[gfx.ShaderSet]
	Loader   *assets.TextureLoader
}

// NewContext creates the graphics device selected by cfg, the resource caches
// and the sprite shader set.
func NewContext(cfg *config.Config, log *zap.Logger) (*Context, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	var dev gfx.Device
	switch cfg.Graphics.Backend {
	case config.BackendHeadless:
		dev = headless.NewDevice(cfg.Graphics.SwapYAxis)
	case config.BackendEbiten:
		dev = ebitengfx.NewDevice(log)
	default:
		return nil, fmt.Errorf("app: unknown graphics backend %q", cfg.Graphics.Backend)
	}

	ctx := &Context{
		Config:   cfg,
		Logger:   log,
		Device:   dev,
		Textures: resource.NewCache[gfx.Texture](),
		Shaders:  resource.NewCache[gfx.ShaderSet](),
	}
	if _, err := assets.LoadShaderSet(dev, ctx.Shaders, cfg.Graphics.Backend, render.SpriteShaderName); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	ctx.Loader = assets.NewTextureLoader(dev, ctx.Textures, cfg.Assets.Dir, log)

	log.Info("graphics device ready",
		zap.String("backend", dev.Features().Name),
		zap.Bool("reverse_depth", cfg.Graphics.ReverseDepth),
		zap.Bool("swap_y_axis", cfg.Graphics.SwapYAxis))
	return ctx, nil
}

// Dispose releases every cached GPU object.
func (c *Context) Dispose() {
	c.Textures.Range(func(name string, t gfx.Texture) bool {
		t.Dispose()
		c.Textures.Remove(name)
		return true
	})
	c.Shaders.Range(func(name string, s gfx.ShaderSet) bool {
		s.Dispose()
		c.Shaders.Remove(name)
		return true
	})
}

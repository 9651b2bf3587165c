// Package config loads the engine configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/bootzin/BootEngine-sub000/camera"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalid = errors.New("config: invalid value")

const (
	BackendEbiten   = "ebiten"
	BackendHeadless = "headless"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Graphics GraphicsConfig `toml:"graphics"`
	Camera   CameraConfig   `toml:"camera"`
	Assets   AssetsConfig   `toml:"assets"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
	VSync     bool   `toml:"vsync"`
	TPS       int    `toml:"tps"` // fixed update rate, ticks per second
}

type GraphicsConfig struct {
	Backend      string     `toml:"backend"` // "ebiten" or "headless"
	ReverseDepth bool       `toml:"reverse_depth"`
	SwapYAxis    bool       `toml:"swap_y_axis"`
	ClearColor   [4]float32 `toml:"clear_color"`
}

type CameraConfig struct {
	Projection string  `toml:"projection"` // "orthographic" or "perspective"
	Size       float32 `toml:"size"`
	FovY       float32 `toml:"fov_y"` // radians
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
	Zoom       float32 `toml:"zoom"`
}

type AssetsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "BootEngine Sandbox",
			Width:     1280,
			Height:    720,
			Resizable: true,
			VSync:     true,
			TPS:       60,
		},
		Graphics: GraphicsConfig{
			Backend:    BackendEbiten,
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
		},
		Camera: CameraConfig{
			Projection: "orthographic",
			Size:       1,
			FovY:       mgl32.DegToRad(45),
			Near:       -1,
			Far:        1,
			Zoom:       1,
		},
		Assets: AssetsConfig{
			Dir: "assets",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	switch c.Graphics.Backend {
	case BackendEbiten, BackendHeadless:
	default:
		return fmt.Errorf("%w: graphics.backend %q", ErrInvalid, c.Graphics.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("%w: window.tps %d", ErrInvalid, c.Window.TPS)
	}
	if c.Camera.Zoom < camera.MinZoom {
		return fmt.Errorf("%w: camera.zoom %v below %v", ErrInvalid, c.Camera.Zoom, camera.MinZoom)
	}
	switch c.Camera.Projection {
	case "orthographic":
		if c.Camera.Size <= 0 {
			return fmt.Errorf("%w: camera.size %v", ErrInvalid, c.Camera.Size)
		}
	case "perspective":
		if c.Camera.FovY <= 0 || c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
			return fmt.Errorf("%w: perspective fov %v near %v far %v", ErrInvalid, c.Camera.FovY, c.Camera.Near, c.Camera.Far)
		}
	default:
		return fmt.Errorf("%w: camera.projection %q", ErrInvalid, c.Camera.Projection)
	}
	return nil
}

// Lens builds the camera lens described by the camera and graphics sections.
func (c *Config) Lens() camera.Lens {
	opts := camera.Options{ReverseDepth: c.Graphics.ReverseDepth, SwapYAxis: c.Graphics.SwapYAxis}
	if c.Camera.Projection == "perspective" {
		return camera.Lens{
			Kind:        camera.Perspective,
			Perspective: camera.PerspectiveParams{FovY: c.Camera.FovY, Near: c.Camera.Near, Far: c.Camera.Far},
			Zoom:        c.Camera.Zoom,
			Options:     opts,
		}
	}
	return camera.Lens{
		Kind:         camera.Orthographic,
		Orthographic: camera.OrthographicParams{Size: c.Camera.Size, Near: c.Camera.Near, Far: c.Camera.Far},
		Zoom:         c.Camera.Zoom,
		Options:      opts,
	}
}

// Clear returns the configured clear color.
func (g GraphicsConfig) Clear() color.Color {
	to8 := func(v float32) uint8 {
		return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
	}
	a := g.ClearColor[3]
	return color.NRGBA{R: to8(g.ClearColor[0]), G: to8(g.ClearColor[1]), B: to8(g.ClearColor[2]), A: to8(a)}
}

package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/bootzin/BootEngine-sub000/app"
	"github.com/bootzin/BootEngine-sub000/config"
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
	"github.com/bootzin/BootEngine-sub000/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	scenePath := flag.String("scene", "", "YAML scene to load instead of the demo scene")
	backend := flag.String("backend", "", "override graphics backend (ebiten or headless)")
	frames := flag.Int("frames", 0, "headless only: stop after this many frames (0 runs until closed)")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	debug := flag.Bool("debug", false, "draw frame stats")
	flag.Parse()

	if err := run(*configPath, *scenePath, *backend, *profileMode, *frames, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, scenePath, backend, profileMode string, frames int, debug bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if backend != "" {
		cfg.Graphics.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	ctx, err := app.NewContext(cfg, log)
	if err != nil {
		return err
	}
	defer ctx.Dispose()

	a, err := app.New(ctx, app.Options{Debug: debug})
	if err != nil {
		return err
	}

	if scenePath != "" {
		data, err := os.ReadFile(scenePath)
		if err != nil {
			return fmt.Errorf("read scene: %w", err)
		}
		entities, err := scene.Unmarshal(data, a.World(), ctx.Loader.Load)
		if err != nil {
			return err
		}
		log.Info("scene loaded", zap.String("path", scenePath), zap.Int("entities", len(entities)))
	} else if err := demoScene(a, cfg); err != nil {
		return err
	}

	return a.Run(frames)
}

// demoScene spawns a camera, a checkerboard floor and a ring of colored
// quads that drift and spin.
func demoScene(a *app.Application, cfg *config.Config) error {
	w := a.World()
	ctx := a.Context()

	checker, err := ctx.Loader.FromImage("checkerboard", checkerboard(64, 8))
	if err != nil {
		return err
	}

	cam := ecs.CreateEntity(w)
	ecs.MustAdd(w, cam, component.TagComponent.Kind(), &component.Tag{Name: "Main Camera"})
	ecs.MustAdd(w, cam, component.TransformComponent.Kind(), component.NewTransform(mgl32.Vec3{}))
	ecs.MustAdd(w, cam, component.CameraComponent.Kind(), component.NewCamera(cfg.Lens(), cfg.Window.Width, cfg.Window.Height))

	floor := ecs.CreateEntity(w)
	floorTr := component.NewTransform(mgl32.Vec3{0, 0, -0.5})
	floorTr.Scale = mgl32.Vec2{4, 4}
	ecs.MustAdd(w, floor, component.TagComponent.Kind(), &component.Tag{Name: "Floor"})
	ecs.MustAdd(w, floor, component.TransformComponent.Kind(), floorTr)
	ecs.MustAdd(w, floor, component.SpriteComponent.Kind(), &component.Sprite{
		Color:        mgl32.Vec4{1, 1, 1, 1},
		Texture:      checker,
		TextureName:  "checkerboard",
		TilingFactor: 4,
	})

	const n = 12
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / n
		dir := mgl32.Vec3{float32(math.Cos(angle)), float32(math.Sin(angle)), 0}

		e := ecs.CreateEntity(w)
		tr := component.NewTransform(dir.Mul(0.5))
		tr.Scale = mgl32.Vec2{0.1, 0.1}
		ecs.MustAdd(w, e, component.TagComponent.Kind(), &component.Tag{Name: fmt.Sprintf("Quad %d", i)})
		ecs.MustAdd(w, e, component.TransformComponent.Kind(), tr)
		ecs.MustAdd(w, e, component.SpriteComponent.Kind(), component.NewSprite(hue(float32(i)/n)))
		ecs.MustAdd(w, e, component.VelocityComponent.Kind(), &component.Velocity{
			Linear:  dir.Mul(0.05),
			Angular: 1,
		})
	}
	return nil
}

func checkerboard(size, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	dark := color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}

// hue maps h in [0,1) to a saturated RGBA color.
func hue(h float32) mgl32.Vec4 {
	r := mgl32.Clamp(mgl32.Abs(h*6-3)-1, 0, 1)
	g := mgl32.Clamp(2-mgl32.Abs(h*6-2), 0, 1)
	b := mgl32.Clamp(2-mgl32.Abs(h*6-4), 0, 1)
	return mgl32.Vec4{r, g, b, 1}
}

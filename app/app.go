// Package app wires the engine services into a frame loop that ebiten drives.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/bootzin/BootEngine-sub000/assets"
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/system"
	"github.com/bootzin/BootEngine-sub000/event"
	"github.com/bootzin/BootEngine-sub000/gfx/ebitengfx"
	"github.com/bootzin/BootEngine-sub000/input"
	"github.com/bootzin/BootEngine-sub000/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
)

// ErrShutdown is returned by Tick once a window close has been handled.
var ErrShutdown = errors.New("app: shutdown requested")

// Options tweak an Application beyond the configuration file.
type Options struct {
	Debug bool // draw a stats overlay
}

// Application owns the world and runs one update and one render phase per
// frame.
type Application struct {
	ctx  *Context
	opts Options
	log  *zap.Logger

	world     *ecs.World
	scheduler *ecs.Scheduler
	events    *system.EventSystem
	renderer  *render.Renderer2D

	windows input.Windows
	window  event.WindowID
	source  *input.EbitenSource
	pump    *input.Pump
	watcher *assets.Watcher

	frames int
}

func New(ctx *Context, opts Options) (*Application, error) {
	if ctx == nil {
		return nil, errors.New("app: nil context")
	}
	cfg := ctx.Config
	log := ctx.Logger.Named("app")

	renderer, err := render.NewRenderer2D(render.Context{
		Device:     ctx.Device,
		Textures:   ctx.Textures,
		Shaders:    ctx.Shaders,
		Logger:     ctx.Logger,
		ClearColor: cfg.Graphics.Clear(),
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &Application{
		ctx:       ctx,
		opts:      opts,
		log:       log,
		world:     ecs.NewWorld(),
		scheduler: ecs.NewScheduler(),
		events:    system.NewEventSystem(&event.Queue{}, ctx.Logger),
		renderer:  renderer,
	}
	a.window = a.windows.Add(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)

	cameras := system.NewCameraSystem(ctx.Logger)
	cameras.Listen(a.events)
	a.events.On(event.WindowClose, func(_ *ecs.World, ev event.Event) {
		log.Info("window closing", zap.Uint32("window", uint32(ev.Window)))
	})
	a.events.On(event.WindowResize, func(_ *ecs.World, ev event.Event) {
		r, _ := ev.Resize()
		log.Debug("window resized", zap.Int("width", r.Width), zap.Int("height", r.Height))
	})

	a.scheduler.Add(ecs.PhaseEvents, a.events)
	a.scheduler.Add(ecs.PhaseUpdate, system.NewMovementSystem(1/float32(cfg.Window.TPS)))
	a.scheduler.Add(ecs.PhasePostUpdate, cameras)
	a.scheduler.Add(ecs.PhaseRender, system.NewRenderSystem(renderer, ctx.Logger))
	a.scheduler.SetHalt(a.events.ShutdownRequested)

	if cfg.Assets.Watch {
		w, err := assets.NewWatcher(ctx.Loader.Dir())
		if err != nil {
			log.Warn("texture hot reload disabled", zap.String("dir", ctx.Loader.Dir()), zap.Error(err))
		} else {
			a.watcher = w
		}
	}
	return a, nil
}

func (a *Application) World() *ecs.World             { return a.world }
func (a *Application) Events() *system.EventSystem   { return a.events }
func (a *Application) Scheduler() *ecs.Scheduler     { return a.scheduler }
func (a *Application) Renderer() *render.Renderer2D  { return a.renderer }
func (a *Application) Context() *Context             { return a.ctx }
func (a *Application) Window() (*input.Window, bool) { return a.windows.Get(a.window) }

// Tick runs the event, update and post-update phases once.
func (a *Application) Tick() error {
	a.reloadTextures()
	for _, phase := range []ecs.Phase{ecs.PhaseEvents, ecs.PhaseUpdate, ecs.PhasePostUpdate} {
		a.scheduler.UpdatePhase(a.world, phase)
		if a.events.ShutdownRequested() {
			return ErrShutdown
		}
	}
	return nil
}

// Frame runs the render phase once.
func (a *Application) Frame() {
	a.scheduler.UpdatePhase(a.world, ecs.PhaseRender)
	a.frames++
}

func (a *Application) reloadTextures() {
	if a.watcher == nil {
		return
	}
	for _, path := range a.watcher.Drain() {
		if err := a.ctx.Loader.Reload(path); err != nil {
			a.log.Warn("texture reload failed", zap.String("path", path), zap.Error(err))
		}
	}
	select {
	case err, ok := <-a.watcher.Errors:
		if ok {
			a.log.Warn("texture watcher", zap.Error(err))
		}
	default:
	}
}

// Update implements ebiten.Game.
func (a *Application) Update() error {
	if a.pump != nil {
		a.pump.Poll()
	}
	if err := a.Tick(); err != nil {
		if errors.Is(err, ErrShutdown) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *Application) Draw(screen *ebiten.Image) {
	if dev, ok := a.ctx.Device.(*ebitengfx.Device); ok {
		dev.SetTarget(screen)
	}
	a.Frame()

	if a.opts.Debug {
		st := a.renderer.Stats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  TPS: %.2f\nsprites: %d  draws: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), st.Drawables, st.DrawCalls))
	}
}

// Layout implements ebiten.Game. The logical screen always matches the
// window so camera aspect follows the window.
func (a *Application) Layout(outsideWidth, outsideHeight int) (int, int) {
	if a.source != nil {
		a.source.SetSize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run drives the application until the window closes. The headless backend
// runs without a window for at most frames frames; frames <= 0 means until
// shutdown.
func (a *Application) Run(frames int) error {
	defer a.Close()
	cfg := a.ctx.Config

	if _, ok := a.ctx.Device.(*ebitengfx.Device); !ok {
		return a.runHeadless(frames, time.Second/time.Duration(cfg.Window.TPS))
	}

	a.source = input.NewEbitenSource()
	a.pump = input.NewPump(a.source, &a.windows, a.window, a.events.Queue())

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetVsyncEnabled(cfg.Window.VSync)
	ebiten.SetTPS(cfg.Window.TPS)

	a.log.Info("starting", zap.Int("width", cfg.Window.Width), zap.Int("height", cfg.Window.Height))
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("app: run: %w", err)
	}
	return nil
}

func (a *Application) runHeadless(frames int, step time.Duration) error {
	a.log.Info("starting headless", zap.Int("frames", frames))
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for i := 0; frames <= 0 || i < frames; i++ {
		if err := a.Tick(); err != nil {
			if errors.Is(err, ErrShutdown) {
				return nil
			}
			return err
		}
		a.Frame()
		<-ticker.C
	}
	a.log.Info("headless run finished", zap.Int("frames", a.frames))
	return nil
}

// Close stops hot reload and releases the renderer.
func (a *Application) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
		a.watcher = nil
	}
	if a.renderer != nil {
		a.renderer.Dispose()
		a.renderer = nil
	}
}

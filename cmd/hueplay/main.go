package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/hueplay/internal/artwork"
	"github.com/genricoloni/hueplay/internal/catalog"
	"github.com/genricoloni/hueplay/internal/config"
	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/genricoloni/hueplay/internal/engine"
	"github.com/genricoloni/hueplay/internal/executor"
	"github.com/genricoloni/hueplay/internal/fetcher"
	"github.com/genricoloni/hueplay/internal/mpris"
	"github.com/genricoloni/hueplay/internal/normalizer"
	"github.com/genricoloni/hueplay/internal/player"
	"github.com/genricoloni/hueplay/internal/processor"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the full dependency graph of the daemon
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		fx.Annotate(catalog.NewCatalog, fx.As(fx.Self()), fx.As(new(domain.Library))),
		fx.Annotate(executor.NewExecutor, fx.As(new(domain.Executor))),
		fx.Annotate(normalizer.NewNormalizer, fx.As(new(domain.Normalizer))),
		fx.Annotate(artwork.NewStore, fx.As(new(domain.ArtworkStore))),
		fx.Annotate(fetcher.NewFileFetcher, fx.As(new(domain.Fetcher))),
		processor.NewScreenResolution,
		fx.Annotate(processor.NewBackdropProcessor, fx.As(new(domain.Processor))),
		fx.Annotate(player.NewFactory, fx.As(new(domain.PlayerFactory))),
		fx.Annotate(engine.NewController, fx.As(fx.Self()), fx.As(new(domain.Transport))),
		mpris.NewServer,
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger builds a production logger, or a development one when
// HUEPLAY_DEBUG is set
func newLogger() (*zap.Logger, error) {
	if os.Getenv("HUEPLAY_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type hookParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Logger     *zap.Logger
	Config     domain.Config
	Catalog    *catalog.Catalog
	Controller *engine.Controller
	Server     *mpris.Server
}

// registerHooks starts the controller before the bus surface and stops
// them in reverse order
func registerHooks(p hookParams) {
	var background context.CancelFunc

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Controller.Start(ctx); err != nil {
				return err
			}

			bgCtx, cancel := context.WithCancel(context.Background())
			background = cancel
			go logSnapshots(bgCtx, p.Logger, p.Controller.Subscribe())

			if p.Config.Autoplay() {
				go autoplay(bgCtx, p.Logger, p.Catalog.Tracks(), p.Controller)
			}

			p.Logger.Info("hueplay started", zap.Int("tracks", len(p.Catalog.Tracks())))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Shutting down")
			if background != nil {
				background()
			}
			return p.Controller.Stop(ctx)
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: p.Server.Start,
		OnStop:  p.Server.Stop,
	})
}

// autoplay selects the first catalog track. Normalization may take a
// while, so it runs outside the start hook.
func autoplay(ctx context.Context, logger *zap.Logger, tracks []domain.Track, transport domain.Transport) {
	if len(tracks) == 0 {
		logger.Info("Catalog is empty, nothing to autoplay")
		return
	}
	if err := transport.SelectTrack(ctx, tracks[0].Path); err != nil {
		logger.Warn("Autoplay failed", zap.String("track", tracks[0].Path), zap.Error(err))
	}
}

// logSnapshots reports state and track changes
func logSnapshots(ctx context.Context, logger *zap.Logger, updates <-chan domain.Snapshot) {
	var last domain.Snapshot
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.State == last.State && snap.Track == last.Track {
				continue
			}
			last = snap

			fill, border, text := snap.Theme.Hex()
			fields := []zap.Field{
				zap.String("state", string(snap.State)),
				zap.String("track", snap.Track.DisplayName()),
				zap.String("duration", domain.FormatDuration(snap.Duration)),
				zap.String("fill", fill),
				zap.String("border", border),
				zap.String("text", text),
			}
			if snap.Backdrop != "" {
				fields = append(fields, zap.String("backdrop", snap.Backdrop))
			}
			if snap.Err != nil {
				fields = append(fields, zap.Error(snap.Err))
			}
			logger.Info("Playback", fields...)
		}
	}
}

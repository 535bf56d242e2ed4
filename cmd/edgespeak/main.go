package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"

	esconfig "github.com/edgespeak/edgespeak/config"
	"github.com/edgespeak/edgespeak/internal/engine/registry"
	"github.com/edgespeak/edgespeak/internal/httputil"
	"github.com/edgespeak/edgespeak/internal/stats"
	"github.com/edgespeak/edgespeak/internal/synth"
	"github.com/edgespeak/edgespeak/internal/web"
	"github.com/edgespeak/edgespeak/pkg/presets"

	// Register synthesis engines via init().
	_ "github.com/edgespeak/edgespeak/internal/engine/backends/edge"
	_ "github.com/edgespeak/edgespeak/internal/engine/backends/stub"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWithOIDC[esconfig.EdgeSpeakConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("edgespeak"),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	eng, err := registry.Engines.Create(cfg.EngineBackend, cfg.EngineConfig())
	if err != nil {
		log.Fatalf("creating %q engine: %v", cfg.EngineBackend, err)
	}
	defer eng.Close()

	store := stats.NewStore(cfg.StatsPath())
	syn := synth.New(eng, cfg.ScratchPath(), pool)

	loader := presets.NewLoader(cfg.PresetsDir)
	if _, err := loader.LoadAll(); err != nil {
		log.Printf("warning: loading presets: %v", err)
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		if err := loader.WatchAndReload(done); err != nil {
			slog.Warn("preset watcher stopped", slog.String("error", err.Error()))
		}
	}()

	handler, err := web.NewHandler(&cfg, eng, syn, store, loader)
	if err != nil {
		log.Fatalf("building web handler: %v", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	srv.Init(ctx, frame.WithHTTPHandler(httputil.H2CHandler(mux)))

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}

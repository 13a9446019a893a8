package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"dice-lite/apps/server/internal/config"
	"dice-lite/apps/server/internal/gateway"
	"dice-lite/apps/server/internal/lobby"
	"dice-lite/apps/server/internal/session"
	"dice-lite/apps/server/internal/tally"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("[Server] Invalid config: %v", err)
	}

	tallyService, tallyMode, err := tally.NewService(cfg.TallyStore, cfg.RecentLimit)
	if err != nil {
		log.Fatalf("[Server] Failed to init tally service: %v", err)
	}
	defer tallyService.Close()

	lby := lobby.New(tallyService, session.Config{
		TargetScore: cfg.TargetScore,
		Seed:        cfg.Seed,
		TraceNPC:    cfg.TraceNPC,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lby.RunReaper(ctx, time.Minute, cfg.IdleTTL)

	gw := gateway.New(lby)
	tallyHTTP := tally.NewHTTPHandler(tallyService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	tallyHTTP.RegisterRoutes(mux)

	log.Printf("[Server] Tally mode: %s", tallyMode)
	log.Printf("[Server] Target score: %d, idle ttl: %s", cfg.TargetScore, cfg.IdleTTL)
	log.Printf("[Server] Starting WebSocket server on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

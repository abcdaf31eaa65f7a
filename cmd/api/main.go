package main

import (
	"log"

	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/server"
	"skillgap-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s env=%s store=%s", addr, cfg.Env, cfg.ObjectStoreType)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

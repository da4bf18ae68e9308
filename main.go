package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := LoadConfig()

	registry := NewRegistry(cfg.MaxRooms)
	sessions := NewSessionDirectory()
	hub := NewHub(cfg, registry, sessions)
	dispatcher := NewDispatcher(registry, sessions, hub)
	hub.SetDispatcher(dispatcher)

	srv := NewServer(cfg, hub, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("shutting down...")
		cancel()
		srv.Shutdown()
	}()

	log.Printf("tile game server starting on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

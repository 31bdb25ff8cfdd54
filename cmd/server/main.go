// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/sil-vella/recall/internal/cache"
	"github.com/sil-vella/recall/internal/database"
	"github.com/sil-vella/recall/internal/engine"
	"github.com/sil-vella/recall/internal/handlers"
	"github.com/sil-vella/recall/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	deps := engine.Deps{Log: logger}

	// Room membership and the action journal live in Redis, shared with
	// the admission and historian services. Without Redis the server
	// still runs, single-process, with an in-memory directory and no
	// journal.
	var dir cache.Directory
	if rdb, err := cache.Connect(ctx); err != nil {
		logger.Warnf("Redis unavailable, using in-memory room directory: %v", err)
		dir = cache.NewMemoryDirectory()
	} else {
		dir = cache.NewRedisDirectory(rdb)
		deps.Journal = cache.NewJournal(rdb).Publish
	}
	deps.Rooms = dir

	// Comp players come from the platform users database; the engine
	// generates local placeholders when the supply is missing.
	if pool, err := database.Connect(ctx); err != nil {
		logger.Warnf("Postgres unavailable, comp players will be generated locally: %v", err)
	} else {
		deps.Supply = database.NewCompPlayerStore(pool)
		defer pool.Close()
	}

	srv := handlers.NewGameServer(logger)
	deps.Send = srv.Send

	registry := engine.NewRegistry(deps)
	srv.Registry = registry
	defer registry.CloseAll()

	mux := http.NewServeMux()
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(logger, dir),
	)))
	mux.Handle("/room/join", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.JoinRoomHandler(logger, dir),
	)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

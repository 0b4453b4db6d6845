package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/planner-ranker/internal/alert"
	"github.com/ignite/planner-ranker/internal/api"
	"github.com/ignite/planner-ranker/internal/cache"
	"github.com/ignite/planner-ranker/internal/config"
	"github.com/ignite/planner-ranker/internal/pkg/distlock"
	"github.com/ignite/planner-ranker/internal/repository/postgres"
	"github.com/ignite/planner-ranker/internal/store"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := "config/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx := context.Background()

	// Plan and workbook storage
	st, err := store.New(ctx, cfg.Storage, cfg.Output)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage ready (%s, %d saved plans)", cfg.Storage.Type, st.Count())

	// Rankings cache: Redis when configured and reachable, in-process
	// otherwise
	var rankCache cache.RankingsCache = cache.NewMemoryCache()
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — using in-memory cache", cfg.Redis.Addr, err)
			client.Close()
		} else {
			redisClient = client
			rankCache = cache.NewRedisCache(client)
			log.Printf("Redis connected: %s", cfg.Redis.Addr)
		}
		pingCancel()
	}

	notifier := alert.NewNotifier(cfg.Alerts, nil)
	handlers := api.NewHandlers(cfg, st, rankCache, notifier)
	handlers.SetRunLock(distlock.New(redisClient, "process-data", 5*time.Minute))

	// Optional Postgres history repository
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			log.Printf("Warning: database unreachable: %v — history kept in memory", err)
			db.Close()
		} else {
			handlers.SetHistoryRepository(postgres.NewHistoryRepo(db))
			log.Println("Database connected (history repository enabled)")
			defer db.Close()
		}
		pingCancel()
	}

	server := api.NewServer(cfg.Server, handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

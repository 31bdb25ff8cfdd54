// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sil-vella/recall/internal/engine"
)

// DefaultQueueName is the Redis list the historian service consumes
// match actions from.
const DefaultQueueName = "recall_actions"

// Connect builds a Redis client from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB   (optional, default 0)
//
// The connection is verified with a ping before it is returned.
func Connect(ctx context.Context) (*redis.Client, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Journal pushes match action records onto the historian queue. The
// engine calls it fire-and-forget; persistence is entirely the
// downstream historian's problem.
type Journal struct {
	rdb   *redis.Client
	queue string
}

func NewJournal(rdb *redis.Client) *Journal {
	return &Journal{
		rdb:   rdb,
		queue: getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
	}
}

// Publish serializes the record and appends it to the queue.
func (j *Journal) Publish(ctx context.Context, rec engine.JournalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", j.queue, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"placements/internal/audit"
	"placements/internal/config"
	"placements/internal/queue"
	"placements/internal/store"
)

// Worker consumes audit queue messages and writes the activity trail to the
// process log, giving operators a live tail of admin mutations without
// querying the database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "placements:audit")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, tailing audit trail...")
	for msg := range messages {
		if msg.Type != audit.MessageType {
			continue
		}

		var e audit.Entry
		if err := json.Unmarshal(msg.Body, &e); err != nil {
			log.Printf("skipping malformed audit message: %v", err)
			continue
		}

		log.Printf("audit %s: admin %s %s %s/%s", e.ID, e.AdminID, e.Action, e.TableName, e.RecordID)
	}

	log.Println("worker stopped")
}

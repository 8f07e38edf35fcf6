package main

import (
	"context"
	"log"
	"time"

	"ai-academy-be/internal/bootstrap"
	"ai-academy-be/internal/config"
)

// runExpirySweeper periodically removes deadline insights whose expiry
// elapsed. Blocks until ctx is cancelled.
func runExpirySweeper(ctx context.Context, container *bootstrap.Container, cfg *config.Config) {
	ticker := time.NewTicker(cfg.Insight.ExpirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := container.InsightService.SweepExpired(ctx); err != nil {
				log.Printf("Background Sweeper Error: %v", err)
			}
		}
	}
}

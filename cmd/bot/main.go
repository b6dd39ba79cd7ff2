// cmd/bot/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/devsfromasia/DevcordBot/internal/config"
	"github.com/devsfromasia/DevcordBot/internal/discord"
	"github.com/devsfromasia/DevcordBot/internal/storage"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal("[ERR] Failed to open storage: ", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := discord.StartBot(ctx, cfg, store); err != nil {
		log.Fatal("[ERR] ", err)
	}
}

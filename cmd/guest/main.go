// cmd/guest/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finance-tracker/internal/config"
	"finance-tracker/internal/guest"
	"finance-tracker/internal/guest/sqlitestore"
)

func main() {
	cfg := config.MustLoad()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlitestore.Open(cfg.GuestDBPath)
	if err != nil {
		slog.Error("failed to open guest store", "error", err, "path", cfg.GuestDBPath)
		os.Exit(1)
	}

	a := newApp(guest.NewRepository(store), os.Stdout, cfg.APIURL)
	err = a.run(ctx, os.Args[1:])
	store.Close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

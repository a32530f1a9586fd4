package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hamedsh/rsi-bot/internal/bot"
	"github.com/hamedsh/rsi-bot/internal/config"
	"github.com/hamedsh/rsi-bot/internal/exchange"
	"github.com/hamedsh/rsi-bot/internal/journal"
	"github.com/hamedsh/rsi-bot/internal/metrics"
	"github.com/hamedsh/rsi-bot/internal/notifier"
	"github.com/hamedsh/rsi-bot/internal/order"
	"github.com/hamedsh/rsi-bot/internal/server"
	"github.com/hamedsh/rsi-bot/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.MustLoadConfig()
	utils.SetLogFile(cfg.LogFile)
	log.Println("Starting RSI bot for", cfg.Symbol, "in mode:", cfg.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Event journal: Postgres when a DSN is configured, discarded otherwise.
	var jr journal.Journaler = journal.Nop{}
	if cfg.DBConnStr != "" {
		pg, err := journal.NewPostgres(ctx, cfg.DBConnStr)
		if err != nil {
			log.Fatalf("Failed to open event journal: %v", err)
		}
		defer pg.Close()
		jr = pg
	}

	var n notifier.Notifier = notifier.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChat != "" {
		n = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChat)
	}

	var ex exchange.Exchange
	if cfg.Mode == "live" {
		ex = exchange.NewWallexExchange(cfg.WallexAPIKey)
	} else {
		ex = exchange.NewSimExchange()
	}
	log.Println("Order backend:", ex.Name())

	m := metrics.New(prometheus.DefaultRegisterer)
	trail := journal.NewTrail()
	gw := order.NewGateway(ex, cfg.Symbol, cfg.Quantity, cfg.OrderTimeout, trail, jr, n, m)
	b := bot.New(cfg, gw, trail, jr, m)

	srv := server.New(cfg.ListenAddr, b, prometheus.DefaultGatherer)
	srv.Start()

	// Periodic status snapshot in the log, so the file alone tells the story.
	c := cron.New()
	if _, err := c.AddFunc(cfg.SnapshotSpec, func() {
		st := b.Status()
		utils.GetLogger().Printf("Snapshot | running=%v in_position=%v closes=%d rsi=%.2f profit=%v",
			st.Running, st.InPosition, st.DataPoints, st.CurrentRSI, st.TotalProfit)
	}); err != nil {
		log.Fatalf("Invalid snapshot spec %q: %v", cfg.SnapshotSpec, err)
	}
	c.Start()

	if cfg.Autostart {
		log.Println(b.Start())
	}

	<-ctx.Done()

	b.Stop()
	c.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Stop(shutdownCtx)
	log.Println("Shutdown complete")
}

// Command server boots the game: it loads config.toml and banlist.txt from
// the working directory, starts the tick loop and the WebSocket listener,
// and shuts both down in order on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dm-vev/cogar/bot"
	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/console"
	"github.com/dm-vev/cogar/gamemode"
	"github.com/dm-vev/cogar/net"
	"github.com/dm-vev/cogar/sim"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	banListPath := flag.String("banlist", "banlist.txt", "path to the flat-text IP ban list")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("loading config", slog.Any("err", err))
		os.Exit(1)
	}
	bans, err := config.LoadBanList(*banListPath)
	if err != nil {
		log.Error("loading ban list", slog.Any("err", err))
		os.Exit(1)
	}

	hub := net.NewHub()
	mode := gamemode.ByID(cfg.Server.GameMode)
	game := sim.New(cfg, mode, log, hub)

	bots := bot.NewManager()
	game.SetAIController(bots.Tick)
	if cfg.Server.Bots > 0 {
		game.Lock()
		for i := 0; i < cfg.Server.Bots; i++ {
			bots.Spawn(game)
		}
		game.Unlock()
	}

	srv := net.NewServer(cfg, game, hub, bans, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cons := console.New(game, hub, bans, bots, log, cancel)
	go cons.Run(ctx)

	go game.Run()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("listener stopped", slog.Any("err", err))
		}
	}

	game.Close()
	srv.Shutdown()
}

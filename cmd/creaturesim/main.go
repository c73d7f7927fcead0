package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/creaturesim/server/internal/config"
	"github.com/creaturesim/server/internal/creature"
	"github.com/creaturesim/server/internal/data"
	"github.com/creaturesim/server/internal/handler"
	gonet "github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"github.com/creaturesim/server/internal/persist"
	"github.com/creaturesim/server/internal/scripting"
	"github.com/creaturesim/server/internal/sequencer"
	"github.com/creaturesim/server/internal/sim"
	"github.com/creaturesim/server/internal/system"
	"github.com/creaturesim/server/internal/transport/observer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name, mode string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           creaturesim  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      headless creature simulation         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mInstance:\033[0m %s \033[90m(%s)\033[0m\n\n", name, mode)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("CREATURESIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	clientMode := cfg.Network.Connect != ""
	mode := "server"
	if clientMode {
		mode = "client of " + cfg.Network.Connect
	}
	printBanner(cfg.Server.Name, mode)

	if err := packet.SetCharset(cfg.Network.Charset); err != nil {
		return err
	}

	// 3. Load data
	printSection("Data")
	prefabs, err := data.LoadPrefabTable(cfg.Data.PrefabTable)
	if err != nil {
		return fmt.Errorf("prefabs: %w", err)
	}
	printStat("Prefabs", prefabs.Count())

	clips, err := data.LoadAudioClipTable(cfg.Audio.ClipTable)
	if err != nil {
		return fmt.Errorf("audio clips: %w", err)
	}
	printStat("Audio clips", clips.Count())

	graphs, err := sequencer.LoadLibrary(cfg.Data.GraphDir)
	if err != nil {
		return fmt.Errorf("event graphs: %w", err)
	}
	printStat("Event graphs", graphs.Count())

	scripts, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	defer scripts.Close()
	printOK("Lua engine ready")
	fmt.Println()

	// 4. Storage
	printSection("Storage")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chatLog, err := persist.OpenChatLog(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("chat log: %w", err)
	}
	if chatLog != nil {
		defer chatLog.Close()
		printOK(fmt.Sprintf("Chat log on %s", cfg.Database.Driver))
	} else {
		printOK("Chat log disabled")
	}

	var journal *persist.CommandJournal
	if cfg.Journal.Enabled {
		journal = persist.NewCommandJournal(cfg.Journal.Dir, cfg.Journal.Prefix, log.Named("journal"))
		defer journal.Close()
		printOK(fmt.Sprintf("Command journal in %s", cfg.Journal.Dir))
	}
	fmt.Println()

	// 5. Observer feed
	var feed *observer.Server
	if cfg.Observer.Enabled {
		feed = observer.NewServer(log.Named("observer"))
		addr, err := feed.Start(cfg.Observer.BindAddress, cfg.Observer.Path)
		if err != nil {
			return fmt.Errorf("observer: %w", err)
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			feed.Shutdown(sctx)
		}()
		printReady(fmt.Sprintf("Observer on ws://%s%s", addr, cfg.Observer.Path))
	}

	opts := sim.Options{
		Config:  cfg,
		Prefabs: prefabs,
		Clips:   clips,
		Graphs:  graphs,
		Scripts: scripts,
		ChatLog: chatLog,
		Log:     log,
	}
	if feed != nil {
		opts.Feed = feed
	}
	if journal != nil {
		opts.Journal = journal
	}

	// 6. Network, either as the authoritative server or a headless client
	var (
		s        *sim.Sim
		shutdown func()
	)
	if clientMode {
		client := gonet.NewClient(gonet.ClientOptions{
			Addr:            cfg.Network.Connect,
			Name:            cfg.Network.PlayerName,
			Secret:          cfg.Network.SharedSecret,
			ApprovalTimeout: cfg.Network.ApprovalTimeout,
			InSize:          cfg.Network.InQueueSize,
			OutSize:         cfg.Network.OutQueueSize,
		}, log.Named("client"))
		opts.Transport = client
		s = sim.New(opts)

		go func() {
			if err := client.Connect(context.Background()); err != nil {
				log.Warn("connect failed", zap.String("addr", cfg.Network.Connect), zap.Error(err))
			}
		}()
		brain := creature.DummyBrain{TurnRate: 0.05, Magnitude: 1, JumpEvery: 40}
		s.Register(system.NewClientSystem(client, s.Bus, s.Clock, brain, log.Named("client")))
		shutdown = func() {
			client.Disconnect(client.Owner(), "shutdown")
		}
		printReady(fmt.Sprintf("Connecting to %s as %s", cfg.Network.Connect, cfg.Network.PlayerName))
	} else {
		store := gonet.NewSessionStore()
		host := gonet.NewHost(store)
		opts.Transport = host
		opts.Names = func(owner uint64) string {
			if sess := store.Get(owner); sess != nil {
				return sess.Name
			}
			return ""
		}
		s = sim.New(opts)

		reg := packet.NewRegistry(log)
		handler.RegisterAll(reg, &handler.Deps{
			Config:  cfg,
			Log:     log,
			Bus:     s.Bus,
			Store:   store,
			Host:    host,
			Hub:     s.Hub,
			Players: s.PlayerByOwner,
		})

		netServer, err := gonet.NewServer(
			cfg.Network.BindAddress,
			cfg.Network.InQueueSize,
			cfg.Network.OutQueueSize,
			cfg.Network.PacketsPerSecond,
			log,
		)
		if err != nil {
			return fmt.Errorf("net server: %w", err)
		}
		netServer.WriteTimeout = cfg.Network.WriteTimeout
		netServer.ReadTimeout = cfg.Network.ReadTimeout
		go netServer.AcceptLoop()

		s.Register(
			system.NewInputSystem(netServer, reg, store, s.Bus, cfg.Network.MaxPacketsPerTick, cfg.Network.ApprovalTimeout, log),
			system.NewOutputSystem(store),
		)
		shutdown = func() {
			store.ForEach(func(sess *gonet.Session) {
				sess.Kick("server shutting down")
			})
			netServer.Shutdown()
		}
		printReady(fmt.Sprintf("Listening on %s", netServer.Addr()))
	}

	// 7. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printReady(fmt.Sprintf("Simulation running (tick: %s, workers: %d)", cfg.Simulation.TickRate, cfg.Simulation.Workers))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			s.Tick()
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			s.Close()
			shutdown()
			if feed != nil {
				sent, dropped := feed.Stats()
				log.Info("observer feed", zap.Uint64("sent", sent), zap.Uint64("dropped", dropped))
			}
			log.Info("stopped", zap.Uint64("ticks", s.Clock.Tick()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

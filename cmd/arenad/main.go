package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/content"
	"github.com/l1jgo/arena/internal/data"
	"github.com/l1jgo/arena/internal/handler"
	gonet "github.com/l1jgo/arena/internal/net"
	"github.com/l1jgo/arena/internal/persist"
	"github.com/l1jgo/arena/internal/replication"
	"github.com/l1jgo/arena/internal/scripting"
	"github.com/l1jgo/arena/internal/session"
	"github.com/l1jgo/arena/internal/system"
	"github.com/l1jgo/arena/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           L1JGO-Arena  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       競技場 · Go 權威式 UDP 伺服器       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
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

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
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

	matchID := uuid.New()
	log = log.With(zap.String("match", matchID.String()))
	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load content
	printSection("遊戲資料")
	bundle, err := data.LoadBundle(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	lib, err := content.NewLibrary(bundle)
	if err != nil {
		return fmt.Errorf("content library: %w", err)
	}
	printStat("英雄", bundle.Heroes.HeroCount())
	printStat("野怪", bundle.Heroes.NeutralCount())
	printStat("技能", lib.AbilityCount())
	printStat("效果", lib.EffectCount())
	printStat("野怪營地", len(lib.Arena().Camps))
	printOK(fmt.Sprintf("內容指紋 %016x", lib.Fingerprint()))
	fmt.Println()

	// 4. Scripting
	printSection("腳本引擎")
	scripts, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	for _, fn := range []string{"calc_damage", "respawn_delay", "spawn_point"} {
		if scripts.Has(fn) {
			printOK("Lua " + fn)
		}
	}
	fmt.Println()

	// 5. Optional match history
	printSection("資料庫")
	var recorder *persist.Recorder
	if cfg.Database.DSN != "" {
		dbCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		appName := fmt.Sprintf("%s#%d", cfg.Server.Name, cfg.Server.ID)
		db, err := persist.NewDB(dbCtx, cfg.Database, appName, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		version, err := persist.RunMigrations(dbCtx, db.Pool, log)
		if err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK(fmt.Sprintf("PostgreSQL 連線成功，結構版本 %d", version))
		recorder = persist.NewRecorder(persist.NewMatchRepo(db), matchID, cfg.Database.RecorderQueue, log)
	} else {
		printOK("未設定 DSN，停用戰績紀錄")
	}
	fmt.Println()

	// 6. World and session state
	ws := world.NewState(cfg.Match, lib, scripts, log)
	netServer, err := gonet.NewServer(cfg.Network, log)
	if err != nil {
		return fmt.Errorf("network: %w", err)
	}
	defer netServer.Shutdown()

	deps := &handler.Deps{
		Config:      cfg,
		Log:         log,
		World:       ws,
		Sessions:    session.NewRegistry(cfg.Match.ReservedEntityIDs, cfg.Match.TeamCount),
		Replication: replication.NewManager(cfg.Match.InterestRadius, cfg.Network.MaxPending, log),
		Net:         netServer,
		Lobby:       handler.NewLobby(),
		MatchID:     matchID.String(),
	}
	reg := handler.NewRegistry(log)
	handler.RegisterAll(reg, deps)

	// 7. Systems
	onStart := func(players int) {
		if recorder != nil {
			recorder.MatchStarted(cfg.Server.ID, cfg.Match.Mode, players)
		}
	}
	pipe := system.NewPipeline(ws,
		system.NewInputSystem(netServer, reg, deps, cfg.Network.MaxPacketsPerTick, log),
		system.NewSessionSystem(deps, cfg.Network.IdleTimeout),
		system.NewLobbySystem(deps, onStart, log),
	)
	for _, s := range system.Gameplay(ws, log) {
		pipe.Register(s)
	}
	pipe.Register(system.NewOutputSystem(deps))
	if recorder != nil {
		recorder.Attach(ws.Bus)
	}

	// 8. Run receive loop, game loop and recorder until a signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// the recorder outlives the game loop so the match end is written
	recCtx, recCancel := context.WithCancel(context.Background())
	defer recCancel()
	if recorder != nil {
		g.Go(func() error { return recorder.Run(recCtx) })
	}

	g.Go(func() error { return netServer.ReceiveLoop(gctx) })

	g.Go(func() error {
		defer recCancel()
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pipe.Step(cfg.Network.TickRate)
			case <-gctx.Done():
				log.Info("收到關閉信號，停止遊戲迴圈",
					zap.Uint32("tick", pipe.Tick()),
					zap.Uint64("dropped", netServer.Dropped()),
					zap.Uint64("malformed", netServer.Malformed()),
				)
				if recorder != nil {
					recorder.MatchEnded(pipe.Tick())
				}
				netServer.Shutdown()
				return nil
			}
		}
	})

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	printReady(fmt.Sprintf("模式 %s · %d 隊", cfg.Match.Mode, cfg.Match.TeamCount))
	fmt.Println()

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("伺服器已停止")
	return nil
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

// Command sokuji-bot runs the live race-scoring bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs versioned migrations.
//   - Serves the /sokuji commands, buttons and text scoring on Discord, and
//     text scoring in the configured Twitch channels.
//   - Exposes an HTTP server with the stream widget, /healthz, /status,
//     /metrics and the admin API.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/chat"
	"github.com/onnwee/sokuji-bot/config"
	"github.com/onnwee/sokuji-bot/db"
	"github.com/onnwee/sokuji-bot/discord"
	"github.com/onnwee/sokuji-bot/keylock"
	"github.com/onnwee/sokuji-bot/server"
	"github.com/onnwee/sokuji-bot/telemetry"
	"github.com/onnwee/sokuji-bot/tracks"
	"github.com/onnwee/sokuji-bot/widget"
)

const version = "1.0.0"

func setupLogger(level, format string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", level))
	}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", format))
}

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	telemetry.Init()
	shutdown, err := telemetry.InitTracing("sokuji-bot", version, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	database, err := db.Connect(cfg.DBDsn)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.RunMigrations(database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err), slog.String("component", "db_migrate"))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := db.NewStore(database)
	hub := widget.NewHub()
	locks := keylock.New(func(_ string, d time.Duration) { telemetry.ObserveLockWait(d) })
	trackService := &tracks.Service{Store: store}
	newCore := func(m bot.Messenger) *bot.Bot {
		return &bot.Bot{
			Sessions:      store,
			Guilds:        store,
			Tracks:        trackService,
			Locks:         locks,
			Messenger:     m,
			Widgets:       hub,
			DefaultColor:  int(cfg.DefaultColor),
			WidgetBaseURL: cfg.WidgetBaseURL,
		}
	}

	var wg sync.WaitGroup

	if cfg.DiscordEnabled() {
		dg, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			slog.Error("discord session failed", slog.Any("err", err))
			os.Exit(1)
		}
		core := newCore(discord.Messenger{Session: dg})
		core.MessageTime = discord.MessageTime
		d := discord.New(dg, core, discord.Options{
			GuildID:          cfg.DiscordGuildID,
			RegisterCommands: cfg.DiscordRegisterCommands,
			UndoTimeout:      cfg.UndoConfirmTimeout,
			KV:               store,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Run(ctx, dg); err != nil {
				slog.Error("discord bot exited with error", slog.Any("err", err))
				stop()
			}
		}()
	} else {
		slog.Info("discord disabled (DISCORD_TOKEN not set)")
	}

	if cfg.TwitchEnabled() {
		if err := cfg.ValidateTwitchReady(); err != nil {
			slog.Error("twitch chat misconfigured", slog.Any("err", err))
			os.Exit(1)
		}
		l := chat.NewListener(cfg.TwitchBotUsername, cfg.TwitchOAuthToken, cfg.TwitchChannels, newCore(chat.Messenger{}))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Run(ctx); err != nil {
				slog.Error("twitch chat exited with error", slog.Any("err", err))
			}
		}()
	} else {
		slog.Info("twitch chat disabled (no channels configured)")
	}

	if cfg.EnablePprof {
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", cfg.PprofAddr))
			srv := &http.Server{
				Addr:              cfg.PprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	router := server.NewRouter(ctx, database, store, hub, server.Options{
		AdminUsername:      cfg.AdminUsername,
		AdminPassword:      cfg.AdminPassword,
		AdminToken:         cfg.AdminToken,
		RateLimitEnabled:   cfg.RateLimitEnabled,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
		CORSPermissive:     cfg.CORSPermissive(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx, router, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	wg.Wait()
}

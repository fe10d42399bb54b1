package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"livenotify-srv/config"
	configMinIO "livenotify-srv/config/minio"
	configRedis "livenotify-srv/config/redis"
	alertUsecase "livenotify-srv/internal/alert/usecase"
	"livenotify-srv/internal/httpserver"
	"livenotify-srv/internal/livenotify"
	liveUsecase "livenotify-srv/internal/livenotify/usecase"
	"livenotify-srv/internal/metrics"
	"livenotify-srv/internal/middleware"
	"livenotify-srv/internal/moderation"
	moderationUsecase "livenotify-srv/internal/moderation/usecase"
	"livenotify-srv/internal/notify"
	"livenotify-srv/internal/permission"
	"livenotify-srv/internal/poller"
	"livenotify-srv/internal/roomstate"
	"livenotify-srv/internal/safety"
	"livenotify-srv/internal/storage"
	"livenotify-srv/internal/subscription"
	"livenotify-srv/pkg/bilibili"
	"livenotify-srv/pkg/discord"
	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/log"
	"livenotify-srv/pkg/onebot"
	pkgRedis "livenotify-srv/pkg/redis"
)

func main() {
	once := pflag.Bool("once", false, "run a single poll cycle and exit")
	check := pflag.String("check", "", "report whether the given text hits the word list and exit")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	// Create context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *once, *check); err != nil {
		logger.Errorf(ctx, "livenotify-srv: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger log.Logger, once bool, check string) error {
	logger.Info(ctx, "Starting live notification service...")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Discord webhook (optional)
	var discordClient discord.IDiscord
	if cfg.Discord.WebhookURL != "" {
		d, err := discord.New(logger, cfg.Discord.WebhookURL)
		if err != nil {
			logger.Warnf(ctx, "Failed to initialize Discord webhook: %v", err)
		} else {
			discordClient = d
			defer d.Close()
			logger.Info(ctx, "Discord webhook initialized")
		}
	}

	// Storage
	st, redisClient, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer configRedis.Disconnect()
	}

	// Content safety
	var checker *safety.Filter
	if cfg.Safety.WordListPath != "" {
		checker, err = safety.LoadFile(ctx, cfg.Safety.WordListPath, logger)
	} else {
		checker, err = safety.LoadStore(ctx, st, logger)
	}
	if err != nil {
		return err
	}
	logger.Infof(ctx, "Word list loaded: %d patterns", checker.Len())

	if check != "" {
		fmt.Println(checker.IsSensitive(check))
		return nil
	}

	// Metrics
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Domain stores
	clk := clock.WallClock
	registryStore := subscription.New(st, logger)
	rooms := roomstate.New(st, logger)
	configs := notify.NewConfigStore(st, logger)
	perms := permission.New(st, logger)
	if err := perms.Load(ctx); err != nil {
		return err
	}

	alerts := alertUsecase.New(logger, discordClient, clk)

	bot, err := onebot.New(onebot.Config{
		URL:            cfg.OneBot.URL,
		AccessToken:    cfg.OneBot.AccessToken,
		WriteTimeout:   cfg.OneBot.WriteTimeout,
		RequestTimeout: cfg.OneBot.RequestTimeout,
		MinBackoff:     cfg.OneBot.MinBackoff,
		MaxBackoff:     cfg.OneBot.MaxBackoff,
	}, clk, logger)
	if err != nil {
		return err
	}
	defer bot.Close()

	liveUC := liveUsecase.New(logger, liveUsecase.Deps{
		Registry:   registryStore,
		Rooms:      rooms,
		Configs:    configs,
		Dispatcher: notify.NewDispatcher(registryStore, perms, configs, clk, cfg.Dispatcher.SendDelay, collector, logger),
		Checker:    checker,
		Metrics:    collector,
		Clock:      clk,
	})
	if err := liveUC.Load(ctx); err != nil {
		return err
	}

	moderateUC := moderationUsecase.New(logger, st, perms, checker, bot, alerts, clk)
	if err := moderateUC.Load(ctx); err != nil {
		return err
	}
	wireBotEvents(bot, liveUC, moderateUC, logger)

	p := poller.New(poller.Config{
		Interval:     cfg.Poller.Interval,
		Backoff:      cfg.Poller.Backoff,
		FetchTimeout: cfg.Poller.FetchTimeout,
	}, poller.Deps{
		UseCase:  liveUC,
		Fetcher:  bilibili.New(bilibili.Config{BaseURL: cfg.Bilibili.BaseURL, Timeout: cfg.Bilibili.Timeout}, logger),
		Sessions: bot,
		Alert:    alerts,
		Metrics:  collector,
		Clock:    clk,
	}, logger)

	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()
	go func() {
		if err := bot.Run(botCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "OneBot client stopped: %v", err)
		}
	}()

	if once {
		if err := waitConnected(ctx, bot, cfg.OneBot.RequestTimeout); err != nil {
			return err
		}
		return p.RunOnce(ctx)
	}

	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	jwtManager, err := jwt.New(jwt.Config{SecretKey: cfg.JWT.SecretKey, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL})
	if err != nil {
		return err
	}

	var pinger httpserver.Pinger
	if redisClient != nil {
		pinger = redisClient
	}
	srv, err := httpserver.New(logger, httpserver.Config{
		Host:        cfg.HTTPServer.Host,
		Port:        cfg.HTTPServer.Port,
		Environment: cfg.Environment.Name,
		LiveNotify:  liveUC,
		Moderation:  moderateUC,
		Permissions: perms,
		Bot:         bot,
		JWTManager:  jwtManager,
		Limiter: middleware.NewSubjectLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           cfg.RateLimit.IdleTTL,
		}, clk),
		Registry: registry,
		Redis:    pinger,
		Discord:  discordClient,
	})
	if err != nil {
		return err
	}

	srvDone := make(chan struct{})
	go func() {
		defer close(srvDone)
		if err := srv.Run(ctx); err != nil {
			logger.Errorf(ctx, "HTTP server stopped: %v", err)
			cancel()
		}
	}()

	_ = p.Run(ctx)
	<-srvDone

	logger.Info(context.Background(), "Shutting down, saving state...")
	if err := liveUC.Persist(context.Background()); err != nil {
		logger.Errorf(context.Background(), "Failed to persist room state: %v", err)
	}
	return nil
}

// openStorage picks the document backend and the backup target.
func openStorage(ctx context.Context, cfg *config.Config, logger log.Logger) (storage.Store, pkgRedis.IRedis, error) {
	var backuper storage.Backuper
	switch cfg.Storage.Backup {
	case config.BackupLocal:
		backuper = storage.LocalBackuper{Dir: cfg.Storage.BackupDir}
	case config.BackupMinIO:
		client, err := configMinIO.ConnectWithRetry(ctx, cfg.MinIO, 0)
		if err != nil {
			return nil, nil, err
		}
		backuper = storage.MinIOBackuper{Client: client, Bucket: cfg.MinIO.Bucket, Prefix: cfg.MinIO.Prefix}
		logger.Infof(ctx, "MinIO backups enabled, bucket %s", cfg.MinIO.Bucket)
	}

	if cfg.Storage.Backend == config.StorageRedis {
		client, err := configRedis.Connect(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof(ctx, "Redis storage initialized, prefix %s", cfg.Storage.RedisPrefix)
		return storage.NewRedisStore(client, cfg.Storage.RedisPrefix, backuper, nil, logger), client, nil
	}

	logger.Infof(ctx, "File storage initialized at %s", cfg.Storage.DataDir)
	return storage.NewFileStore(cfg.Storage.DataDir, backuper, nil, logger), nil, nil
}

// wireBotEvents routes group chat to moderation and drops the state of groups
// the bot was kicked from.
func wireBotEvents(bot onebot.Client, liveUC livenotify.UseCase, moderateUC moderation.UseCase, logger log.Logger) {
	bot.OnGroupMessage(func(ctx context.Context, ev onebot.GroupMessageEvent) {
		msg := moderation.InboundMessage{
			GroupID:  strconv.FormatInt(ev.GroupID, 10),
			MemberID: strconv.FormatInt(ev.UserID, 10),
			Text:     ev.RawMessage,
		}
		if _, err := moderateUC.CheckMessage(ctx, msg); err != nil {
			logger.Warnf(ctx, "moderation check on group %s: %v", msg.GroupID, err)
		}
	})
	bot.OnGroupKicked(func(ctx context.Context, groupID int64) {
		group := strconv.FormatInt(groupID, 10)
		if err := liveUC.RemoveGroup(ctx, group); err != nil {
			logger.Warnf(ctx, "removing kicked group %s: %v", group, err)
			return
		}
		logger.Infof(ctx, "Bot kicked from group %s, subscriptions removed", group)
	})
}

func waitConnected(ctx context.Context, bot onebot.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !bot.Connected() {
		if time.Now().After(deadline) {
			return onebot.ErrNotConnected
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

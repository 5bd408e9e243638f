package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	chatx "github.com/lazarovttac/messirve-prototype/agent/chat"
	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	conversationx "github.com/lazarovttac/messirve-prototype/agent/conversation"
	repositoryx "github.com/lazarovttac/messirve-prototype/agent/repository"
	restaurantx "github.com/lazarovttac/messirve-prototype/agent/restaurant"
	schedulingx "github.com/lazarovttac/messirve-prototype/agent/scheduling"
	toolx "github.com/lazarovttac/messirve-prototype/agent/tool"
	dashboardx "github.com/lazarovttac/messirve-prototype/dashboard"
	configx "github.com/lazarovttac/messirve-prototype/pkg/config"
	docstorex "github.com/lazarovttac/messirve-prototype/pkg/docstore"
	_ "github.com/lazarovttac/messirve-prototype/pkg/logger/autoload"
	openrouterx "github.com/lazarovttac/messirve-prototype/pkg/openrouter"
	telegramx "github.com/lazarovttac/messirve-prototype/pkg/telegram"
)

type AppConfig struct {
	RestaurantConfig string        `envconfig:"RESTAURANT_CONFIG" split_words:"true" default:"restaurant.yaml"`
	HistoryBackend   string        `envconfig:"HISTORY_BACKEND" split_words:"true" default:"memory"`
	HistoryIdleTTL   time.Duration `envconfig:"HISTORY_IDLE_TTL" split_words:"true" default:"24h"`
	EvictionSchedule string        `envconfig:"EVICTION_SCHEDULE" split_words:"true" default:"@every 1h"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if err := openrouterx.Healthcheck(ctx, openRouterClient, openRouterCfg.Timeout); err != nil {
		log.Fatal().Err(err).Msg("llm provider healthcheck failed")
	}
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build chat model")
	}

	pgCfg := configx.MustNew[docstorex.Config]("POSTGRES")
	store, err := docstorex.NewPostgresStore(*pgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open document store")
	}
	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}

	repo := repositoryx.New(store)
	engine := schedulingx.NewEngine(repo)

	binder, err := toolx.NewBinder(repo, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool binder")
	}

	rc, err := restaurantx.Load(appCfg.RestaurantConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load restaurant config")
	}

	histStore, memStore, err := newHistoryStore(appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build conversation store")
	}

	svc, err := chatx.New(repo, binder, chatModel, histStore, rc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build chat service")
	}

	tgCfg := configx.MustNew[telegramx.Config]("TELEGRAM")
	bot, err := telegramx.New(*tgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect telegram bot")
	}

	dashCfg := configx.MustNew[dashboardx.Config]("DASHBOARD")
	dash, err := dashboardx.New(*dashCfg, repo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dashboard server")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(ctx, func(ctx context.Context, msg telegramx.Message) (string, error) {
			user := contractx.ChatUser{
				ID:          msg.UserID,
				Name:        displayName(msg),
				PhoneNumber: msg.UserID,
			}
			return svc.HandleMessage(ctx, user, msg.Text)
		})
	})

	g.Go(func() error {
		return dash.Run(ctx)
	})

	if memStore != nil {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(appCfg.EvictionSchedule, func() {
			if n := memStore.EvictIdle(); n > 0 {
				log.Info().Int("evicted", n).Msg("evicted idle conversations")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("invalid eviction schedule")
		}
		scheduler.Start()
		g.Go(func() error {
			<-ctx.Done()
			<-scheduler.Stop().Done()
			return ctx.Err()
		})
	}

	log.Info().Str("restaurant", rc.Name).Msg("reservation agent running")

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("service exited")
	}
	log.Info().Msg("shutdown complete")
}

func newHistoryStore(appCfg *AppConfig) (conversationx.Store, *conversationx.MemoryStore, error) {
	switch appCfg.HistoryBackend {
	case "memory":
		mem := conversationx.NewMemoryStore(conversationx.WithIdleTTL(appCfg.HistoryIdleTTL))
		return mem, mem, nil
	case "upstash":
		redisCfg := configx.MustNew[conversationx.UpstashRedisConfig]("UPSTASH_REDIS")
		s, err := conversationx.NewUpstashRedisStore(*redisCfg,
			conversationx.WithTTL(appCfg.HistoryIdleTTL))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", appCfg.HistoryBackend)
	}
}

func displayName(msg telegramx.Message) string {
	name := msg.FirstName
	if msg.LastName != "" {
		name = name + " " + msg.LastName
	}
	if name == "" {
		name = msg.Username
	}
	return name
}

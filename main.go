package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/agents/orchestrator"
	"github.com/founding-ai/orchestra/agent/contract"
	"github.com/founding-ai/orchestra/agent/events"
	llmx "github.com/founding-ai/orchestra/agent/llm"
	"github.com/founding-ai/orchestra/agent/profile"
	rosterx "github.com/founding-ai/orchestra/agent/roster"
	"github.com/founding-ai/orchestra/agent/sitegen"
	configx "github.com/founding-ai/orchestra/pkg/config"
	logx "github.com/founding-ai/orchestra/pkg/logger"
	openrouterx "github.com/founding-ai/orchestra/pkg/openrouter"
	webhookx "github.com/founding-ai/orchestra/pkg/webhook"
	serverx "github.com/founding-ai/orchestra/server"
)

type AppConfig struct {
	ProfileBackend string `envconfig:"PROFILE_BACKEND" split_words:"true" default:"file"`
	ProfilePath    string `envconfig:"PROFILE_PATH" split_words:"true" default:"business_state.json"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	ctx := context.Background()

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if openrouterx.NewClient(llmCfg.OpenRouterFor(contract.AgentPlanner)) == nil {
		log.Fatal().Msg("openrouter client init failed, check API key")
	}

	roster, err := rosterx.New(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("roster setup failed")
	}

	appCfg := configx.MustNew[AppConfig]("")
	profiles := newProfileStore(ctx, appCfg)

	siteCfg := configx.MustNew[sitegen.Config]("SITE")
	sites := sitegen.New(*siteCfg)

	bus := events.NewBus()

	svc, err := orchestrator.New(roster, bus, profiles, sites)
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator setup failed")
	}

	webhookCfg := configx.MustNew[webhookx.Config]("WEBHOOK")
	if webhookCfg.Enabled() {
		client := webhookx.MustNew(*webhookCfg)
		feed, _ := bus.Subscribe()
		client.Attach(ctx, feed)
	}

	srvCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(*srvCfg, svc)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func newProfileStore(ctx context.Context, cfg *AppConfig) profile.Store {
	if cfg.ProfileBackend == "postgres" {
		pgCfg := configx.MustNew[profile.PostgresConfig]("PROFILE_PG")
		store := profile.NewPostgresStore(*pgCfg)
		if err := store.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("profile store setup failed")
		}
		return store
	}
	return profile.NewFileStore(cfg.ProfilePath)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/conceptbridge/conceptbridge/internal/cache"
	"github.com/conceptbridge/conceptbridge/internal/config"
	"github.com/conceptbridge/conceptbridge/internal/discovery"
	"github.com/conceptbridge/conceptbridge/internal/llm"
	"github.com/conceptbridge/conceptbridge/internal/store"
	"github.com/conceptbridge/conceptbridge/internal/wiki"
)

// app bundles everything a command needs after wiring.
type app struct {
	service *discovery.Service
	store   store.GraphStore
	cfg     config.AppConfig

	embedder *llm.CloseableEmbedder
	tiered   *cache.TieredCache
}

func (a *app) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.tiered != nil {
		_ = a.tiered.Close()
	} else if a.store != nil {
		_ = a.store.Close()
	}
}

// buildApp wires the discovery pipeline from configuration. The chat model is
// required; every other collaborator degrades to nil with a warning, matching
// the pipeline's graceful-degradation contract.
func buildApp(ctx context.Context) (*app, error) {
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, err
	}
	chatModel, err := llm.NewChatModel(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	a := &app{cfg: appCfg}

	embCfg, err := config.LoadEmbeddingConfig()
	if err == nil {
		a.embedder, err = llm.NewCloseableEmbedder(ctx, embCfg)
	}
	if err != nil {
		slog.Warn("embedding model unavailable, similarity scoring degrades to the fallback value", "error", err)
		a.embedder = nil
	}

	a.store = openStore(ctx, appCfg.Store)

	var ephemeral cache.ResultCache
	if redisCache, err := cache.NewRedisCache(ctx, appCfg.Cache.RedisAddr, appCfg.Cache.RedisPassword,
		appCfg.Cache.RedisDB, appCfg.Cache.TTL); err != nil {
		slog.Warn("redis unavailable, ephemeral cache tier disabled", "error", err)
	} else {
		ephemeral = redisCache
	}
	if a.store != nil || ephemeral != nil {
		a.tiered = cache.NewTieredCache(ephemeral, a.store, nil)
	}

	lookup := wiki.NewClient(
		wiki.WithLanguages(appCfg.Wiki.PrimaryLang, appCfg.Wiki.SecondaryLang),
		wiki.WithHTTPClient(&http.Client{Timeout: appCfg.Wiki.Timeout}),
	)

	discCfg := config.LoadDiscoveryConfig()
	generator := discovery.NewGenerator(chatModel, discCfg.OversampleFactor, nil)
	generator.SetTemplatesDir(appCfg.TemplatesDir)
	filter := discovery.NewAcademicFilter(chatModel, nil)

	var scorer *discovery.Scorer
	if a.embedder != nil {
		scorer = discovery.NewScorer(a.embedder, discCfg.FallbackSimilarity, nil)
	} else {
		scorer = discovery.NewScorer(nil, discCfg.FallbackSimilarity, nil)
	}

	summarizer := discovery.NewSummarizer(chatModel, nil)
	assembler := discovery.NewAssembler(lookup, summarizer, discCfg.EdgeWeightScale, discCfg.EdgeWeightFloor, nil)

	a.service = discovery.NewService(generator, filter, scorer, assembler, lookup, a.tiered, discCfg, nil)
	return a, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) store.GraphStore {
	switch cfg.Backend {
	case config.StoreNeo4j:
		s, err := store.NewNeo4jStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			slog.Warn("neo4j unavailable, persistent tier disabled", "error", err)
			return nil
		}
		return s
	case config.StoreSQLite, "":
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			slog.Warn("sqlite unavailable, persistent tier disabled", "error", err)
			return nil
		}
		return s
	default:
		slog.Warn("unknown store backend, persistent tier disabled", "backend", cfg.Backend)
		return nil
	}
}

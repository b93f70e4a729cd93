// Command petclinic-genai serves the petclinic chat assistant.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rds "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/KamdynS/petclinic-genai/agent/core"
	"github.com/KamdynS/petclinic-genai/config"
	"github.com/KamdynS/petclinic-genai/customers"
	"github.com/KamdynS/petclinic-genai/discovery"
	discoveryredis "github.com/KamdynS/petclinic-genai/discovery/redis"
	"github.com/KamdynS/petclinic-genai/genai"
	"github.com/KamdynS/petclinic-genai/llm"
	"github.com/KamdynS/petclinic-genai/llm/anthropic"
	"github.com/KamdynS/petclinic-genai/llm/openai"
	"github.com/KamdynS/petclinic-genai/memory"
	"github.com/KamdynS/petclinic-genai/memory/inmemory"
	memoryredis "github.com/KamdynS/petclinic-genai/memory/redis"
	"github.com/KamdynS/petclinic-genai/memory/vector/pgvector"
	obs "github.com/KamdynS/petclinic-genai/observability"
	"github.com/KamdynS/petclinic-genai/observability/prom"
	"github.com/KamdynS/petclinic-genai/rag"
	"github.com/KamdynS/petclinic-genai/rest"
	httpserver "github.com/KamdynS/petclinic-genai/server/http"
	"github.com/KamdynS/petclinic-genai/tools"
	"github.com/KamdynS/petclinic-genai/vets"
)

const (
	serviceName = "genai-service"
	// dimensions of text-embedding-3-small
	embeddingDimensions = 1536
	vetTable            = "vet_documents"
	sessionTTL          = 24 * time.Hour
	registrationTTL     = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "petclinic-genai: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := obs.NewLogger(obs.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName})
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	exporter, err := prom.New(promReg, "petclinic_genai")
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	obs.SetMetrics(exporter)

	var redisClient rds.UniversalClient
	if cfg.RedisAddr != "" {
		redisClient = rds.NewClient(&rds.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	resolver, err := newResolver(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}

	rc := rest.New(cfg.HTTPClientTimeout)
	rc.UserAgent = serviceName
	customersClient := customers.NewClient(resolver, rc, customers.WithLogger(logger))
	vetsClient := vets.NewClient(resolver, rc)

	embeddingClient, err := openai.NewClient(openai.Config{APIKey: cfg.OpenAIAPIKey, Model: openaiModel(cfg)})
	if err != nil {
		return fmt.Errorf("openai client: %w", err)
	}
	embedder := rag.NewOpenAIEmbedder(embeddingClient, cfg.EmbeddingModel)

	store, closeStore, err := newVectorStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	indexer := &genai.VetIndexer{Vets: vetsClient, Store: store, Embedder: embedder, Logger: logger}
	if _, err := indexer.Load(ctx); err != nil {
		// the assistant still answers owner questions without vet data
		logger.Warn().Err(err).Msg("vet indexing failed")
	}

	registry := tools.NewRegistry()
	provider := genai.NewDataProvider(customersClient, rag.NewSearcher(store, embedder))
	if err := genai.NewTools(provider, logger).Register(registry); err != nil {
		return err
	}

	model, err := newChatModel(cfg, embeddingClient)
	if err != nil {
		return err
	}

	var conversations memory.ConversationStore = inmemory.NewConversationStore()
	if redisClient != nil {
		conversations = memoryredis.NewConversationStore(redisClient, "petclinic-genai", sessionTTL, cfg.ChatMemoryWindow)
	}

	agent := core.NewChatAgent(core.ChatConfig{
		Model:  model,
		Tools:  registry,
		Memory: conversations,
		Config: core.AgentConfig{
			MaxIterations: cfg.MaxIterations,
			Timeout:       cfg.ChatTimeout,
			SystemPrompt:  genai.SystemPrompt,
			MemoryWindow:  cfg.ChatMemoryWindow,
		},
		Middleware: []core.Middleware{&core.SimpleGuardrails{MaxInputChars: 4000}},
		Processors: []core.MessageProcessor{core.ToolCallFilter{}},
		Logger:     &logger,
	})

	server := httpserver.NewServer(agent, httpserver.Config{Port: cfg.HTTPPort},
		httpserver.WithTools(registry),
		httpserver.WithMetricsHandler(prom.Handler(promReg)),
		httpserver.WithLogger(logger),
	)
	return server.ListenAndServe(ctx)
}

// newResolver builds discovery from the configured backend. With Redis the
// service also registers itself and keeps its registration alive.
func newResolver(ctx context.Context, cfg config.Config, client rds.UniversalClient, logger zerolog.Logger) (*discovery.Resolver, error) {
	selector, err := discovery.SelectorByName(cfg.DiscoverySelector)
	if err != nil {
		return nil, err
	}
	if cfg.DiscoveryBackend != config.DiscoveryRedis {
		static, err := discovery.NewStaticClientFromURLs(cfg.ServiceURLs())
		if err != nil {
			return nil, err
		}
		return discovery.NewResolver(static, selector), nil
	}

	registry := discoveryredis.NewRegistry(client, "petclinic", registrationTTL)
	host, _ := os.Hostname()
	self := discovery.Instance{
		ServiceID:  serviceName,
		InstanceID: net.JoinHostPort(host, strconv.Itoa(cfg.HTTPPort)),
		Host:       host,
		Port:       cfg.HTTPPort,
	}
	go func() {
		if err := registry.Heartbeat(ctx, self, registrationTTL/3); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("discovery heartbeat stopped")
		}
	}()
	return discovery.NewResolver(registry, selector), nil
}

func newVectorStore(ctx context.Context, cfg config.Config) (memory.VectorStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return inmemory.NewVectorStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	store := pgvector.New(pool, vetTable)
	if err := store.EnsureSchema(ctx, embeddingDimensions); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func openaiModel(cfg config.Config) string {
	if cfg.LLMProvider == string(llm.ProviderOpenAI) {
		return cfg.LLMModel
	}
	return ""
}

func newChatModel(cfg config.Config, oa *openai.Client) (llm.Client, error) {
	if cfg.LLMProvider != string(llm.ProviderAnthropic) {
		return oa, nil
	}
	c, err := anthropic.NewClient(anthropic.Config{APIKey: cfg.AnthropicAPIKey, Model: cfg.LLMModel})
	if err != nil {
		return nil, fmt.Errorf("anthropic client: %w", err)
	}
	return c, nil
}

// Package app is the orchestrator's dependency container: it builds
// every component from a Config and exposes the operations the (external,
// out-of-scope) HTTP boundary would call, mirroring spec §6's endpoint
// table. Grounded on the "replace global singletons with an explicit
// container built once at startup" design note the teacher's larger
// examples (orchestrator, agent-with-resilience) follow informally —
// here made an actual struct rather than package-level state.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"google.golang.org/genai"

	"github.com/archbuilder/orchestrator/internal/apperrors"
	"github.com/archbuilder/orchestrator/internal/cache"
	"github.com/archbuilder/orchestrator/internal/config"
	"github.com/archbuilder/orchestrator/internal/coordinator"
	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/prompt"
	"github.com/archbuilder/orchestrator/internal/provider"
	"github.com/archbuilder/orchestrator/internal/rag"
	"github.com/archbuilder/orchestrator/internal/rag/chunker"
	"github.com/archbuilder/orchestrator/internal/rag/vector"
	"github.com/archbuilder/orchestrator/internal/ratelimit"
	"github.com/archbuilder/orchestrator/internal/resilience"
	"github.com/archbuilder/orchestrator/internal/telemetry"
	"github.com/archbuilder/orchestrator/internal/types"
	"github.com/archbuilder/orchestrator/internal/usage"
	"github.com/archbuilder/orchestrator/internal/workflow"
)

// App wires the coordinator, workflow engine, and retriever behind the
// operations spec §6 exposes, plus the in-memory project/result stores
// a real deployment would keep in the out-of-scope persistent datastore.
type App struct {
	cfg         *config.Config
	coordinator *coordinator.Coordinator
	workflow    *workflow.Engine
	retriever   *rag.Retriever
	tracer      *telemetry.Provider
	log         *obslog.Logger

	mu       sync.RWMutex
	projects map[string]*types.Project
	results  map[string]types.AICommandResult // correlation_id -> terminal result
}

// New builds a fully wired App from cfg. github_models and anthropic are
// registered even without a credential and simply fail at dispatch time
// (the dispatcher's failover and the coordinator's fallback already
// handle an unreachable/unauthorized provider); openai is registered only
// when an OpenAI API key is configured, and vertex_ai only when a Vertex
// AI project id is configured and its client can be created. The mock
// provider is never registered here; it exists for tests only.
func New(cfg *config.Config) (*App, error) {
	log := obslog.New("archbuilder")

	l1 := cache.NewL1(cfg.Cache.L1MaxEntries, cfg.Cache.L1MaxBytes)
	var l2 *cache.L2
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("app: parse REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		l2 = cache.NewL2(redisClient, "archbuilder")
	}
	resultCache := cache.New(l1, l2, cfg.Cache.DefaultTTL, cfg.Cache.L2CapTTL)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient)
	} else {
		limiter = ratelimit.NewInProcessLimiter()
	}

	ledger := usage.NewRingLedger(0)
	accountant := usage.New(ledger, usage.PerTenantTier(staticAllTiersUnknown), cfg.Usage.BillingPeriod)

	assembler := prompt.New(prompt.Default())

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	retriever := rag.New(embedder, chunker.DefaultStrategy(), log)

	dispatcher := buildDispatcher(cfg, log)

	var tracer *telemetry.Provider
	if t, err := telemetry.NewProvider("archbuilder-orchestrator", ""); err == nil {
		tracer = t
	} else {
		log.Warn("telemetry provider unavailable, tracing disabled", obslog.Fields{"error": err.Error()})
	}

	coord := coordinator.New(limiter, accountant, resultCache, assembler, retriever, dispatcher, tracer, log, cfg.RateLimitRequests)

	engine := workflow.New(log)
	workflow.RegisterDefaultExecutors(engine, coord, retriever)

	return &App{
		cfg:         cfg,
		coordinator: coord,
		workflow:    engine,
		retriever:   retriever,
		tracer:      tracer,
		log:         log.WithComponent("app"),
		projects:    make(map[string]*types.Project),
		results:     make(map[string]types.AICommandResult),
	}, nil
}

// staticAllTiersUnknown is used until a real tenant→tier lookup (the
// out-of-scope persistent datastore) is wired in; CheckAllowed/Remaining
// already degrade gracefully ({Allowed:true, Remaining:-1}) for a tier
// not present in the tierLimits table, so this is a safe placeholder
// rather than a hidden quota bypass bug.
func staticAllTiersUnknown(tenantID string) types.SubscriptionTier {
	return types.SubscriptionTier("")
}

func buildEmbedder(cfg *config.Config) (vector.Embedder, error) {
	if cfg.VertexAIProjectID == "" {
		return vector.NewLocalVectorizer(), nil
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.VertexAIProjectID,
		Location: cfg.VertexAILocation,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create vertex ai client: %w", err)
	}
	return vector.NewGenAIEmbedder(client, ""), nil
}

func buildDispatcher(cfg *config.Config, log *obslog.Logger) *provider.Dispatcher {
	retry := resilience.RetryConfig{
		MaxAttempts:   cfg.Resilience.MaxRetries,
		InitialDelay:  cfg.Resilience.RetryBaseDelay,
		MaxDelay:      cfg.Resilience.RetryMaxDelay,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
	d := provider.New(log, retry)
	d.SetTimeouts(cfg.Resilience.TimeoutMedium, cfg.Resilience.TimeoutHigh)

	cbConfig := func(name string) resilience.Config {
		c := resilience.DefaultConfig(name)
		c.VolumeThreshold = cfg.Resilience.BreakerFailureThreshold
		c.WindowSize = cfg.Resilience.BreakerWindow
		c.SleepWindow = cfg.Resilience.BreakerCooldown
		// Spec's single-probe cool-down contract: exactly one request is
		// admitted while half-open, not DefaultConfig's 5.
		c.HalfOpenRequests = 1
		return c
	}

	d.Register("github_models", provider.NewOpenAICompatible("github_models", "https://models.inference.ai.azure.com", cfg.GitHubModelsToken), cbConfig("github_models"))
	if cfg.OpenAIAPIKey != "" {
		d.Register("openai", provider.NewOpenAICompatible("openai", "", cfg.OpenAIAPIKey), cbConfig("openai"))
	}
	d.Register("anthropic", provider.NewAnthropic("", ""), cbConfig("anthropic"))

	if cfg.VertexAIProjectID != "" {
		if client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.VertexAIProjectID,
			Location: cfg.VertexAILocation,
		}); err == nil {
			d.Register("vertex_ai", provider.NewGemini(client, "vertex_ai"), cbConfig("vertex_ai"))
		} else {
			log.Warn("vertex ai client unavailable, provider not registered", obslog.Fields{"error": err.Error()})
		}
	}

	return d
}

// SubmitCommand implements POST /ai/commands and POST /ai/layouts (both
// routes funnel into ProcessCommand; the layout endpoint is a thinner
// request shape the boundary maps onto an AICommand with TaskType=layout).
func (a *App) SubmitCommand(ctx context.Context, cmd types.AICommand) (types.AICommandResult, error) {
	result, err := a.coordinator.ProcessCommand(ctx, cmd)
	if err != nil {
		return types.AICommandResult{}, err
	}
	a.mu.Lock()
	a.results[result.CorrelationID] = result
	a.mu.Unlock()
	return result, nil
}

// GetCommandResult implements GET /ai/commands/{correlation_id}.
func (a *App) GetCommandResult(correlationID string) (types.AICommandResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result, ok := a.results[correlationID]
	return result, ok
}

// UploadDocument implements POST /documents/upload: indexes the document
// into the retriever (C3) immediately rather than deferring to a
// workflow step, so content is queryable as soon as upload completes.
func (a *App) UploadDocument(ctx context.Context, docID, content string, in chunker.Input) (int, error) {
	return a.retriever.IndexDocument(ctx, docID, content, in)
}

// CreateProject implements POST /projects.
func (a *App) CreateProject(tenantID string, complexity types.Complexity, requestFields map[string]interface{}) *types.Project {
	projectID := correlationLikeID(tenantID)
	proj := workflow.NewProject(projectID, tenantID, complexity, requestFields)

	a.mu.Lock()
	a.projects[projectID] = proj
	a.mu.Unlock()
	return proj
}

// ExecuteProject implements POST /projects/{id}/execute.
func (a *App) ExecuteProject(ctx context.Context, projectID string) (*types.Project, error) {
	proj, ok := a.getProject(projectID)
	if !ok {
		return nil, apperrors.New("app.execute_project", apperrors.CodeNotFound, apperrors.KindInput, "project not found", apperrors.ErrNotFound)
	}
	if err := a.workflow.RunProject(ctx, proj); err != nil {
		return nil, err
	}
	proj.UpdatedAt = time.Now()
	return proj, nil
}

// ProjectStatus implements GET /projects/{id}/status.
func (a *App) ProjectStatus(projectID string) (*types.Project, error) {
	proj, ok := a.getProject(projectID)
	if !ok {
		return nil, apperrors.New("app.project_status", apperrors.CodeNotFound, apperrors.KindInput, "project not found", apperrors.ErrNotFound)
	}
	return proj, nil
}

// RetryProjectStep resumes a failed project from a specific step,
// mirroring spec §4.11's RetryStep(project_id, step_id) operation.
func (a *App) RetryProjectStep(ctx context.Context, projectID, stepID string) (*types.Project, error) {
	proj, ok := a.getProject(projectID)
	if !ok {
		return nil, apperrors.New("app.retry_step", apperrors.CodeNotFound, apperrors.KindInput, "project not found", apperrors.ErrNotFound)
	}
	if err := a.workflow.RetryStep(ctx, proj, stepID); err != nil {
		return nil, err
	}
	proj.UpdatedAt = time.Now()
	return proj, nil
}

func (a *App) getProject(projectID string) (*types.Project, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	proj, ok := a.projects[projectID]
	return proj, ok
}

// Shutdown releases background resources (currently just the tracer).
func (a *App) Shutdown(ctx context.Context) error {
	if a.tracer == nil {
		return nil
	}
	return a.tracer.Shutdown(ctx)
}

func correlationLikeID(tenantID string) string {
	return fmt.Sprintf("proj_%s_%d", tenantID, time.Now().UnixNano())
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/twmb/franz-go/pkg/kgo"

	"credverify/internal/notify"
	"credverify/internal/platform/config"
	"credverify/internal/platform/kafka"
	"credverify/internal/platform/metrics"
	"credverify/internal/platform/postgres"
	"credverify/internal/platform/redis"
	ratelimitmw "credverify/internal/ratelimit/middleware"
	"credverify/internal/ratelimit/store/bucket"
	reviewhandler "credverify/internal/review/handler"
	reviewmetrics "credverify/internal/review/metrics"
	reviewservice "credverify/internal/review/service"
	"credverify/internal/review/sla"
	reviewstore "credverify/internal/review/store"
	"credverify/internal/verification/cache"
	verifyhandler "credverify/internal/verification/handler"
	verifymetrics "credverify/internal/verification/metrics"
	"credverify/internal/verification/models"
	"credverify/internal/verification/ports"
	"credverify/internal/verification/providers"
	"credverify/internal/verification/providers/profile"
	"credverify/internal/verification/providers/registry"
	verifyservice "credverify/internal/verification/service"
	resultstore "credverify/internal/verification/store/result"
	"credverify/internal/verification/store/submission"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/audit"
	auditpublisher "credverify/pkg/platform/audit/publisher"
	auditmemory "credverify/pkg/platform/audit/store/memory"
	auditpostgres "credverify/pkg/platform/audit/store/postgres"
	"credverify/pkg/platform/httputil"
	adminmw "credverify/pkg/platform/middleware/admin"
	request "credverify/pkg/platform/middleware/request"
	"credverify/pkg/platform/middleware/requesttime"
	"credverify/pkg/platform/tx"
)

const (
	auditBuffer  = 1024
	notifyBuffer = 256
)

// infra holds the optional external backends. A nil field means the
// in-memory implementation is used instead.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	in := &infra{}
	db, err := postgres.Open(connectCtx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	in.db = db
	if db != nil {
		if err := postgres.Migrate(connectCtx, db); err != nil {
			in.Close()
			return nil, err
		}
	}

	if in.redis, err = redis.New(connectCtx, cfg.Redis); err != nil {
		in.Close()
		return nil, err
	}

	if in.kafka, err = kafka.New(connectCtx, cfg.Kafka); err != nil {
		in.Close()
		return nil, err
	}
	if in.kafka != nil {
		if err := notify.EnsureTopic(connectCtx, in.kafka, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.Warn("could not ensure status topic", "topic", cfg.Kafka.Topic, "error", err)
		}
	}
	return in, nil
}

// Describe names the selected backend per concern for the startup log.
func (in *infra) Describe() string {
	pick := func(enabled bool, name string) string {
		if enabled {
			return name
		}
		return "memory"
	}
	return strings.Join([]string{
		"store=" + pick(in.db != nil, "postgres"),
		"cache=" + pick(in.redis != nil, "redis"),
		"notify=" + pick(in.kafka != nil, "kafka"),
	}, " ")
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

func (in *infra) health(ctx context.Context) map[string]string {
	checks := map[string]string{}
	if in.db != nil {
		checks["postgres"] = statusOf(in.db.PingContext(ctx))
	}
	if in.redis != nil {
		checks["redis"] = statusOf(in.redis.Health(ctx))
	}
	if in.kafka != nil {
		checks["kafka"] = statusOf(in.kafka.Ping(ctx))
	}
	return checks
}

func statusOf(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}

type app struct {
	router       http.Handler
	sweeper      *sla.Sweeper
	notifyWorker *notify.Worker
	audit        *auditpublisher.Publisher
}

func (a *app) Close() {
	a.audit.Close()
}

func buildApp(ctx context.Context, cfg config.Config, in *infra, log *slog.Logger) (*app, error) {
	var (
		submissions ports.SubmissionSource
		results     interface {
			ports.ResultStore
			reviewservice.ResultStore
		}
		reviews    reviewservice.Store
		uow        reviewservice.UnitOfWork
		auditStore audit.Store
	)
	if in.db != nil {
		subStore := submission.NewPostgres(in.db)
		if err := seedSubmissions(ctx, cfg.SubmissionSeedFile, subStore, log); err != nil {
			return nil, err
		}
		submissions = subStore
		results = resultstore.NewPostgres(in.db)
		reviews = reviewstore.NewPostgres(in.db)
		uow = tx.NewRunner(in.db)
		auditStore = auditpostgres.New(in.db)
	} else {
		subStore := submission.NewInMemory()
		if err := seedSubmissions(ctx, cfg.SubmissionSeedFile, subStore, log); err != nil {
			return nil, err
		}
		submissions = subStore
		results = resultstore.NewInMemory()
		reviews = reviewstore.NewInMemory()
		uow = reviewstore.NewInMemoryUnitOfWork()
		auditStore = auditmemory.NewInMemoryStore()
	}

	auditor := auditpublisher.NewPublisher(auditStore,
		auditpublisher.WithAsyncBuffer(auditBuffer),
		auditpublisher.WithLogger(log),
	)

	vMetrics := verifymetrics.New()
	ttls := cache.TTLs{Active: cfg.Verification.StatusTTLActive, Terminal: cfg.Verification.StatusTTLFinal}
	var statusCache ports.StatusCache = cache.NewLocal(ttls)
	if in.redis != nil {
		statusCache = cache.NewRedis(in.redis.Client, ttls)
	}

	var (
		events       notify.Publisher
		notifyWorker *notify.Worker
	)
	if in.kafka != nil {
		events = notify.NewKafkaPublisher(in.kafka, cfg.Kafka.Topic, log, vMetrics.NotifyFailures)
	} else {
		ch := notify.NewChannelPublisher(notifyBuffer, log)
		events = ch
		notifyWorker = notify.NewWorker(ch.Events(), notify.LogNotifier{Logger: log}, log)
	}

	registryRouter, err := buildRegistry(cfg, log)
	if err != nil {
		return nil, err
	}
	profiles, err := buildProfiles(cfg, log)
	if err != nil {
		return nil, err
	}

	// The review queue needs to recompute overall status, and the
	// orchestrator needs the review queue; the closure resolves the cycle.
	var verifier *verifyservice.Service
	recompute := reviewservice.RecomputeFunc(func(ctx context.Context, submissionID id.SubmissionID, trigger string) (*models.OverallVerification, error) {
		return verifier.RecomputeStatus(ctx, submissionID, trigger)
	})

	reviewSvc, err := reviewservice.New(reviews, results, uow, recompute,
		reviewservice.WithLogger(log),
		reviewservice.WithMetrics(reviewmetrics.New()),
		reviewservice.WithEventPublisher(events),
		reviewservice.WithAuditor(auditor),
		reviewservice.WithSLAWindow(cfg.Review.SLAWindow),
	)
	if err != nil {
		return nil, err
	}

	verifier, err = verifyservice.New(submissions, results, registryRouter, profiles, reviewSvc,
		verifyservice.WithLogger(log),
		verifyservice.WithMetrics(vMetrics),
		verifyservice.WithStatusCache(statusCache),
		verifyservice.WithEventPublisher(events),
		verifyservice.WithAuditor(auditor),
		verifyservice.WithLookupTimeout(cfg.Verification.LookupTimeout),
		verifyservice.WithParallelism(cfg.Verification.Parallelism),
	)
	if err != nil {
		return nil, err
	}

	sweeper, err := sla.NewSweeper(reviewSvc, cfg.Review.SweepSchedule, log)
	if err != nil {
		return nil, err
	}

	return &app{
		router:       newRouter(cfg, in, log, verifyhandler.New(verifier, log, verifyhandler.WithAuditTrail(auditor)), reviewhandler.New(reviewSvc, log)),
		sweeper:      sweeper,
		notifyWorker: notifyWorker,
		audit:        auditor,
	}, nil
}

func newRouter(cfg config.Config, in *infra, log *slog.Logger, verify *verifyhandler.Handler, review *reviewhandler.Handler) http.Handler {
	httpMetrics := metrics.New()

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(log))
	r.Use(httpMetrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := in.health(ctx)
		status := http.StatusOK
		for _, s := range checks {
			if s != "up" {
				status = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, map[string]any{"status": statusText(status), "checks": checks})
	})
	r.Handle("/metrics", metrics.Handler())

	var buckets ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	if in.redis != nil {
		buckets = bucket.NewRedisBucketStore(in.redis.Client)
	}
	limiter := ratelimitmw.New(buckets, cfg.Server.VerifyRateLimit, cfg.Server.RateLimitWindow, log,
		ratelimitmw.WithRejectedCounter(httpMetrics.RateLimited),
	)

	r.Group(func(r chi.Router) {
		r.Use(limiter.RateLimit("verify"))
		r.Use(request.Timeout(cfg.Server.VerifyTimeout))
		verify.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(cfg.Server.AdminToken, log))
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		review.Register(r)
		verify.RegisterAdmin(r)
	})
	return r
}

func statusText(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

func buildRegistry(cfg config.Config, log *slog.Logger) (*providers.Router, error) {
	var clients []providers.RegistryClient
	for _, source := range registry.Catalog() {
		deployed := cfg.Registry[source.ID]
		if deployed.PrimaryURL == "" {
			log.Info("registry source not configured", "source", source.ID)
			continue
		}
		source.PrimaryURL = deployed.PrimaryURL
		source.FallbackURL = deployed.FallbackURL
		source.APIKey = deployed.APIKey
		source.Timeout = cfg.Verification.LookupTimeout
		client, err := registry.New(source, registry.WithLogger(log))
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return providers.NewRouter(clients...)
}

func buildProfiles(cfg config.Config, log *slog.Logger) (*profile.Set, error) {
	professional, err := profile.NewProfessionalNetwork(profile.Credentials{
		BaseURL: cfg.Profiles.ProfessionalNetwork.BaseURL,
		APIKey:  cfg.Profiles.ProfessionalNetwork.APIKey,
		Timeout: cfg.Profiles.Timeout,
	}, profile.WithLogger(log))
	if err != nil {
		return nil, err
	}
	citation, err := profile.NewCitationIndex(profile.Credentials{
		BaseURL: cfg.Profiles.CitationIndex.BaseURL,
		APIKey:  cfg.Profiles.CitationIndex.APIKey,
		Timeout: cfg.Profiles.Timeout,
	}, profile.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if !professional.Configured() {
		log.Warn("professional network provider not configured; profile checks are capped")
	}
	if !citation.Configured() {
		log.Warn("citation index provider not configured; profile checks are capped")
	}
	return profile.NewSet(professional, citation), nil
}

func seedSubmissions(ctx context.Context, path string, store submission.Saver, log *slog.Logger) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open submission seed file: %w", err)
	}
	defer f.Close()
	n, err := submission.Seed(ctx, store, f)
	if err != nil {
		return err
	}
	log.Info("seeded submissions", "count", n, "file", path)
	return nil
}

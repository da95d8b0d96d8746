// Package config reads service configuration from the environment. A .env
// file in the working directory is loaded first when present; variables
// already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Server       Server
	Log          Log
	Postgres     Postgres
	Redis        RedisConfig
	Kafka        Kafka
	Verification Verification
	Review       Review
	Registry     map[string]RegistrySource
	Profiles     Profiles

	// SubmissionSeedFile optionally points at a JSON array of submission
	// records loaded at startup.
	SubmissionSeedFile string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	AdminToken     string
	RequestTimeout time.Duration
	// VerifyTimeout bounds a synchronous verify call end to end.
	VerifyTimeout   time.Duration
	ShutdownTimeout time.Duration
	// VerifyRateLimit caps verify/status calls per client IP per
	// RateLimitWindow; zero disables limiting.
	VerifyRateLimit int
	RateLimitWindow time.Duration
}

type Log struct {
	Format string
	Level  string
}

// Postgres is optional; an empty DSN selects in-memory stores.
type Postgres struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig is optional; an empty URL selects the in-process cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka is optional; no brokers selects the in-process notifier.
type Kafka struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

type Verification struct {
	LookupTimeout   time.Duration
	Parallelism     int
	StatusTTLActive time.Duration
	StatusTTLFinal  time.Duration
}

type Review struct {
	SLAWindow     time.Duration
	SweepSchedule string
}

// RegistrySource holds deployment details of one registry. Sources without
// a primary URL are not registered.
type RegistrySource struct {
	PrimaryURL  string
	FallbackURL string
	APIKey      string
}

// ProfileProvider credentials; an empty API key leaves the provider
// unconfigured.
type ProfileProvider struct {
	BaseURL string
	APIKey  string
}

type Profiles struct {
	ProfessionalNetwork ProfileProvider
	CitationIndex       ProfileProvider
	Timeout             time.Duration
}

// FromEnv builds the configuration. registrySources lists the registry
// source identifiers to read, e.g. "cedula-mx" reads
// REGISTRY_CEDULA_MX_PRIMARY_URL.
func FromEnv(registrySources ...string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	r := &reader{}

	cfg := Config{
		Server: Server{
			Addr:            r.str("CREDVERIFY_ADDR", ":8080"),
			AdminToken:      r.str("ADMIN_API_TOKEN", ""),
			RequestTimeout:  r.duration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			VerifyTimeout:   r.duration("VERIFY_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
			VerifyRateLimit: r.int("RATE_LIMIT_VERIFY_PER_WINDOW", 60),
			RateLimitWindow: r.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Log: Log{
			Format: strings.ToLower(r.str("LOG_FORMAT", "json")),
			Level:  strings.ToLower(r.str("LOG_LEVEL", "info")),
		},
		Postgres: Postgres{
			DSN:          r.str("DATABASE_URL", ""),
			MaxOpenConns: r.int("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: r.int("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          r.str("REDIS_URL", ""),
			PoolSize:     r.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:           r.list("KAFKA_BROKERS"),
			Topic:             r.str("KAFKA_STATUS_TOPIC", "credverify.status"),
			Partitions:        int32(r.int("KAFKA_TOPIC_PARTITIONS", 3)),
			ReplicationFactor: int16(r.int("KAFKA_TOPIC_REPLICATION", 1)),
		},
		Verification: Verification{
			LookupTimeout:   r.duration("LOOKUP_TIMEOUT", 10*time.Second),
			Parallelism:     r.int("VERIFY_PARALLELISM", 8),
			StatusTTLActive: r.duration("STATUS_CACHE_TTL_ACTIVE", 5*time.Second),
			StatusTTLFinal:  r.duration("STATUS_CACHE_TTL_TERMINAL", 10*time.Minute),
		},
		Review: Review{
			SLAWindow:     time.Duration(r.int("REVIEW_SLA_HOURS", 48)) * time.Hour,
			SweepSchedule: r.str("REVIEW_SLA_SWEEP_CRON", "*/15 * * * *"),
		},
		Registry: make(map[string]RegistrySource, len(registrySources)),
		Profiles: Profiles{
			ProfessionalNetwork: ProfileProvider{
				BaseURL: r.str("PROFILE_PROFESSIONAL_NETWORK_URL", ""),
				APIKey:  r.str("PROFILE_PROFESSIONAL_NETWORK_API_KEY", ""),
			},
			CitationIndex: ProfileProvider{
				BaseURL: r.str("PROFILE_CITATION_INDEX_URL", ""),
				APIKey:  r.str("PROFILE_CITATION_INDEX_API_KEY", ""),
			},
			Timeout: r.duration("PROFILE_TIMEOUT", 10*time.Second),
		},
		SubmissionSeedFile: r.str("SUBMISSIONS_SEED_FILE", ""),
	}
	for _, source := range registrySources {
		prefix := "REGISTRY_" + envKey(source) + "_"
		cfg.Registry[source] = RegistrySource{
			PrimaryURL:  r.str(prefix+"PRIMARY_URL", ""),
			FallbackURL: r.str(prefix+"FALLBACK_URL", ""),
			APIKey:      r.str(prefix+"API_KEY", ""),
		}
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Verification.Parallelism <= 0 {
		errs = append(errs, errors.New("VERIFY_PARALLELISM must be positive"))
	}
	if c.Verification.LookupTimeout <= 0 {
		errs = append(errs, errors.New("LOOKUP_TIMEOUT must be positive"))
	}
	if c.Review.SLAWindow <= 0 {
		errs = append(errs, errors.New("REVIEW_SLA_HOURS must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_STATUS_TOPIC is required with KAFKA_BROKERS"))
	}
	return errors.Join(errs...)
}

// envKey turns "cedula-mx" into "CEDULA_MX".
func envKey(source string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", ":", "_").Replace(source))
}

// reader collects parse errors so every bad variable is reported at once.
type reader struct {
	errs []error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) list(key string) []string {
	v := r.str(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *reader) err() error {
	return errors.Join(r.errs...)
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Publishing   PublishingConfig
	Web          WebChannelConfig
	Facebook     FacebookConfig
	Instagram    InstagramConfig
	Google       GoogleBusinessConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ANUNCIOS_APP_ENV" required:"true"`
	Port         string `envconfig:"ANUNCIOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ANUNCIOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ANUNCIOS_LOG_WARN_STACK" default:"false"`

	// Browser origins allowed to call the API (back-office front end).
	CORSAllowedOrigins []string `envconfig:"ANUNCIOS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ANUNCIOS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ANUNCIOS_DB_DSN"`
	Driver string `envconfig:"ANUNCIOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ANUNCIOS_DB_HOST"`
	LegacyPort     int    `envconfig:"ANUNCIOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ANUNCIOS_DB_USER"`
	LegacyPassword string `envconfig:"ANUNCIOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"ANUNCIOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"ANUNCIOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ANUNCIOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ANUNCIOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ANUNCIOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ANUNCIOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"ANUNCIOS_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ANUNCIOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ANUNCIOS_REDIS_ADDR"`
	Password     string        `envconfig:"ANUNCIOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ANUNCIOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ANUNCIOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ANUNCIOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ANUNCIOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ANUNCIOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ANUNCIOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ANUNCIOS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"ANUNCIOS_EVENTING_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ANUNCIOS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ANUNCIOS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ANUNCIOS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PublicationsTopic        string `envconfig:"ANUNCIOS_PUBSUB_PUBLICATIONS_TOPIC" default:"anuncios-publication-events"`
	PublicationsSubscription string `envconfig:"ANUNCIOS_PUBSUB_PUBLICATIONS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"ANUNCIOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"ANUNCIOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"ANUNCIOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsPort    string `envconfig:"ANUNCIOS_OUTBOX_METRICS_PORT" default:"9091"`
}

// PublishingConfig tunes the channel fan-out.
type PublishingConfig struct {
	ChannelTimeout time.Duration `envconfig:"ANUNCIOS_PUBLISH_CHANNEL_TIMEOUT" default:"15s"`
	PublicBaseURL  string        `envconfig:"ANUNCIOS_PUBLIC_BASE_URL" default:"https://anuncios.example.com"`
}

// ListingURL returns the public page of a listing slug.
func (p PublishingConfig) ListingURL(slug string) string {
	base := strings.TrimRight(strings.TrimSpace(p.PublicBaseURL), "/")
	if base == "" || slug == "" {
		return ""
	}
	return base + "/anuncios/" + url.PathEscape(slug)
}

type WebChannelConfig struct {
	WebhookURL    string `envconfig:"ANUNCIOS_WEB_WEBHOOK_URL"`
	WebhookSecret string `envconfig:"ANUNCIOS_WEB_WEBHOOK_SECRET"`
}

type FacebookConfig struct {
	GraphBaseURL    string `envconfig:"ANUNCIOS_FACEBOOK_GRAPH_URL" default:"https://graph.facebook.com/v19.0"`
	PageID          string `envconfig:"ANUNCIOS_FACEBOOK_PAGE_ID"`
	PageAccessToken string `envconfig:"ANUNCIOS_FACEBOOK_PAGE_ACCESS_TOKEN"`
}

type InstagramConfig struct {
	GraphBaseURL string `envconfig:"ANUNCIOS_INSTAGRAM_GRAPH_URL" default:"https://graph.facebook.com/v19.0"`
	UserID       string `envconfig:"ANUNCIOS_INSTAGRAM_USER_ID"`
	AccessToken  string `envconfig:"ANUNCIOS_INSTAGRAM_ACCESS_TOKEN"`
}

type GoogleBusinessConfig struct {
	BaseURL         string `envconfig:"ANUNCIOS_GOOGLE_BUSINESS_URL" default:"https://mybusiness.googleapis.com/v4"`
	AccountID       string `envconfig:"ANUNCIOS_GOOGLE_BUSINESS_ACCOUNT_ID"`
	LocationID      string `envconfig:"ANUNCIOS_GOOGLE_BUSINESS_LOCATION_ID"`
	AccessToken     string `envconfig:"ANUNCIOS_GOOGLE_BUSINESS_ACCESS_TOKEN"`
	CredentialsJSON string `envconfig:"ANUNCIOS_GOOGLE_BUSINESS_CREDENTIALS_JSON"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

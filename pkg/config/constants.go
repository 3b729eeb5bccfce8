package config

const (
	EnvPrefix = "ANUNCIOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "ANUNCIOS_APP_ENV"
	EnvPort     = "ANUNCIOS_APP_PORT"
	EnvLogLevel = "ANUNCIOS_LOG_LEVEL"

	EnvDBDSN      = "ANUNCIOS_DB_DSN"
	EnvDBHost     = "ANUNCIOS_DB_HOST"
	EnvDBPort     = "ANUNCIOS_DB_PORT"
	EnvDBUser     = "ANUNCIOS_DB_USER"
	EnvDBPassword = "ANUNCIOS_DB_PASSWORD"
	EnvDBName     = "ANUNCIOS_DB_NAME"
	EnvDBSSLMode  = "ANUNCIOS_DB_SSLMODE"

	EnvRedisURL = "ANUNCIOS_REDIS_URL"

	EnvGCPProjectID          = "ANUNCIOS_GCP_PROJECT_ID"
	EnvPubSubPublicationsTop = "ANUNCIOS_PUBSUB_PUBLICATIONS_TOPIC"

	EnvPublishChannelTimeout = "ANUNCIOS_PUBLISH_CHANNEL_TIMEOUT"
	EnvPublicBaseURL         = "ANUNCIOS_PUBLIC_BASE_URL"

	EnvWebWebhookURL        = "ANUNCIOS_WEB_WEBHOOK_URL"
	EnvFacebookPageID       = "ANUNCIOS_FACEBOOK_PAGE_ID"
	EnvFacebookPageToken    = "ANUNCIOS_FACEBOOK_PAGE_ACCESS_TOKEN"
	EnvInstagramUserID      = "ANUNCIOS_INSTAGRAM_USER_ID"
	EnvGoogleBusinessAcctID = "ANUNCIOS_GOOGLE_BUSINESS_ACCOUNT_ID"
)

// legacyDBEnvVars must all be set when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

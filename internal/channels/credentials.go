package channels

import (
	"context"

	"github.com/angelmondragon/anuncios-backend/pkg/config"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// ConfigCredentials serves channel credentials from process configuration.
type ConfigCredentials struct {
	byChannel map[enums.Channel]Credentials
}

func NewConfigCredentials(cfg *config.Config) *ConfigCredentials {
	return &ConfigCredentials{byChannel: map[enums.Channel]Credentials{
		enums.ChannelWeb: {
			Endpoint: cfg.Web.WebhookURL,
			Secret:   cfg.Web.WebhookSecret,
		},
		enums.ChannelFacebook: {
			AccountID:   cfg.Facebook.PageID,
			AccessToken: cfg.Facebook.PageAccessToken,
		},
		enums.ChannelInstagram: {
			AccountID:   cfg.Instagram.UserID,
			AccessToken: cfg.Instagram.AccessToken,
		},
		enums.ChannelGoogleBusiness: {
			AccountID:          cfg.Google.AccountID,
			LocationID:         cfg.Google.LocationID,
			AccessToken:        cfg.Google.AccessToken,
			ServiceAccountJSON: cfg.Google.CredentialsJSON,
		},
	}}
}

// Credentials returns what is configured for channel. Adapters decide whether it is enough.
func (c *ConfigCredentials) Credentials(_ context.Context, channel enums.Channel) (Credentials, error) {
	if !channel.IsValid() {
		return Credentials{}, ConfigurationError(channel, "unsupported channel")
	}
	return c.byChannel[channel], nil
}

// NewConfiguredRegistry builds one adapter per channel using the configured base URLs.
func NewConfiguredRegistry(cfg *config.Config, opts ...Option) (*Registry, error) {
	return NewRegistry(
		NewWebAdapter(opts...),
		NewFacebookAdapter(append([]Option{WithBaseURL(cfg.Facebook.GraphBaseURL)}, opts...)...),
		NewInstagramAdapter(append([]Option{WithBaseURL(cfg.Instagram.GraphBaseURL)}, opts...)...),
		NewGoogleBusinessAdapter(append([]Option{WithBaseURL(cfg.Google.BaseURL)}, opts...)...),
	)
}

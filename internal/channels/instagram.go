package channels

import (
	"context"
	"strings"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// InstagramAdapter publishes the first listing image through the Graph content publishing flow.
type InstagramAdapter struct {
	httpBase
}

func NewInstagramAdapter(opts ...Option) *InstagramAdapter {
	return &InstagramAdapter{httpBase: newHTTPBase(enums.ChannelInstagram, defaultGraphBaseURL, opts)}
}

func (a *InstagramAdapter) Channel() enums.Channel { return enums.ChannelInstagram }

func (a *InstagramAdapter) Publish(ctx context.Context, content Content, creds Credentials) (Receipt, error) {
	userID := strings.TrimSpace(creds.AccountID)
	token := strings.TrimSpace(creds.AccessToken)
	if userID == "" || token == "" {
		return Receipt{}, ConfigurationError(a.channel, "instagram user id and access token required")
	}
	if len(content.Media) == 0 {
		return Receipt{}, ChannelError(a.channel, ReasonMissingMedia, nil)
	}

	var container struct {
		ID string `json:"id"`
	}
	err := a.postJSON(ctx, nil, a.buildURL(userID, "media"), map[string]string{
		"image_url":    content.Media[0],
		"caption":      content.Caption(),
		"access_token": token,
	}, nil, &container)
	if err != nil {
		return Receipt{}, err
	}
	if container.ID == "" {
		return Receipt{}, ChannelError(a.channel, ReasonInvalidResponse, nil)
	}

	var published struct {
		ID string `json:"id"`
	}
	err = a.postJSON(ctx, nil, a.buildURL(userID, "media_publish"), map[string]string{
		"creation_id":  container.ID,
		"access_token": token,
	}, nil, &published)
	if err != nil {
		return Receipt{}, err
	}
	if published.ID == "" {
		return Receipt{}, ChannelError(a.channel, ReasonInvalidResponse, nil)
	}
	return Receipt{ExternalRef: published.ID}, nil
}

package channels

import (
	"context"
	"strings"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v19.0"

// FacebookAdapter posts listings to a Facebook page feed.
type FacebookAdapter struct {
	httpBase
}

func NewFacebookAdapter(opts ...Option) *FacebookAdapter {
	return &FacebookAdapter{httpBase: newHTTPBase(enums.ChannelFacebook, defaultGraphBaseURL, opts)}
}

func (a *FacebookAdapter) Channel() enums.Channel { return enums.ChannelFacebook }

func (a *FacebookAdapter) Publish(ctx context.Context, content Content, creds Credentials) (Receipt, error) {
	pageID := strings.TrimSpace(creds.AccountID)
	token := strings.TrimSpace(creds.AccessToken)
	if pageID == "" || token == "" {
		return Receipt{}, ConfigurationError(a.channel, "page id and page access token required")
	}

	req := map[string]string{
		"message":      content.Caption(),
		"access_token": token,
	}
	if link := content.Link(); link != "" {
		req["link"] = link
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := a.postJSON(ctx, nil, a.buildURL(pageID, "feed"), req, nil, &resp); err != nil {
		return Receipt{}, err
	}
	if resp.ID == "" {
		return Receipt{}, ChannelError(a.channel, ReasonInvalidResponse, nil)
	}
	return Receipt{ExternalRef: resp.ID, URL: "https://www.facebook.com/" + resp.ID}, nil
}

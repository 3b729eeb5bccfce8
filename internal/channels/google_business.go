package channels

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

const (
	defaultGoogleBusinessURL = "https://mybusiness.googleapis.com/v4"
	googleBusinessScope      = "https://www.googleapis.com/auth/business.manage"
	localPostLanguage        = "es"
)

// GoogleBusinessAdapter creates a local post on a Business Profile location.
type GoogleBusinessAdapter struct {
	httpBase
}

func NewGoogleBusinessAdapter(opts ...Option) *GoogleBusinessAdapter {
	return &GoogleBusinessAdapter{httpBase: newHTTPBase(enums.ChannelGoogleBusiness, defaultGoogleBusinessURL, opts)}
}

func (a *GoogleBusinessAdapter) Channel() enums.Channel { return enums.ChannelGoogleBusiness }

type localPostMedia struct {
	MediaFormat string `json:"mediaFormat"`
	SourceURL   string `json:"sourceUrl"`
}

type localPostCTA struct {
	ActionType string `json:"actionType"`
	URL        string `json:"url"`
}

type localPost struct {
	LanguageCode string           `json:"languageCode"`
	Summary      string           `json:"summary"`
	TopicType    string           `json:"topicType"`
	CallToAction *localPostCTA    `json:"callToAction,omitempty"`
	Media        []localPostMedia `json:"media,omitempty"`
}

func (a *GoogleBusinessAdapter) Publish(ctx context.Context, content Content, creds Credentials) (Receipt, error) {
	account := strings.TrimSpace(creds.AccountID)
	location := strings.TrimSpace(creds.LocationID)
	if account == "" || location == "" {
		return Receipt{}, ConfigurationError(a.channel, "account and location ids required")
	}
	tokens, err := a.tokenSource(ctx, creds)
	if err != nil {
		return Receipt{}, err
	}

	post := localPost{
		LanguageCode: localPostLanguage,
		Summary:      content.Caption(),
		TopicType:    "STANDARD",
	}
	if link := content.Link(); link != "" {
		post.CallToAction = &localPostCTA{ActionType: "LEARN_MORE", URL: link}
	}
	for _, media := range content.Media {
		post.Media = append(post.Media, localPostMedia{MediaFormat: "PHOTO", SourceURL: media})
	}

	// oauth2 picks the base transport from the context client.
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	client := oauth2.NewClient(authCtx, tokens)

	var resp struct {
		Name      string `json:"name"`
		SearchURL string `json:"searchUrl"`
	}
	url := a.buildURL("accounts", account, "locations", location, "localPosts")
	if err := a.postJSON(ctx, client, url, post, nil, &resp); err != nil {
		return Receipt{}, err
	}
	if resp.Name == "" {
		return Receipt{}, ChannelError(a.channel, ReasonInvalidResponse, nil)
	}
	return Receipt{ExternalRef: resp.Name, URL: resp.SearchURL}, nil
}

func (a *GoogleBusinessAdapter) tokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if token := strings.TrimSpace(creds.AccessToken); token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}), nil
	}
	if raw := strings.TrimSpace(creds.ServiceAccountJSON); raw != "" {
		googleCreds, err := google.CredentialsFromJSON(ctx, []byte(raw), googleBusinessScope)
		if err != nil {
			return nil, ConfigurationError(a.channel, fmt.Sprintf("invalid service account json: %v", err))
		}
		return googleCreds.TokenSource, nil
	}
	return nil, ConfigurationError(a.channel, "access token or service account json required")
}

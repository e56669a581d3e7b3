package kakao

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/fittogether/server/internal/domain"
)

var (
	ErrTokenExchange = errors.New("kakao token exchange failed")
	ErrProfile       = errors.New("kakao profile request failed")
)

// Config holds Kakao application credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string // https://kauth.kakao.com
	APIBaseURL   string // https://kapi.kakao.com
	Timeout      time.Duration
}

// Client talks to the Kakao OAuth and user APIs.
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// NewClient creates a Kakao API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	authBase := strings.TrimRight(cfg.AuthBaseURL, "/")

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authBase + "/oauth/authorize",
				TokenURL:  authBase + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL returns the consent page the web client redirects to.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a Kakao access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return tok.AccessToken, nil
}

// FetchProfile loads the signed-in Kakao user's id, nickname and email.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*domain.KakaoProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = c.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/v2/user/me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfile, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProfile, resp.StatusCode)
	}

	return parseProfile(body)
}

func parseProfile(body []byte) (*domain.KakaoProfile, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrProfile)
	}

	id := gjson.GetBytes(body, "id")
	if !id.Exists() || id.String() == "" {
		return nil, fmt.Errorf("%w: missing id", ErrProfile)
	}

	nickname := gjson.GetBytes(body, "kakao_account.profile.nickname").String()
	if nickname == "" {
		nickname = gjson.GetBytes(body, "properties.nickname").String()
	}

	account := gjson.GetBytes(body, "kakao_account")
	return &domain.KakaoProfile{
		ID:            id.String(),
		Nickname:      nickname,
		Email:         account.Get("email").String(),
		EmailVerified: account.Get("is_email_verified").Bool() && account.Get("is_email_valid").Bool(),
	}, nil
}

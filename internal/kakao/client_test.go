package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKakaoServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "app-key" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "http://localhost/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"kakao-access","token_type":"bearer","expires_in":21599}`))
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer kakao-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 2718281828,
			"properties": {"nickname": "legacy-name"},
			"kakao_account": {
					"email": "minsu@kakao.com",
					"is_email_verified": true,
					"is_email_valid": true,
					"profile": {"nickname": "minsu"}
				}
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		ClientID:     "app-key",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost/callback",
		AuthBaseURL:  srv.URL,
		APIBaseURL:   srv.URL,
	})
}

func TestExchangeCodeAndFetchProfile(t *testing.T) {
	c := newTestClient(newKakaoServer(t))
	ctx := context.Background()

	token, err := c.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "kakao-access", token)

	profile, err := c.FetchProfile(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "2718281828", profile.ID)
	assert.Equal(t, "minsu", profile.Nickname)
	assert.Equal(t, "minsu@kakao.com", profile.Email)
	assert.True(t, profile.EmailVerified)
}

func TestExchangeCodeRejected(t *testing.T) {
	c := newTestClient(newKakaoServer(t))

	_, err := c.ExchangeCode(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrTokenExchange)
}

func TestFetchProfileUnauthorized(t *testing.T) {
	c := newTestClient(newKakaoServer(t))

	_, err := c.FetchProfile(context.Background(), "stolen")
	assert.ErrorIs(t, err, ErrProfile)
}

func TestParseProfile(t *testing.T) {
	p, err := parseProfile([]byte(`{"id":1,"properties":{"nickname":"only-props"}}`))
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "only-props", p.Nickname)
	assert.Empty(t, p.Email)
	assert.False(t, p.EmailVerified)

	for _, account := range []string{
		`{"email":"alice@x.com","is_email_verified":false,"is_email_valid":true}`,
		`{"email":"alice@x.com","is_email_verified":true,"is_email_valid":false}`,
		`{"email":"alice@x.com"}`,
	} {
		p, err = parseProfile([]byte(`{"id":42,"kakao_account":` + account + `}`))
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", p.Email)
		assert.False(t, p.EmailVerified, account)
	}

	_, err = parseProfile([]byte(`{"properties":{}}`))
	assert.ErrorIs(t, err, ErrProfile)

	_, err = parseProfile([]byte(`not json`))
	assert.ErrorIs(t, err, ErrProfile)
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient(Config{ClientID: "app-key", RedirectURI: "http://localhost/callback", AuthBaseURL: "https://kauth.example/"})

	u := c.AuthCodeURL("xyz")
	assert.Contains(t, u, "https://kauth.example/oauth/authorize?")
	assert.Contains(t, u, "client_id=app-key")
	assert.Contains(t, u, "state=xyz")
}

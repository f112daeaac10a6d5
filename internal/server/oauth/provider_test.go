package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sc "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, token, info http.HandlerFunc) *Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", token)
	mux.HandleFunc("/userinfo", info)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.OAuthClientID = "app-1"
	cfg.OAuthClientSecret = "secret-1"
	cfg.OAuthAuthURL = srv.URL + "/authorize"
	cfg.OAuthTokenURL = srv.URL + "/token"
	cfg.OAuthUserInfoURL = srv.URL + "/userinfo"
	p := NewProvider(cfg)
	p.httpClient = srv.Client()
	return p
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestExchange_UserInfo(t *testing.T) {
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "code-1", r.PostForm.Get("code"))
			assert.Equal(t, "app-1", r.PostForm.Get("client_id"))
			assert.Equal(t, "secret-1", r.PostForm.Get("client_secret"))
			writeJSON(w, map[string]any{"access_token": "tok-1", "token_type": "Bearer", "expires_in": 7200, "openid": "open-1"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tok-1", r.URL.Query().Get("access_token"))
			assert.Equal(t, "open-1", r.URL.Query().Get("openid"))
			writeJSON(w, map[string]any{"unionid": "union-1", "openid": "open-1", "nickname": "Wei", "headimgurl": "https://cdn.example.com/wei.png"})
		})

	profile, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "union-1", profile.UnionID)
	assert.Equal(t, "open-1", profile.MpOpenID)
	assert.Equal(t, "Wei", profile.DisplayName)
	assert.Equal(t, "https://cdn.example.com/wei.png", profile.AvatarURL)
}

func TestExchange_FallsBackToTokenExtras(t *testing.T) {
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"access_token": "tok-1", "openid": "open-1", "unionid": "union-1"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"nickname": "Wei"})
		})

	profile, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "union-1", profile.UnionID)
	assert.Equal(t, "open-1", profile.MpOpenID)
}

func TestExchange_Failures(t *testing.T) {
	okToken := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "tok-1"})
	}

	tests := []struct {
		name  string
		token http.HandlerFunc
		info  http.HandlerFunc
	}{
		{
			name: "token endpoint rejects code",
			token: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			},
			info: func(w http.ResponseWriter, r *http.Request) {},
		},
		{
			name:  "user info status",
			token: okToken,
			info: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name:  "user info error code",
			token: okToken,
			info: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"errcode": 40001, "errmsg": "invalid credential"})
			},
		},
		{
			name:  "user info not json",
			token: okToken,
			info: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.token, tt.info)
			_, err := p.Exchange(context.Background(), "code-1")
			assert.Error(t, err)
		})
	}
}

func TestAuthCodeURL(t *testing.T) {
	p := newTestProvider(t, func(http.ResponseWriter, *http.Request) {}, func(http.ResponseWriter, *http.Request) {})
	u := p.AuthCodeURL("state-1")
	assert.Contains(t, u, "/authorize?")
	assert.Contains(t, u, "client_id=app-1")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "scope=snsapi_login")
}

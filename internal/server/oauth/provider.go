// Package oauth exchanges an authorization code with the configured
// provider and reads the user's union identity.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	sc "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"golang.org/x/oauth2"
)

const maxUserInfoBytes = 1 << 20

// userInfo is the provider's user-info payload.
type userInfo struct {
	UnionID    string `json:"unionid"`
	OpenID     string `json:"openid"`
	Nickname   string `json:"nickname"`
	HeadImgURL string `json:"headimgurl"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

type Provider struct {
	config      *oauth2.Config
	userInfoURL string
	// httpClient is used for both the token and the user-info request.
	httpClient *http.Client
}

func NewProvider(cfg *sc.Config) *Provider {
	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       cfg.OAuthScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.OAuthAuthURL,
				TokenURL:  cfg.OAuthTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.OAuthUserInfoURL,
		httpClient:  http.DefaultClient,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades code for a token and returns the identity it belongs to.
// Identifiers missing from the user-info response are taken from the token
// response, which some providers populate instead.
func (p *Provider) Exchange(ctx context.Context, code string) (*models.ExternalProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}

	info, err := p.fetchUserInfo(ctx, tok)
	if err != nil {
		return nil, err
	}

	profile := &models.ExternalProfile{
		UnionID:     info.UnionID,
		MpOpenID:    info.OpenID,
		DisplayName: info.Nickname,
		AvatarURL:   info.HeadImgURL,
	}
	if profile.UnionID == "" {
		profile.UnionID = extraString(tok, "unionid")
	}
	if profile.MpOpenID == "" {
		profile.MpOpenID = extraString(tok, "openid")
	}
	return profile, nil
}

func (p *Provider) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (*userInfo, error) {
	u, err := url.Parse(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("oauth user info url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", tok.AccessToken)
	if openID := extraString(tok, "openid"); openID != "" {
		q.Set("openid", openID)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return nil, fmt.Errorf("oauth user info: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("oauth user info: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("oauth user info: %w", err)
	}
	if info.ErrCode != 0 {
		return nil, fmt.Errorf("oauth user info: %d %s", info.ErrCode, info.ErrMsg)
	}
	return &info, nil
}

func extraString(tok *oauth2.Token, key string) string {
	s, _ := tok.Extra(key).(string)
	return s
}

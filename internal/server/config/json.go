package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// strings such as "30m" or integer nanoseconds. Absent or empty fields keep
// the value already in Config.
type JsonConfig struct {
	EndpointAddrGRPC     string          `json:"endpoint_addr_grpc"`
	StoreBackend         string          `json:"store_backend"`
	DatabaseDSN          string          `json:"database_dsn"`
	RunMigrations        *bool           `json:"run_migrations"`
	LogLevel             string          `json:"log_level"`
	PasswordPepper       string          `json:"password_pepper"`
	DigestAlgorithm      string          `json:"digest_algorithm"`
	SessionIdleTTL       *timex.Duration `json:"session_idle_ttl"`
	SessionSweepInterval *timex.Duration `json:"session_sweep_interval"`
	S3RootUser           string          `json:"s3_root_user"`
	S3RootPassword       string          `json:"s3_root_password"`
	S3Bucket             string          `json:"s3_bucket"`
	S3Region             string          `json:"s3_region"`
	S3BaseEndpoint       string          `json:"s3_base_endpoint"`
	S3PublicBaseURL      string          `json:"s3_public_base_url"`
	AvatarMaxBytes       int64           `json:"avatar_max_bytes"`
	OAuthClientID        string          `json:"oauth_client_id"`
	OAuthClientSecret    string          `json:"oauth_client_secret"`
	OAuthRedirectURL     string          `json:"oauth_redirect_url"`
	OAuthAuthURL         string          `json:"oauth_auth_url"`
	OAuthTokenURL        string          `json:"oauth_token_url"`
	OAuthUserInfoURL     string          `json:"oauth_userinfo_url"`
	OAuthScopes          []string        `json:"oauth_scopes"`
}

// parseJson loads the file named by -c/-config (or $GOPHAUTH_CONFIG) into
// config. It does nothing when no file is named and panics when the file
// cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StoreBackend, c.StoreBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.PasswordPepper, c.PasswordPepper)
	setString(&config.DigestAlgorithm, c.DigestAlgorithm)
	if c.SessionIdleTTL != nil {
		config.SessionIdleTTL = c.SessionIdleTTL.Duration
	}
	if c.SessionSweepInterval != nil {
		config.SessionSweepInterval = c.SessionSweepInterval.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	if c.AvatarMaxBytes > 0 {
		config.AvatarMaxBytes = c.AvatarMaxBytes
	}
	setString(&config.OAuthClientID, c.OAuthClientID)
	setString(&config.OAuthClientSecret, c.OAuthClientSecret)
	setString(&config.OAuthRedirectURL, c.OAuthRedirectURL)
	setString(&config.OAuthAuthURL, c.OAuthAuthURL)
	setString(&config.OAuthTokenURL, c.OAuthTokenURL)
	setString(&config.OAuthUserInfoURL, c.OAuthUserInfoURL)
	if len(c.OAuthScopes) > 0 {
		config.OAuthScopes = c.OAuthScopes
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

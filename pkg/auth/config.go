package auth

import "time"

// Config holds authentication settings loaded from the environment.
type Config struct {
	JWTSecret       string        `env:"JWT_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`
	BcryptCost      int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	DefaultRole     string        `env:"AUTH_DEFAULT_ROLE" envDefault:"USER"`
	DefaultTimezone string        `env:"AUTH_DEFAULT_TIMEZONE" envDefault:"UTC"`
	SweepInterval   time.Duration `env:"AUTH_SWEEP_INTERVAL" envDefault:"1h"`
}

// GoogleConfig configures the Google adapter. Client credentials are optional
// at load time; a login against an unconfigured provider fails with
// ErrMisconfiguredProvider.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string   `env:"GOOGLE_REDIRECT_URI"`
	Scopes       []string `env:"GOOGLE_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
	AuthURL      string   `env:"GOOGLE_AUTH_URL" envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL     string   `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string   `env:"GOOGLE_USERINFO_URL" envDefault:"https://www.googleapis.com/oauth2/v3/userinfo"`
}

// GitHubConfig configures the GitHub adapter.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_CLIENT_ID"`
	ClientSecret string   `env:"GITHUB_CLIENT_SECRET"`
	RedirectURI  string   `env:"GITHUB_REDIRECT_URI"`
	Scopes       []string `env:"GITHUB_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
	AuthURL      string   `env:"GITHUB_AUTH_URL" envDefault:"https://github.com/login/oauth/authorize"`
	TokenURL     string   `env:"GITHUB_TOKEN_URL" envDefault:"https://github.com/login/oauth/access_token"`
	UserInfoURL  string   `env:"GITHUB_USERINFO_URL" envDefault:"https://api.github.com/user"`
	EmailsURL    string   `env:"GITHUB_EMAILS_URL" envDefault:"https://api.github.com/user/emails"`
}

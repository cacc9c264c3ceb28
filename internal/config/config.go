package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinJWTSecretLength は署名鍵に要求する最小バイト数。
const MinJWTSecretLength = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// DatabaseURLが指定された場合はDB_*の個別指定より優先する。
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBHost              string        `env:"DB_HOST"`
	DBPort              int           `env:"DB_PORT" envDefault:"5432"`
	DBUser              string        `env:"DB_USER"`
	DBPassword          string        `env:"DB_PASSWORD"`
	DBName              string        `env:"DB_NAME"`
	DBSSLMode           string        `env:"DB_SSL_MODE"`
	DBSSLRootCert       string        `env:"DB_SSL_ROOT_CERT"`
	DBConnectRetries    int           `env:"DB_CONNECT_RETRIES" envDefault:"10"`
	DBConnectRetryDelay time.Duration `env:"DB_CONNECT_RETRY_DELAY" envDefault:"3s"`

	// Token
	// 署名鍵にデフォルト値は持たない。未設定なら起動に失敗する。
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// Rate Limit（req/min/IP）
	RateLimitAuth int `env:"RATE_LIMIT_AUTH" envDefault:"20"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"4000"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGIN" envSeparator:"," envDefault:"http://localhost:3000"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load はカレントディレクトリの.envを読み込んだうえで、環境変数からConfigを読み込む。
// .envの値は既に設定済みの環境変数を上書きしない。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom は指定されたマップを環境変数とみなしてConfigを読み込む。
// プロセスの環境変数と.envは参照しない。
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.buildDatabaseURL()
	}

	return cfg, nil
}

// validate は型変換だけでは検出できない設定不備を検証する。
func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		var missing []string
		if c.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("required environment variables are not set (or set DATABASE_URL): %v", missing)
		}
	}

	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}

	if c.DBSSLRootCert != "" {
		if _, err := os.Stat(c.DBSSLRootCert); err != nil {
			return fmt.Errorf("DB_SSL_ROOT_CERT is not readable: %w", err)
		}
	}

	if c.DBConnectRetries < 1 {
		return fmt.Errorf("DB_CONNECT_RETRIES must be >= 1, got %d", c.DBConnectRetries)
	}
	if c.DBConnectRetryDelay < 0 {
		return fmt.Errorf("DB_CONNECT_RETRY_DELAY must not be negative, got %s", c.DBConnectRetryDelay)
	}
	if c.RateLimitAuth < 1 {
		return fmt.Errorf("RATE_LIMIT_AUTH must be >= 1, got %d", c.RateLimitAuth)
	}

	return nil
}

// sslMode は接続時のsslmodeを決定する。
// 明示指定がなければ、CA証明書がある場合はverify-full、ない場合はdisableとする。
func (c *Config) sslMode() string {
	if c.DBSSLMode != "" {
		return c.DBSSLMode
	}
	if c.DBSSLRootCert != "" {
		return "verify-full"
	}
	return "disable"
}

// buildDatabaseURL はDB_*の個別設定からPostgreSQLの接続URLを組み立てる。
func (c *Config) buildDatabaseURL() string {
	q := url.Values{}
	q.Set("sslmode", c.sslMode())
	if c.DBSSLRootCert != "" {
		q.Set("sslrootcert", c.DBSSLRootCert)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

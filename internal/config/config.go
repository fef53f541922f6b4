package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret       string        // JWT署名シークレット
	AccessTokenTTL  time.Duration // access tokenの有効期限（default 60分）
	RefreshTokenTTL time.Duration // refresh tokenの有効期限（default 7日）

	GitHubAPIBaseURL string // GitHub APIのベースURL

	CORSOrigins []string // 許可するオリジンのリスト

	GoEnv        string // dev/prod
	CookieSecure bool   // Secure属性をつけるか
}

// Loadは環境変数から設定を読み込む
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GitHubAPIBaseURL: getenv("GITHUB_API_BASE_URL", "https://api.github.com/"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	accessMin, err := atoiOr("ACCESS_TOKEN_TTL_MIN", 60)
	if err != nil {
		return Config{}, err
	}
	cfg.AccessTokenTTL = time.Duration(accessMin) * time.Minute

	refreshDays, err := atoiOr("REFRESH_TOKEN_TTL_DAYS", 7)
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTokenTTL = time.Duration(refreshDays) * 24 * time.Hour

	// カンマ区切りの許可オリジン
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if v := strings.TrimSpace(o); v != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, v)
		}
	}

	cfg.CookieSecure = envBool("COOKIE_SECURE", true)

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if os.Getenv("DATABASE_URL") == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

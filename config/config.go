package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Env string

const (
	Dev        Env = "development"
	Test       Env = "test"
	Preview    Env = "preview"
	Production Env = "production"
)

// DefaultSQLitePath is the local database used when STORE_DRIVER=sqlite has no DSN.
const DefaultSQLitePath = "file:products.db"

type Config struct {
	AppName string
	AppPort int
	ENV     Env

	LogLevel string

	// CORSAllowedOrigins defaults to "*".
	CORSAllowedOrigins []string

	// StoreDriver picks the product cache backend: redis, sqlite or postgres.
	StoreDriver string
	// StoreAutoMigrate applies pending goose migrations when a SQL store starts.
	StoreAutoMigrate bool

	// Postgres (optional; enabled only when DBHost + DBName are set).
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     int
	DBName     string

	// Redis (optional; enabled only when RedisHost is set).
	RedisUser     string
	RedisPassword string
	RedisHost     string
	RedisPort     int
	RedisScheme   string

	Turso    TursoConfig
	RabbitMQ RabbitMQConfig
	Inngest  InngestConfig
	Scraper  ScraperConfig
	DeepSeek DeepSeekConfig
	Export   ExportConfig
}

type TursoConfig struct {
	DSN   string
	Path  string
	Token string
}

type RabbitMQConfig struct {
	URL             string
	Exchange        string
	Queue           string
	RoutingKey      string
	Prefetch        int
	DeclareTopology bool
}

type InngestConfig struct {
	AppID      string
	SigningKey string
	ServeHost  string
	ServePath  string
	Dev        string
}

type ScraperConfig struct {
	BaseURL           string
	ProxyURL          string
	ListingLimit      int
	DetailWorkers     int
	Timeout           time.Duration
	RequestsPerMinute int
}

type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type ExportConfig struct {
	Dir        string
	Bucket     string
	Region     string
	ObjectName string
	PublicURL  string
}

func NewViper() *viper.Viper {
	// Local .env files are optional; real environment variables win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "search-insight-miner")
	v.SetDefault("APP_ENV", string(Dev))
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("STORE_AUTO_MIGRATE", true)

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_SCHEME", "redis")

	v.SetDefault("RABBITMQ_EXCHANGE", "events")
	v.SetDefault("RABBITMQ_QUEUE", "search.term.requested.v1")
	v.SetDefault("RABBITMQ_ROUTING_KEY", "search.term.requested.v1")
	v.SetDefault("RABBITMQ_PREFETCH", 1)

	v.SetDefault("INNGEST_SERVE_PATH", "/api/inngest")

	v.SetDefault("SCRAPER_BASE_URL", "https://www.amazon.in")
	v.SetDefault("SCRAPER_LISTING_LIMIT", 5)
	v.SetDefault("SCRAPER_DETAIL_WORKERS", 5)
	v.SetDefault("SCRAPER_TIMEOUT", 30*time.Second)
	v.SetDefault("SCRAPER_REQUESTS_PER_MINUTE", 120)

	v.SetDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1")
	v.SetDefault("DEEPSEEK_MODEL", "deepseek-chat")
	v.SetDefault("DEEPSEEK_TIMEOUT", 30*time.Second)

	v.SetDefault("EXPORT_OBJECT_NAME", "product_results.xlsx")
	v.SetDefault("EXPORT_REGION", "ap-south-1")
	v.SetDefault("EXPORT_PUBLIC_URL", "https://amazon-frontend-test.s3.ap-south-1.amazonaws.com/index.html")

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		AppPort: v.GetInt("APP_PORT"),
		ENV:     Env(strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))),

		LogLevel: v.GetString("LOG_LEVEL"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		StoreDriver:      strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		StoreAutoMigrate: v.GetBool("STORE_AUTO_MIGRATE"),

		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetInt("DB_PORT"),
		DBName:     v.GetString("DB_NAME"),

		RedisUser:     v.GetString("REDIS_USER"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetInt("REDIS_PORT"),
		RedisScheme:   v.GetString("REDIS_SCHEME"),

		Turso: TursoConfig{
			DSN:   v.GetString("TURSO_SQLITE_DSN"),
			Path:  v.GetString("TURSO_SQLITE_PATH"),
			Token: v.GetString("TURSO_SQLITE_TOKEN"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             v.GetString("RABBITMQ_URL"),
			Exchange:        v.GetString("RABBITMQ_EXCHANGE"),
			Queue:           v.GetString("RABBITMQ_QUEUE"),
			RoutingKey:      v.GetString("RABBITMQ_ROUTING_KEY"),
			Prefetch:        v.GetInt("RABBITMQ_PREFETCH"),
			DeclareTopology: v.GetBool("RABBITMQ_DECLARE_TOPOLOGY"),
		},
		Inngest: InngestConfig{
			AppID:      v.GetString("INNGEST_APP_ID"),
			SigningKey: v.GetString("INNGEST_SIGNING_KEY"),
			ServeHost:  v.GetString("INNGEST_SERVE_HOST"),
			ServePath:  v.GetString("INNGEST_SERVE_PATH"),
			Dev:        v.GetString("INNGEST_DEV"),
		},
		Scraper: ScraperConfig{
			BaseURL:           strings.TrimRight(v.GetString("SCRAPER_BASE_URL"), "/"),
			ProxyURL:          v.GetString("SCRAPER_PROXY_URL"),
			ListingLimit:      v.GetInt("SCRAPER_LISTING_LIMIT"),
			DetailWorkers:     v.GetInt("SCRAPER_DETAIL_WORKERS"),
			Timeout:           v.GetDuration("SCRAPER_TIMEOUT"),
			RequestsPerMinute: v.GetInt("SCRAPER_REQUESTS_PER_MINUTE"),
		},
		DeepSeek: DeepSeekConfig{
			APIKey:  v.GetString("DEEPSEEK_API_KEY"),
			BaseURL: v.GetString("DEEPSEEK_BASE_URL"),
			Model:   v.GetString("DEEPSEEK_MODEL"),
			Timeout: v.GetDuration("DEEPSEEK_TIMEOUT"),
		},
		Export: ExportConfig{
			Dir:        v.GetString("EXPORT_DIR"),
			Bucket:     v.GetString("EXPORT_BUCKET"),
			Region:     v.GetString("EXPORT_REGION"),
			ObjectName: v.GetString("EXPORT_OBJECT_NAME"),
			PublicURL:  v.GetString("EXPORT_PUBLIC_URL"),
		},
	}

	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}
	if cfg.DBPort <= 0 || cfg.DBPort > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT %d", cfg.DBPort)
	}
	if cfg.RedisPort <= 0 || cfg.RedisPort > 65535 {
		return nil, fmt.Errorf("invalid REDIS_PORT %d", cfg.RedisPort)
	}
	switch cfg.StoreDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.Turso.DSN) == "" && strings.TrimSpace(cfg.Turso.Path) == "" {
			cfg.Turso.Path = DefaultSQLitePath
		}
	case "redis", "postgres":
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (expected redis, sqlite or postgres)", cfg.StoreDriver)
	}
	if cfg.Scraper.ListingLimit <= 0 {
		return nil, fmt.Errorf("invalid SCRAPER_LISTING_LIMIT %d", cfg.Scraper.ListingLimit)
	}
	if cfg.Scraper.DetailWorkers <= 0 {
		return nil, fmt.Errorf("invalid SCRAPER_DETAIL_WORKERS %d", cfg.Scraper.DetailWorkers)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

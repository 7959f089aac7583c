package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// 予約時の目標値で上書きする（元の挙動）
	StockWriteReplace = "replace"
	// 在庫が足りるときだけ減算する
	StockWriteGuarded = "guarded"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string `mapstructure:"PORT"`
	GoEnv string `mapstructure:"GO_ENV"` // dev/prod
	FEURL string `mapstructure:"FE_URL"` // CORSで使う

	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBDriver         string `mapstructure:"DB_DRIVER"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     int    `mapstructure:"POSTGRES_PORT"`
	PostgresSSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	DBMaxConns       int32  `mapstructure:"DB_MAX_CONNS"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`

	BooksSeedFile string `mapstructure:"BOOKS_SEED_FILE"`

	// 空ならadminのAPIは無効
	JWTSecret string `mapstructure:"JWT_SECRET"`

	PropagationWorkers        int           `mapstructure:"PROPAGATION_WORKERS"`
	PropagationQueueSize      int           `mapstructure:"PROPAGATION_QUEUE_SIZE"`
	PropagationEnqueueTimeout time.Duration `mapstructure:"PROPAGATION_ENQUEUE_TIMEOUT"`
	PropagationWriteTimeout   time.Duration `mapstructure:"PROPAGATION_WRITE_TIMEOUT"`
	StockWriteMode            string        `mapstructure:"STOCK_WRITE_MODE"`

	HeartbeatInterval time.Duration `mapstructure:"HEARTBEAT_INTERVAL"`
	SubscriberBuffer  int           `mapstructure:"SUBSCRIBER_BUFFER"`
	// SSE接続の寿命（接続からの時間）
	SubscriberTimeout time.Duration `mapstructure:"SUBSCRIBER_TIMEOUT"`

	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"` // カンマ区切り
	KafkaTopic       string `mapstructure:"KAFKA_TOPIC"`

	OtelExporterEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelServiceName      string `mapstructure:"OTEL_SERVICE_NAME"`
	MetricsEnabled       bool   `mapstructure:"METRICS_ENABLED"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"PORT":              "8080",
	"GO_ENV":            "dev",
	"FE_URL":            "http://localhost:3000",
	"LOG_LEVEL":         "info",
	"DB_DRIVER":         DriverPostgres,
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "bookstore",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     5432,
	"POSTGRES_SSLMODE":  "disable",
	"DB_MAX_CONNS":      10,
	"SQLITE_PATH":       "bookstore.db",

	"PROPAGATION_WORKERS":         4,
	"PROPAGATION_QUEUE_SIZE":      256,
	"PROPAGATION_ENQUEUE_TIMEOUT": 5 * time.Second,
	"PROPAGATION_WRITE_TIMEOUT":   10 * time.Second,
	"STOCK_WRITE_MODE":            StockWriteReplace,

	"HEARTBEAT_INTERVAL": 30 * time.Second,
	"SUBSCRIBER_BUFFER":  16,
	"SUBSCRIBER_TIMEOUT": 6 * time.Minute,

	"RABBITMQ_EXCHANGE": "bookstore_events",
	"KAFKA_TOPIC":       "bookstore-events",

	"OTEL_SERVICE_NAME": "bookstore",
	"METRICS_ENABLED":   true,

	"SHUTDOWN_TIMEOUT": 15 * time.Second,
}

// Loadは .env（任意）と環境変数から読む
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		//ファイルが無いのはOK
		_ = godotenv.Load(f)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	//defaultの無いキーもUnmarshalで拾えるようにする
	for _, k := range []string{"DATABASE_URL", "BOOKS_SEED_FILE", "JWT_SECRET", "RABBITMQ_URL", "KAFKA_BROKERS", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		if err := v.BindEnv(k); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は必須チェックと範囲チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" && (c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "") {
			return fmt.Errorf("DATABASE_URL or POSTGRES_HOST/POSTGRES_DB/POSTGRES_USER is required")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite)
	}
	if c.PropagationWorkers < 1 {
		return fmt.Errorf("PROPAGATION_WORKERS must be >= 1")
	}
	if c.PropagationQueueSize < 1 {
		return fmt.Errorf("PROPAGATION_QUEUE_SIZE must be >= 1")
	}
	if c.StockWriteMode != StockWriteReplace && c.StockWriteMode != StockWriteGuarded {
		return fmt.Errorf("STOCK_WRITE_MODE must be %q or %q", StockWriteReplace, StockWriteGuarded)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("HEARTBEAT_INTERVAL must be > 0")
	}
	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("SUBSCRIBER_BUFFER must be >= 1")
	}
	if c.SubscriberTimeout <= 0 {
		return fmt.Errorf("SUBSCRIBER_TIMEOUT must be > 0")
	}
	return nil
}

// PostgresDSN は DATABASE_URL を優先する
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=" + c.PostgresSSLMode,
	}
	return u.String()
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func (c Config) AdminEnabled() bool {
	return c.JWTSecret != ""
}

func (c Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

type OrderConfig struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	OrderDB        `yaml:"order_db"`
	LogConfig      `yaml:"log_config"`
	Product        `yaml:"product"`
	Promo          `yaml:"promo"`
	PaymentGateway `yaml:"payment_gateway"`
	Admin          `yaml:"admin"`
	Scheduler      `yaml:"scheduler"`
	KafkaService   `yaml:"kafka"`
	RedisService   `yaml:"redis"`
	Game           `yaml:"game"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
}

type OrderDB struct {
	Dsn            string `yaml:"dsn" env:"POSTGRES_URL"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	MaxOpenConns   int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Product struct {
	CodePrefix string `yaml:"code_prefix" env:"PRODUCT_CODE_PREFIX" env-default:"TSXHL"`
	UnitPrice  int64  `yaml:"unit_price" env:"PRODUCT_UNIT_PRICE" env-default:"20000"`
}

type Promo struct {
	MinQuantityForTicket int64 `yaml:"min_quantity_for_ticket" env:"PROMO_MIN_QUANTITY_FOR_TICKET" env-default:"3"`
	TicketsPerPromo      int64 `yaml:"tickets_per_promo" env:"PROMO_TICKETS_PER_PROMO" env-default:"1"`
	BuyXGet1Free         int64 `yaml:"buy_x_get_1_free" env:"PROMO_BUY_X_GET_1_FREE" env-default:"10"`
}

type PaymentGateway struct {
	APIURL              string        `yaml:"api_url" env:"SEPAY_API_URL" env-default:"https://my.sepay.vn/userapi/transactions/list"`
	APIKey              string        `yaml:"api_key" env:"SEPAY_API_KEY"`
	AccountNumber       string        `yaml:"account_number" env:"SEPAY_ACCOUNT_NUMBER"`
	Timeout             time.Duration `yaml:"timeout" env:"SEPAY_TIMEOUT" env-default:"10s"`
	SingleCheckLimit    int           `yaml:"single_check_limit" env:"SEPAY_SINGLE_CHECK_LIMIT" env-default:"20"`
	BatchCheckLimit     int           `yaml:"batch_check_limit" env:"SEPAY_BATCH_CHECK_LIMIT" env-default:"50"`
	BreakerMaxFailures  int           `yaml:"breaker_max_failures" env:"SEPAY_BREAKER_MAX_FAILURES" env-default:"5"`
	BreakerResetTimeout time.Duration `yaml:"breaker_reset_timeout" env:"SEPAY_BREAKER_RESET_TIMEOUT" env-default:"30s"`
}

type Admin struct {
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

type Scheduler struct {
	AutoCheckInterval time.Duration `yaml:"auto_check_interval" env:"AUTO_CHECK_INTERVAL" env-default:"5s"`
	ExpiryInterval    time.Duration `yaml:"expiry_interval" env:"EXPIRY_INTERVAL" env-default:"1m"`
	PendingTimeout    time.Duration `yaml:"pending_timeout" env:"PENDING_TIMEOUT" env-default:"15m"`
}

type KafkaService struct {
	Brokers    []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	OrderTopic string   `yaml:"order_topic" env:"KAFKA_ORDER_TOPIC" env-default:"order-events"`
	GameTopic  string   `yaml:"game_topic" env:"KAFKA_GAME_TOPIC" env-default:"game-events"`
}

type RedisService struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	LeaseTTL time.Duration `yaml:"lease_ttl" env:"REDIS_LEASE_TTL" env-default:"30s"`
}

type Game struct {
	WheelPrizes []domain.Prize `yaml:"wheel_prizes"`
}

func MustLoad() *OrderConfig {
	cfg, err := Load(os.Getenv("ORDER_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	return cfg
}

// Load reads the YAML file at path when given, then applies environment
// overrides. An empty path configures the service from the environment only.
func Load(configPath string) (*OrderConfig, error) {
	var cfg OrderConfig

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *OrderConfig) validate() error {
	if c.Product.UnitPrice <= 0 {
		return fmt.Errorf("product.unit_price must be positive, got %d", c.Product.UnitPrice)
	}
	if c.Promo.MinQuantityForTicket <= 0 || c.Promo.BuyXGet1Free <= 0 {
		return fmt.Errorf("promo thresholds must be positive")
	}
	if c.PaymentGateway.SingleCheckLimit <= 0 || c.PaymentGateway.BatchCheckLimit <= 0 {
		return fmt.Errorf("payment_gateway limits must be positive")
	}
	if c.Scheduler.PendingTimeout <= 0 {
		return fmt.Errorf("scheduler.pending_timeout must be positive")
	}
	return nil
}

func (c *OrderConfig) HTTPAddress() string {
	return net.JoinHostPort(c.HTTPServer.Host, c.HTTPServer.Port)
}

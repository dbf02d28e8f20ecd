package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"donation-service/internal/carousel"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Server struct {
	Port              string `mapstructure:"port"`
	ShutdownTimeoutMs int    `mapstructure:"shutdown-timeout-ms"`
}

type Mpesa struct {
	ConsumerKey      string `mapstructure:"consumer-key"`
	ConsumerSecret   string `mapstructure:"consumer-secret"`
	ShortCode        string `mapstructure:"short-code"`
	Passkey          string `mapstructure:"passkey"`
	CallbackURL      string `mapstructure:"callback-url"`
	BaseURL          string `mapstructure:"base-url"`
	TimeoutMs        int    `mapstructure:"timeout-ms"`
	AccountReference string `mapstructure:"account-reference"`
	TransactionDesc  string `mapstructure:"transaction-desc"`
}

type Database struct {
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Name          string `mapstructure:"name"`
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	SSLMode       string `mapstructure:"ssl-mode"`
	MigrationsDir string `mapstructure:"migrations-dir"`
}

// Enabled reports whether a database host was configured.
func (d Database) Enabled() bool {
	return d.Host != ""
}

func (d Database) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type KafkaBroker struct {
	URL string `mapstructure:"url"`
}

type KafkaTopic struct {
	DonationEvents string `mapstructure:"donation-events"`
}

type KafkaReader struct {
	GroupID string `mapstructure:"group-id"`
}

type Kafka struct {
	Writer KafkaWriter `mapstructure:"writer"`
	Broker KafkaBroker `mapstructure:"broker"`
	Topic  KafkaTopic  `mapstructure:"topic"`
	Reader KafkaReader `mapstructure:"reader"`
}

func (k Kafka) Enabled() bool {
	return k.Broker.URL != ""
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL   string `mapstructure:"url"`
	Level string `mapstructure:"level"`
}

type Carousel struct {
	SlideshowIntervalMs int `mapstructure:"slideshow-interval-ms"`
	PartnersIntervalMs  int `mapstructure:"partners-interval-ms"`
	TeamIntervalMs      int `mapstructure:"team-interval-ms"`
}

type Site struct {
	CORSOrigins      []string `mapstructure:"cors-origins"`
	ConsentDelayMs   int      `mapstructure:"consent-delay-ms"`
	ConsentTTLHours  int      `mapstructure:"consent-ttl-hours"`
	Carousel         Carousel `mapstructure:"carousel"`
	VisitorCookieAge int      `mapstructure:"visitor-cookie-age"`
}

type RateLimit struct {
	RequestsPerMinute int `mapstructure:"requests-per-minute"`
	Burst             int `mapstructure:"burst"`
}

type Config struct {
	Server    Server    `mapstructure:"server"`
	Mpesa     Mpesa     `mapstructure:"mpesa"`
	Database  Database  `mapstructure:"database"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Redis     Redis     `mapstructure:"redis"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Logs      Logs      `mapstructure:"logs"`
	Site      Site      `mapstructure:"site"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
}

// Millis converts a millisecond setting into a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// envAliases keeps the variable names operators already use for the Daraja
// credentials.
var envAliases = map[string]string{
	"mpesa.consumer-key":    "MPESA_CONSUMER_KEY",
	"mpesa.consumer-secret": "MPESA_CONSUMER_SECRET",
	"mpesa.short-code":      "MPESA_BUSINESS_SHORTCODE",
	"mpesa.passkey":         "MPESA_PASSKEY",
	"mpesa.callback-url":    "MPESA_CALLBACK_URL",
	"mpesa.base-url":        "MPESA_BASE_URL",
	"database.user":         "DB_USER",
	"database.password":     "DB_PASSWORD",
	"database.name":         "DB_NAME",
	"database.host":         "DB_HOST",
	"database.port":         "DB_PORT",
	"database.ssl-mode":     "SSL_MODE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown-timeout-ms", 10_000)

	v.SetDefault("mpesa.consumer-key", "")
	v.SetDefault("mpesa.consumer-secret", "")
	v.SetDefault("mpesa.short-code", "")
	v.SetDefault("mpesa.passkey", "")
	v.SetDefault("mpesa.callback-url", "")
	v.SetDefault("mpesa.base-url", "https://sandbox.safaricom.co.ke")
	v.SetDefault("mpesa.timeout-ms", 30_000)
	v.SetDefault("mpesa.account-reference", "GREENMINDS")
	v.SetDefault("mpesa.transaction-desc", "Donation to Green Minds Youth Initiative")

	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "donations")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.ssl-mode", "disable")
	v.SetDefault("database.migrations-dir", "migrations")

	v.SetDefault("kafka.broker.url", "")
	v.SetDefault("kafka.topic.donation-events", "donation-events")
	v.SetDefault("kafka.reader.group-id", "donation-service")
	v.SetDefault("kafka.writer.batch-size", 1)
	v.SetDefault("kafka.writer.batch-timeout-ms", 100)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("metrics.url", "")
	v.SetDefault("metrics.interval-ms", 10_000)
	v.SetDefault("metrics.common-labels", `service="donation-service"`)

	v.SetDefault("logs.url", "")
	v.SetDefault("logs.level", "info")

	v.SetDefault("site.cors-origins", []string{"*"})
	v.SetDefault("site.consent-delay-ms", 1000)
	v.SetDefault("site.consent-ttl-hours", 24*365)
	v.SetDefault("site.visitor-cookie-age", 60*60*24*365)
	v.SetDefault("site.carousel.slideshow-interval-ms", int(carousel.SlideshowInterval.Milliseconds()))
	v.SetDefault("site.carousel.partners-interval-ms", int(carousel.PartnersInterval.Milliseconds()))
	v.SetDefault("site.carousel.team-interval-ms", int(carousel.TeamInterval.Milliseconds()))

	v.SetDefault("ratelimit.requests-per-minute", 10)
	v.SetDefault("ratelimit.burst", 5)
}

// LoadConfig reads config.yaml from path when it exists and overlays the
// environment. Nested keys map to upper-case variables with dots and dashes
// replaced by underscores, e.g. KAFKA_BROKER_URL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", env)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}

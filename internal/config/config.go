package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port         string `mapstructure:"port"`
		Env          string `mapstructure:"env"`
		CookieSecure bool   `mapstructure:"cookie_secure"`
	} `mapstructure:"app"`
	Backend struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`
	Session struct {
		Store string        `mapstructure:"store"`
		TTL   time.Duration `mapstructure:"ttl"`
	} `mapstructure:"session"`
	Auth struct {
		CheckExpiry bool `mapstructure:"check_expiry"`
	} `mapstructure:"auth"`
	DB struct {
		DSN            string `mapstructure:"dsn"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.env", "development")
	v.SetDefault("backend.base_url", "http://127.0.0.1:8000/api")
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("session.store", SessionStoreRedis)
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("auth.check_expiry", false)
	v.SetDefault("db.migrations_path", "file://migrations")
	v.SetDefault("kafka.group_id", "portli-view-stats")
}

// LoadConfig reads .env and config.yaml from path, then lets environment
// variables override both.
func LoadConfig(path string) (cfg Config, err error) {

	if err := godotenv.Load(path + "/.env"); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.cookie_secure", "COOKIE_SECURE")
	v.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	v.BindEnv("backend.timeout", "BACKEND_TIMEOUT")
	v.BindEnv("session.store", "SESSION_STORE")
	v.BindEnv("session.ttl", "SESSION_TTL")
	v.BindEnv("auth.check_expiry", "AUTH_CHECK_EXPIRY")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.migrations_path", "DB_MIGRATIONS_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("jaeger.otlp_endpoint", "OTLP_ENDPOINT")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	err = v.Unmarshal(&cfg)
	return
}

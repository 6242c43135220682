// Package config предоставляет структуры и функцию для загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек приложения.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RateLimit               `yaml:"rate_limit"`
	RedisConnection         `yaml:"redis_connection"`
	Events                  `yaml:"events"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном.
// Секрет обязателен: без него сервис не может выдавать проверяемые токены.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"DATIFY_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// RateLimit параметры ограничителя запросов: фиксированное окно
// на клиентский адрес.
type RateLimit struct {
	MaxRequests int           `yaml:"max_requests" env-default:"15"`
	Window      time.Duration `yaml:"window" env-default:"1m"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает, что ограничитель работает на локальных счетчиках.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"5s"`
}

// Events структура для настройки публикации событий в RabbitMQ.
// Пустой адрес отключает публикацию.
type Events struct {
	AmqpAddress string `yaml:"amqp_address"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс
// при любой ошибке конфигурации, включая отсутствующий JWT-секрет.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if cfg.JWTSecretKey == "" {
		log.Fatal("jwt secret key is not set")
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RateLimit:\n"+
			"  MaxRequests: %d\n"+
			"  Window: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"Events:\n"+
			"  AmqpAddress: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.MaxRequests,
		c.Window,
		c.AddressRedis,
		c.AmqpAddress,
	)
}

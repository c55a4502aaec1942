package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Config 保存应用程序配置。
type Config struct {
	App      AppConfig      `json:"app"`
	MySQL    MySQLConfig    `json:"mysql"`
	Redis    RedisConfig    `json:"redis"`
	Security SecurityConfig `json:"security"`
}

// AppConfig 应用程序基础配置。
type AppConfig struct {
	Env      string `json:"env"`       // 运行环境: local / prod
	LogLevel string `json:"log_level"` // 日志级别: debug / info / warn / error
	HTTPAddr string `json:"http_addr"` // API 服务监听地址
}

// MySQLConfig MySQL 数据库配置。
type MySQLConfig struct {
	DSN string `json:"dsn"` // 数据库连接字符串
}

// RedisConfig Redis 配置（登录限流）。
type RedisConfig struct {
	Addr     string `json:"addr"`     // Redis 地址 (host:port)
	Password string `json:"password"` // Redis 密码
}

// SecurityConfig 安全相关配置。
type SecurityConfig struct {
	JWTSecret       string        `json:"jwt_secret"`        // JWT 签名密钥
	TokenTTL        time.Duration `json:"token_ttl"`         // 访问 token 有效期（如 "24h"）
	SignInRateLimit float64       `json:"signin_rate_limit"` // 登录限流速率（token/s），0 表示关闭
	SignInRateBurst float64       `json:"signin_rate_burst"` // 登录限流桶容量
}

// Load 从 JSON 文件加载配置。
//
// 文件不存在时使用默认值；环境变量的优先级高于文件。
//
// 参数:
//
//	configPath: 配置文件路径（为空则使用默认路径 "configs/config.json"）
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := getDefaultConfig()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// getDefaultConfig 返回默认配置。
func getDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Env:      "local",
			LogLevel: "info",
			HTTPAddr: ":8081",
		},
		MySQL: MySQLConfig{
			DSN: "root:password@tcp(localhost:3306)/tasktracker?parseTime=true&loc=Local",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
		},
		Security: SecurityConfig{
			JWTSecret:       "dev_secret_change_me",
			TokenTTL:        24 * time.Hour,
			SignInRateLimit: 1,
			SignInRateBurst: 5,
		},
	}
}

// applyDefaults 对未设置的字段应用默认值。
func applyDefaults(cfg *Config) {
	defaults := getDefaultConfig()

	if cfg.App.Env == "" {
		cfg.App.Env = defaults.App.Env
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = defaults.App.LogLevel
	}
	if cfg.App.HTTPAddr == "" {
		cfg.App.HTTPAddr = defaults.App.HTTPAddr
	}
	if cfg.MySQL.DSN == "" {
		cfg.MySQL.DSN = defaults.MySQL.DSN
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaults.Redis.Addr
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = defaults.Security.JWTSecret
	}
	if cfg.Security.TokenTTL == 0 {
		cfg.Security.TokenTTL = defaults.Security.TokenTTL
	}
	if cfg.Security.SignInRateBurst == 0 {
		cfg.Security.SignInRateBurst = defaults.Security.SignInRateBurst
	}
}

func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("db_password", "DB_PASSWORD")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	}
	if v := os.Getenv("APP_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.TokenTTL = d
		}
	}

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Security.JWTSecret = v
	}

	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.MySQL.DSN = v
	} else if os.Getenv("DB_HOST") != "" || viper.GetString("db_password") != "" {
		parsed := parseMySQLDSN(cfg.MySQL.DSN)
		if v := os.Getenv("DB_HOST"); v != "" {
			port := "3306"
			if p := os.Getenv("DB_PORT"); p != "" {
				port = p
			} else if strings.Contains(parsed.Addr, ":") {
				port = strings.Split(parsed.Addr, ":")[1]
			}
			parsed.Addr = v + ":" + port
		}
		if v := os.Getenv("DB_USER"); v != "" {
			parsed.User = v
		}
		if v := viper.GetString("db_password"); v != "" {
			parsed.Passwd = v
		}
		if v := os.Getenv("DB_NAME"); v != "" {
			parsed.DBName = v
		}
		cfg.MySQL.DSN = parsed.FormatDSN()
	}

	if v := viper.GetString("redis_addr"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := viper.GetString("redis_password"); v != "" {
		cfg.Redis.Password = v
	}
}

func parseMySQLDSN(dsn string) *mysql.Config {
	fallback := &mysql.Config{
		User:   "root",
		Net:    "tcp",
		Addr:   "localhost:3306",
		DBName: "tasktracker",
		Params: map[string]string{
			"parseTime": "true",
			"loc":       "Local",
		},
	}
	if dsn == "" {
		return fallback
	}
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fallback
	}
	return parsed
}

// UnmarshalJSON 自定义 JSON 解析，支持 Duration 字符串（如 "24h"）。
func (s *SecurityConfig) UnmarshalJSON(data []byte) error {
	type Alias SecurityConfig
	aux := &struct {
		TokenTTL string `json:"token_ttl"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.TokenTTL != "" {
		duration, err := time.ParseDuration(aux.TokenTTL)
		if err != nil {
			return fmt.Errorf("invalid token_ttl format: %w", err)
		}
		s.TokenTTL = duration
	}

	return nil
}

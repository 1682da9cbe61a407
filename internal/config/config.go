package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvRedisAddr 覆盖 redis.addr 的环境变量
const EnvRedisAddr = "BLUFF_REDIS_ADDR"

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Log      LogConfig      `yaml:"log"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	MaxConnections  int    `yaml:"max_connections"`  // 最大并发连接数
	Codec           string `yaml:"codec"`            // json / protobuf
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // 优雅关闭等待对局结束的时长（秒）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MaxPlayers          int  `yaml:"max_players"`           // 每个房间的人数
	RoomInactiveTimeout int  `yaml:"room_inactive_timeout"` // 房间不活跃超时（小时）
	CleanupInterval     int  `yaml:"cleanup_interval"`      // 清理间隔（分钟）
	StrictBluffCheck    bool `yaml:"strict_bluff_check"`    // 质疑时要求所有出牌都与声明一致
	ReconnectTimeout    int  `yaml:"reconnect_timeout"`     // 断线后允许重连的时长（秒）
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`       // debug / info / warn / error
	File        string `yaml:"file"`        // 为空时只输出到 stderr
	Development bool   `yaml:"development"` // 开发模式：彩色控制台输出
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	IPWhitelist    []string           `yaml:"ip_whitelist"` // 非空时只允许这些 IP
	IPBlacklist    []string           `yaml:"ip_blacklist"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 封禁时长（秒）
}

// MessageLimitConfig 消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShutdownTimeoutDuration 返回优雅关闭超时
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// RoomInactiveTimeoutDuration 返回房间不活跃超时
func (c *GameConfig) RoomInactiveTimeoutDuration() time.Duration {
	return time.Duration(c.RoomInactiveTimeout) * time.Hour
}

// CleanupIntervalDuration 返回清理间隔
func (c *GameConfig) CleanupIntervalDuration() time.Duration {
	return time.Duration(c.CleanupInterval) * time.Minute
}

// ReconnectTimeoutDuration 返回重连时限
func (c *GameConfig) ReconnectTimeoutDuration() time.Duration {
	return time.Duration(c.ReconnectTimeout) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault 加载配置文件，文件不存在时返回默认配置
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的端口: %d", c.Server.Port)
	}
	if c.Game.MaxPlayers < 2 || c.Game.MaxPlayers > 4 {
		return fmt.Errorf("max_players 必须在 2-4 之间: %d", c.Game.MaxPlayers)
	}
	switch c.Server.Codec {
	case "json", "protobuf":
	default:
		return fmt.Errorf("未知的编解码器: %s", c.Server.Codec)
	}
	return nil
}

// applyDefaults 补全被显式置零的字段
func (c *Config) applyDefaults() {
	d := Default()

	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxConnections <= 0 {
		c.Server.MaxConnections = d.Server.MaxConnections
	}
	if c.Server.Codec == "" {
		c.Server.Codec = d.Server.Codec
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = d.Redis.Addr
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = d.Game.MaxPlayers
	}
	if c.Game.RoomInactiveTimeout <= 0 {
		c.Game.RoomInactiveTimeout = d.Game.RoomInactiveTimeout
	}
	if c.Game.CleanupInterval <= 0 {
		c.Game.CleanupInterval = d.Game.CleanupInterval
	}
	if c.Game.ReconnectTimeout <= 0 {
		c.Game.ReconnectTimeout = d.Game.ReconnectTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = d.Security.AllowedOrigins
	}
	if c.Security.RateLimit.MaxPerSecond <= 0 {
		c.Security.RateLimit.MaxPerSecond = d.Security.RateLimit.MaxPerSecond
	}
	if c.Security.RateLimit.MaxPerMinute <= 0 {
		c.Security.RateLimit.MaxPerMinute = d.Security.RateLimit.MaxPerMinute
	}
	if c.Security.RateLimit.BanDuration <= 0 {
		c.Security.RateLimit.BanDuration = d.Security.RateLimit.BanDuration
	}
	if c.Security.MessageLimit.MaxPerSecond <= 0 {
		c.Security.MessageLimit.MaxPerSecond = d.Security.MessageLimit.MaxPerSecond
	}
}

func (c *Config) applyEnv() {
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Redis.Addr = addr
		c.Redis.Enabled = true
	}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			MaxConnections:  1000,
			Codec:           "json",
			ShutdownTimeout: 30,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			MaxPlayers:          2,
			RoomInactiveTimeout: 24,
			CleanupInterval:     60,
			ReconnectTimeout:    120,
		},
		Log: LogConfig{
			Level: "info",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				MaxPerSecond: 10,
				MaxPerMinute: 60,
				BanDuration:  60,
			},
			MessageLimit: MessageLimitConfig{
				MaxPerSecond: 20,
			},
		},
	}
}

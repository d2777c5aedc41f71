package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Stream    StreamConfig  `mapstructure:"stream"`
	Quiz      QuizConfig    `mapstructure:"quiz"`
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

// StreamConfig 流媒体代理相关配置
type StreamConfig struct {
	// 播放来源白名单，Referer/Origin 必须匹配其中之一
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// 视频签名 URL 有效期（每个播放请求重新签发，支持 seek/重试）
	VideoURLTTL time.Duration `mapstructure:"video_url_ttl"`
	// 文档/图片签名 URL 有效期（单次拉取，可以更长）
	DocumentURLTTL time.Duration `mapstructure:"document_url_ttl"`
	// 视频水印转换，仅为观感威慑，不影响正确性
	WatermarkEnabled bool   `mapstructure:"watermark_enabled"`
	WatermarkText    string `mapstructure:"watermark_text"`
	// 上游响应头超时，正文按流式传输不限时
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
}

// QuizConfig 测验计分衰减常量，单位秒
type QuizConfig struct {
	FullPointsTime float64 `mapstructure:"full_points_time"`
	MaxTimeFirst   float64 `mapstructure:"max_time_first"`
	MaxTimeSecond  float64 `mapstructure:"max_time_second"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("COURSE_MEDIA")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	viper.SetDefault("quiz.full_points_time", 7)
	viper.SetDefault("quiz.max_time_first", 30)
	viper.SetDefault("quiz.max_time_second", 20)

	viper.SetDefault("stream.video_url_ttl", "5m")
	viper.SetDefault("stream.document_url_ttl", "1h")
	viper.SetDefault("stream.upstream_timeout", "30s")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := cfg.Quiz.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 保证衰减窗口有意义：满分窗口必须小于各自的上限
func (q QuizConfig) Validate() error {
	if q.FullPointsTime <= 0 {
		return fmt.Errorf("quiz.full_points_time must be positive, got %v", q.FullPointsTime)
	}
	if q.MaxTimeFirst <= q.FullPointsTime {
		return fmt.Errorf("quiz.max_time_first (%v) must exceed full_points_time (%v)", q.MaxTimeFirst, q.FullPointsTime)
	}
	if q.MaxTimeSecond <= q.FullPointsTime {
		return fmt.Errorf("quiz.max_time_second (%v) must exceed full_points_time (%v)", q.MaxTimeSecond, q.FullPointsTime)
	}
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Review   ReviewConfig   `mapstructure:"review"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	Path            string        `mapstructure:"path"` // sqlite数据库文件
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

// RedisConfig Redis配置
// Enabled=false时不创建客户端：评价汇总不走缓存，redis通知驱动被跳过
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// ReviewConfig 评价引擎配置
// 设计说明：
// 1. Model是已注册的评价模型名称（对应一张评价表），默认default → reviews表
// 2. ForeignKey是评价表中指向被评价实体的外键列，默认model_id
// 3. 两项配置在仓储构造时一次性解析，非法配置在启动阶段失败
// 4. StatsCacheTTL是评价汇总在Redis中的缓存时间（需启用redis）
type ReviewConfig struct {
	Model         string        `mapstructure:"model"`
	ForeignKey    string        `mapstructure:"foreign_key"`
	StatsCacheTTL time.Duration `mapstructure:"stats_cache_ttl"`
}

// NotifierConfig 评价创建事件通知配置
type NotifierConfig struct {
	Drivers  []string       `mapstructure:"drivers"` // log | rabbitmq | nats | redis
	Timeout  time.Duration  `mapstructure:"timeout"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Redis    RedisPubSub    `mapstructure:"redis"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
}

type RabbitMQConfig struct {
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
	RoutingKey   string `mapstructure:"routing_key"`
	Queue        string `mapstructure:"queue"` // cmd/consumer使用
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type RedisPubSub struct {
	Channel string `mapstructure:"channel"`
}

// BreakerConfig 通知熔断器配置
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC端点，如localhost:4317
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量REVIEWRATING_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如REVIEWRATING_REVIEW_FOREIGN_KEY）
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 环境变量绑定（REVIEWRATING_DATABASE_PASSWORD → database.password）
	v.SetEnvPrefix("REVIEWRATING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 环境特定配置（如config.prod.yaml）
	if env := v.GetString("env"); env != "" {
		v.SetConfigName("config." + env)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	return decode(v)
}

// LoadFile 从指定文件加载配置（测试与cmd/consumer使用）
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("REVIEWRATING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults 默认值
// 学习要点：viper的默认值优先级最低（默认值 < 配置文件 < 环境变量）
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("review.model", "default")
	v.SetDefault("review.foreign_key", "model_id")
	v.SetDefault("review.stats_cache_ttl", 10*time.Minute)
	v.SetDefault("notifier.drivers", []string{"log"})
	v.SetDefault("notifier.timeout", 5*time.Second)
	v.SetDefault("notifier.rabbitmq.exchange", "reviewrating.events")
	v.SetDefault("notifier.rabbitmq.exchange_type", "topic")
	v.SetDefault("notifier.rabbitmq.routing_key", "review.created")
	v.SetDefault("notifier.rabbitmq.queue", "review.created.log")
	v.SetDefault("notifier.nats.subject", "review.created")
	v.SetDefault("notifier.redis.channel", "reviews.created")
	v.SetDefault("notifier.breaker.max_requests", 1)
	v.SetDefault("notifier.breaker.interval", time.Minute)
	v.SetDefault("notifier.breaker.timeout", 30*time.Second)
	v.SetDefault("notifier.breaker.failure_threshold", 5)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("tracing.service_name", "reviewrating")
	v.SetDefault("tracing.endpoint", "localhost:4317")
}

// validate 配置校验
// 注意：review.model与review.foreign_key的合法性由持久化层在启动时校验
// （需要知道已注册的模型），这里只做格式层面的检查
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "mysql":
	case "sqlite":
		if cfg.Database.Path == "" {
			return fmt.Errorf("sqlite驱动必须配置database.path")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	for _, d := range cfg.Notifier.Drivers {
		switch d {
		case "log", "rabbitmq", "nats", "redis":
		default:
			return fmt.Errorf("不支持的通知驱动: %s", d)
		}
	}

	if cfg.Notifier.Timeout <= 0 {
		return fmt.Errorf("notifier.timeout必须大于0")
	}

	return nil
}

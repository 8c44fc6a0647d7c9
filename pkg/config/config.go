package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"healthbrain/pkg/errorutil"
)

// Config 全局配置（apiserver / worker / fasttest 共用）
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Brain    BrainConfig    `mapstructure:"brain"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Workers  []WorkerConfig `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port             string        `mapstructure:"port"`
	RunRatePerMinute int           `mapstructure:"run_rate_per_minute"` // 体检接口限流
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ReportChannel string `mapstructure:"report_channel"` // 报告通知频道
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// LLMConfig 叙述生成（chat completion）配置，APIKey 为空时使用兜底摘要
type LLMConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"` // 连续失败多少次熔断
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// BrainConfig 体检引擎阈值
type BrainConfig struct {
	Timezone             string        `mapstructure:"timezone"`
	RunTimeout           time.Duration `mapstructure:"run_timeout"`
	StaleOrderAge        time.Duration `mapstructure:"stale_order_age"`
	StaleOrderLimit      int           `mapstructure:"stale_order_limit"`
	StaleWithdrawalAge   time.Duration `mapstructure:"stale_withdrawal_age"`
	OTPWindow            time.Duration `mapstructure:"otp_window"`
	OTPMaxAttempts       int64         `mapstructure:"otp_max_attempts"`
	LowStockThreshold    int64         `mapstructure:"low_stock_threshold"`
	ProductEvidenceLimit int           `mapstructure:"product_evidence_limit"`
	FraudWindow          time.Duration `mapstructure:"fraud_window"`
	FraudMinOrderAmount  float64       `mapstructure:"fraud_min_order_amount"`
	FraudMinOrders       int64         `mapstructure:"fraud_min_orders"`
	FraudMinTotal        float64       `mapstructure:"fraud_min_total"`
	ExpiredOTPBacklog    int64         `mapstructure:"expired_otp_backlog"`
	OTPFloodThreshold    int64         `mapstructure:"otp_flood_threshold"`
	TopRankingLimit      int           `mapstructure:"top_ranking_limit"`
	PersistReports       bool          `mapstructure:"persist_reports"`
}

// ScheduleConfig 定时体检配置
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"` // cron 表达式
	AutoFix bool   `mapstructure:"auto_fix"`
	Queue   string `mapstructure:"queue"` // 投递的任务队列
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name          string           `mapstructure:"name"`
	QueueName     string           `mapstructure:"queue_name"`
	CallbackQueue string           `mapstructure:"callback_queue"` // 回调队列名称
	Subscriber    SubscriberConfig `mapstructure:"subscriber"`
	Processor     ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// setDefaults 默认值与原有阈值保持一致
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "healthbrain")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.run_rate_per_minute", 30)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.report_channel", "brain:report")

	v.SetDefault("lmstfy.host", "")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.namespace", "healthbrain")
	v.SetDefault("lmstfy.token", "")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://ai.gateway.lovable.dev")
	v.SetDefault("llm.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.timeout", 15*time.Second)
	v.SetDefault("llm.breaker_failures", 3)
	v.SetDefault("llm.breaker_cooldown", 30*time.Second)

	v.SetDefault("brain.timezone", "Asia/Riyadh")
	v.SetDefault("brain.run_timeout", 25*time.Second)
	v.SetDefault("brain.stale_order_age", 72*time.Hour)
	v.SetDefault("brain.stale_order_limit", 20)
	v.SetDefault("brain.stale_withdrawal_age", 72*time.Hour)
	v.SetDefault("brain.otp_window", time.Hour)
	v.SetDefault("brain.otp_max_attempts", 5)
	v.SetDefault("brain.low_stock_threshold", 5)
	v.SetDefault("brain.product_evidence_limit", 10)
	v.SetDefault("brain.fraud_window", 7*24*time.Hour)
	v.SetDefault("brain.fraud_min_order_amount", 1000)
	v.SetDefault("brain.fraud_min_orders", 3)
	v.SetDefault("brain.fraud_min_total", 5000)
	v.SetDefault("brain.expired_otp_backlog", 10)
	v.SetDefault("brain.otp_flood_threshold", 50)
	v.SetDefault("brain.top_ranking_limit", 5)
	v.SetDefault("brain.persist_reports", true)

	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.spec", "@every 15m")
	v.SetDefault("schedule.auto_fix", false)
	v.SetDefault("schedule.queue", "brain_run")
}

// Load 加载配置：默认值 < 配置文件 < 环境变量
// 配置文件不存在时仅使用默认值与环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 1. 环境变量覆盖：BRAIN_MYSQL_DSN → mysql.dsn
	v.SetEnvPrefix("BRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 2. 兼容部署平台注入的变量名
	if err := v.BindEnv("mysql.dsn", "BRAIN_MYSQL_DSN", "DATABASE_DSN"); err != nil {
		return nil, fmt.Errorf("bind env failed: %w", err)
	}
	if err := v.BindEnv("llm.api_key", "BRAIN_LLM_API_KEY", "LLM_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env failed: %w", err)
	}

	// 3. 读取配置文件
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config failed: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证体检引擎运行所需配置
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return errorutil.Config("mysql.dsn is required")
	}
	if c.Brain.RunTimeout <= 0 {
		return errorutil.Config("brain.run_timeout must be positive")
	}
	if _, err := c.Brain.Location(); err != nil {
		return errorutil.Config(fmt.Sprintf("brain.timezone is invalid: %v", err))
	}
	return nil
}

// ValidateWorker 验证 worker 额外需要的配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return errorutil.Config("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return errorutil.Config("at least one worker is required")
	}
	if c.Workers[0].CallbackQueue == "" {
		return errorutil.Config("workers[0].callback_queue is required")
	}
	return nil
}

// Location 解析业务时区
func (b BrainConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(b.Timezone)
}

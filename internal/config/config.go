package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// RigConfig 电台控制端点连接配置
type RigConfig struct {
	Addr           string        `mapstructure:"addr"`
	DialTimeout    time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	ReadBufferSize int           `mapstructure:"readBufferSize"`
}

// EngineConfig 同步引擎配置
type EngineConfig struct {
	SyncInterval     time.Duration `mapstructure:"syncInterval"`
	InputInterval    time.Duration `mapstructure:"inputInterval"`
	DefaultFrequency int64         `mapstructure:"defaultFrequency"`
	StepsHz          []int64       `mapstructure:"stepsHz"`
}

// PadConfig 方向输入设备（手柄十字键）配置
type PadConfig struct {
	Enable bool   `mapstructure:"enable"`
	Device string `mapstructure:"device"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string          `mapstructure:"addr"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig 控制类接口限流配置
type RateLimitConfig struct {
	PerSecond int `mapstructure:"perSecond"`
	Burst     int `mapstructure:"burst"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Rig     RigConfig     `mapstructure:"rig"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Pad     PadConfig     `mapstructure:"pad"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 RIG_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("RIG_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 RIG_，并将点号替换为下划线
	v.SetEnvPrefix("RIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验引擎侧关键配置项
func (c *Config) Validate() error {
	if c.Rig.Addr == "" {
		return fmt.Errorf("config: rig.addr is required")
	}
	if c.Engine.SyncInterval <= 0 || c.Engine.InputInterval <= 0 {
		return fmt.Errorf("config: engine intervals must be positive")
	}
	if len(c.Engine.StepsHz) == 0 {
		return fmt.Errorf("config: engine.stepsHz must not be empty")
	}
	for _, s := range c.Engine.StepsHz {
		if s <= 0 {
			return fmt.Errorf("config: step size %d must be positive", s)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "rig-bridge")
	v.SetDefault("app.env", "dev")

	v.SetDefault("rig.addr", "127.0.0.1:4532")
	v.SetDefault("rig.dialTimeout", "5s")
	v.SetDefault("rig.readTimeout", "5s")
	v.SetDefault("rig.writeTimeout", "5s")
	v.SetDefault("rig.readBufferSize", 1024)

	v.SetDefault("engine.syncInterval", "100ms")
	v.SetDefault("engine.inputInterval", "100ms")
	v.SetDefault("engine.defaultFrequency", 1000000)
	v.SetDefault("engine.stepsHz", []int64{1000, 12500, 1000000})

	v.SetDefault("pad.enable", true)
	v.SetDefault("pad.device", "/dev/input/js0")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.rateLimit.perSecond", 10)
	v.SetDefault("http.rateLimit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/rig-bridge.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}

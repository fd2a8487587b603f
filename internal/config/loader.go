package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envVarPattern 匹配 ${VAR} 或 ${VAR:default} 形式的占位符
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// Load 加载配置
//
// 加载顺序: .env 文件 -> config.yaml -> config.<env>.yaml 覆盖 -> 环境变量覆盖。
// 配置值中的 ${VAR:default} 占位符会在解析前展开。
func Load(configPath string) (*Config, error) {
	// .env 文件不存在不算错误
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 按环境合并覆盖文件，如 config.production.yaml
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = v.GetString("app.env")
	}
	if env != "" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("合并环境配置失败: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars 遍历所有配置项并展开环境变量占位符
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)
		if s, ok := val.(string); ok {
			v.Set(key, expandString(s))
		}
	}
}

func expandString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, def := groups[1], groups[2]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return def
	})
}

// validate 校验必填配置
func validate(cfg *Config) error {
	if cfg.Security.JWT.Secret == "" {
		return fmt.Errorf("配置缺失: security.jwt.secret")
	}
	if cfg.LLM.PlannerProvider == "" {
		return fmt.Errorf("配置缺失: llm.planner_provider")
	}
	if _, ok := cfg.LLM.Providers[cfg.LLM.PlannerProvider]; !ok {
		return fmt.Errorf("llm.planner_provider 指向未定义的提供商: %s", cfg.LLM.PlannerProvider)
	}
	if cfg.LLM.VisionProvider != "" {
		if _, ok := cfg.LLM.Providers[cfg.LLM.VisionProvider]; !ok {
			return fmt.Errorf("llm.vision_provider 指向未定义的提供商: %s", cfg.LLM.VisionProvider)
		}
	}
	if cfg.LLM.IntentProvider != "" {
		if _, ok := cfg.LLM.Providers[cfg.LLM.IntentProvider]; !ok {
			return fmt.Errorf("llm.intent_provider 指向未定义的提供商: %s", cfg.LLM.IntentProvider)
		}
	}
	if cfg.Features.History.WindowSize <= 0 {
		return fmt.Errorf("features.history.window_size 必须大于 0")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// 应用
	v.SetDefault("app.name", "vizzy-conversational")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "120s")
	v.SetDefault("server.http.idle_timeout", "120s")

	// PostgreSQL
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.database", "vizzy")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "1h")
	v.SetDefault("database.postgres.conn_max_idle_time", "30m")

	// Redis
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")

	// 媒体生成
	v.SetDefault("media.image.provider", "mockup")
	v.SetDefault("media.image.model", "gpt-image-1")
	v.SetDefault("media.image.timeout", "120s")
	v.SetDefault("media.video.provider", "mockup")
	v.SetDefault("media.video.model", "sora-1.0")
	v.SetDefault("media.video.timeout", "300s")

	// 存储
	v.SetDefault("storage.dir", "./data/assets")
	v.SetDefault("storage.base_url", "/assets")

	// 可观测性
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.logging.output", "stdout")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.exporter", "otlp")
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全
	v.SetDefault("security.jwt.issuer", "vizzy-conversational")
	v.SetDefault("security.jwt.expiration", "2h")
	v.SetDefault("security.jwt.refresh_expiration", "168h")
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests_per_window", 60)
	v.SetDefault("security.rate_limit.window", "1m")
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})

	// 功能
	v.SetDefault("features.preferences.enabled", true)
	v.SetDefault("features.preferences.cache_ttl", "5m")
	v.SetDefault("features.history.window_size", 20)
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAppName     = "blog-generator"
	DefaultRegion      = "us-east-1"
	DefaultModelID     = "meta.llama3-2-1b-instruct-v1:0"
	DefaultBucket      = "aws_bedrock_course1"
	DefaultReadTimeout = 300000 // milliseconds
	DefaultMaxAttempts = 3

	// GenerateBlogTaskType is the Zeebe job type served by the blog worker.
	GenerateBlogTaskType = "generate-blog"
)

// Load reads configs/config.yaml, the environment specific overlay and the
// process environment, in that order of precedence (last wins).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// aws.bedrock.model_id <- AWS_BEDROCK_MODEL_ID
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// envAliases are the short names used by deployment scripts. The structured
// name (AWS_S3_BUCKET) is checked first, then the alias.
var envAliases = map[string]string{
	"aws.bedrock.region":     "BEDROCK_REGION",
	"aws.bedrock.model_id":   "BEDROCK_MODEL_ID",
	"aws.s3.bucket":          "BLOG_S3_BUCKET",
	"aws.sns.topic_arn":      "BLOG_SNS_TOPIC_ARN",
	"camunda.broker_address": "ZEEBE_ADDRESS",
}

// bindEnvKeys registers every key we care about so environment values apply
// even when the key is missing from the YAML files, and win over it when set.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"app.name", "app.version", "app.environment",
		"camunda.broker_address", "camunda.plaintext", "camunda.request_timeout",
		"server.address", "server.mode", "server.shutdown_timeout",
		"aws.region",
		"aws.bedrock.region", "aws.bedrock.model_id", "aws.bedrock.read_timeout", "aws.bedrock.max_attempts",
		"aws.s3.bucket", "aws.s3.region", "aws.s3.endpoint", "aws.s3.use_path_style",
		"aws.s3.access_key_id", "aws.s3.secret_access_key",
		"aws.sns.enabled", "aws.sns.topic_arn",
		"redis.address", "redis.password", "redis.db", "redis.ttl",
		"logging.level", "logging.format",
		"tracing.enabled", "tracing.jaeger_endpoint",
	}
	replacer := strings.NewReplacer(".", "_", "-", "_")
	for _, key := range keys {
		envs := []string{strings.ToUpper(replacer.Replace(key))}
		if alias, ok := envAliases[key]; ok {
			envs = append(envs, alias)
		}
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in YAML values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = DefaultRegion
	}
	if cfg.AWS.Bedrock.ModelID == "" {
		cfg.AWS.Bedrock.ModelID = DefaultModelID
	}
	if cfg.AWS.Bedrock.ReadTimeout == 0 {
		cfg.AWS.Bedrock.ReadTimeout = DefaultReadTimeout
	}
	if cfg.AWS.Bedrock.MaxAttempts == 0 {
		cfg.AWS.Bedrock.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AWS.S3.Bucket == "" {
		cfg.AWS.S3.Bucket = DefaultBucket
	}

	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 3600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	if _, ok := cfg.Workers[GenerateBlogTaskType]; !ok {
		cfg.Workers[GenerateBlogTaskType] = WorkerConfig{Enabled: true}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		// A job spans one inference call plus one write, so it must outlive the read timeout.
		if worker.Timeout == 0 {
			worker.Timeout = cfg.AWS.Bedrock.ReadTimeout + 60000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.AWS.Bedrock.ModelID == "" {
		return fmt.Errorf("aws.bedrock.model_id is required")
	}
	if cfg.AWS.S3.Bucket == "" {
		return fmt.Errorf("aws.s3.bucket is required")
	}
	if cfg.AWS.Bedrock.ReadTimeout < DefaultReadTimeout {
		return fmt.Errorf("aws.bedrock.read_timeout must be at least %dms, got %d", DefaultReadTimeout, cfg.AWS.Bedrock.ReadTimeout)
	}
	if cfg.AWS.Bedrock.MaxAttempts < 1 {
		return fmt.Errorf("aws.bedrock.max_attempts must be positive")
	}
	if cfg.AWS.SNS.Enabled && cfg.AWS.SNS.TopicARN == "" {
		return fmt.Errorf("aws.sns.topic_arn is required when aws.sns.enabled is true")
	}
	if cfg.Tracing.Enabled && cfg.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing.enabled is true")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       DefaultReadTimeout + 60000,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig               `mapstructure:"app"`
	Camunda CamundaConfig           `mapstructure:"camunda"`
	Server  ServerConfig            `mapstructure:"server"`
	AWS     AWSConfig               `mapstructure:"aws"`
	Redis   RedisConfig             `mapstructure:"redis"`
	Workers map[string]WorkerConfig `mapstructure:"workers"`
	Logging LoggingConfig           `mapstructure:"logging"`
	Tracing TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// CamundaConfig enables the Zeebe trigger when BrokerAddress is set.
type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// ServerConfig holds the HTTP gateway listener settings.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	Mode            string `mapstructure:"mode"`             // gin mode: release, debug, test
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// AWSConfig groups the inference, storage and notification clients.
type AWSConfig struct {
	Region  string        `mapstructure:"region"`
	Bedrock BedrockConfig `mapstructure:"bedrock"`
	S3      S3Config      `mapstructure:"s3"`
	SNS     SNSConfig     `mapstructure:"sns"`
}

type BedrockConfig struct {
	Region      string `mapstructure:"region"`
	ModelID     string `mapstructure:"model_id"`
	ReadTimeout int    `mapstructure:"read_timeout"` // milliseconds
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// S3Config points at the artifact bucket. Endpoint and static credentials are
// only needed for S3-compatible stores such as MinIO or LocalStack.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	TopicARN string `mapstructure:"topic_arn"`
}

// RedisConfig backs the job idempotency guard. Empty Address disables it.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig enables span export to a Jaeger collector.
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// BedrockRegion falls back to the shared AWS region.
func (a AWSConfig) BedrockRegion() string {
	if a.Bedrock.Region != "" {
		return a.Bedrock.Region
	}
	return a.Region
}

// S3Region falls back to the shared AWS region.
func (a AWSConfig) S3Region() string {
	if a.S3.Region != "" {
		return a.S3.Region
	}
	return a.Region
}

// ReadTimeoutDuration returns the inference read timeout.
func (b BedrockConfig) ReadTimeoutDuration() time.Duration {
	return GetDuration(b.ReadTimeout)
}

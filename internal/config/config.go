// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"` // empty disables auth on /api/ask
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RetrievalConfig struct {
	QdrantURL  string        `yaml:"qdrant_url"`
	Collection string        `yaml:"collection"`
	TopK       int           `yaml:"top_k"`
	Timeout    time.Duration `yaml:"timeout"`
}

type EmbeddingConfig struct {
	OpenAIKey string `yaml:"openai_key"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

type GenerationConfig struct {
	GroqKey         string `yaml:"groq_key"`
	GroqBaseURL     string `yaml:"groq_base_url"`
	GeminiKey       string `yaml:"gemini_key"`
	OpenAIKey       string `yaml:"openai_key"`
	Model           string `yaml:"model"`
	MaxContextChars int    `yaml:"max_context_chars"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type JobsConfig struct {
	Workers          int           `yaml:"workers"`
	AnswerTTL        time.Duration `yaml:"answer_ttl"`
	QuestionCacheTTL time.Duration `yaml:"question_cache_ttl"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	AckTimeout       time.Duration `yaml:"ack_timeout"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Redis      RedisConfig      `yaml:"redis"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Jobs       JobsConfig       `yaml:"jobs"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ApplyDefaults fills in every unset field with its documented default.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Retrieval.Collection == "" {
		cfg.Retrieval.Collection = "legal_docs"
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.Timeout <= 0 {
		cfg.Retrieval.Timeout = 60 * time.Second
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "llama-3.1-8b-instant"
	}
	if cfg.Generation.GroqBaseURL == "" {
		cfg.Generation.GroqBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Generation.MaxContextChars <= 0 {
		cfg.Generation.MaxContextChars = 4000
	}
	if cfg.Generation.MaxOutputTokens <= 0 {
		cfg.Generation.MaxOutputTokens = 800
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 4
	}
	if cfg.Jobs.AnswerTTL <= 0 {
		cfg.Jobs.AnswerTTL = 24 * time.Hour
	}
	if cfg.Jobs.QuestionCacheTTL <= 0 {
		cfg.Jobs.QuestionCacheTTL = time.Hour
	}
	if cfg.Jobs.MaxRetries <= 0 {
		cfg.Jobs.MaxRetries = 3
	}
	if cfg.Jobs.RetryBaseDelay <= 0 {
		cfg.Jobs.RetryBaseDelay = time.Second
	}
	if cfg.Jobs.AckTimeout <= 0 {
		cfg.Jobs.AckTimeout = 5 * time.Minute
	}
}

// Validate enforces the few invariants that cannot be defaulted away.
// The question cache must never outlive the answer records it duplicates.
func (cfg *Config) Validate() error {
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Retrieval.QdrantURL == "" {
		return errors.New("retrieval.qdrant_url is required")
	}
	if cfg.Jobs.QuestionCacheTTL > cfg.Jobs.AnswerTTL {
		return fmt.Errorf("jobs.question_cache_ttl (%s) must not exceed jobs.answer_ttl (%s)",
			cfg.Jobs.QuestionCacheTTL, cfg.Jobs.AnswerTTL)
	}
	return nil
}

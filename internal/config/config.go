package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	JWTRefreshSecret       string
	OperatorIDs            []string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SnapshotCacheTTL       time.Duration
	UploadMaxSizeMB        int
	SeedEnabled            bool
	SeedToken              string
	AIProvider             string
	OpenAIAPIKey           string
	OpenAIModel            string
	AnthropicAPIKey        string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MATHMOOD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "MathMood Diary API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "mathmood/artifacts")
	v.SetDefault("snapshot.cache_ttl", "5m")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("seed.enabled", false)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai_model", "gpt-4o-mini")

	ttlString := v.GetString("snapshot.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid snapshot cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTRefreshSecret:       v.GetString("jwt.refresh_secret"),
		OperatorIDs:            splitList(v.GetString("operator_ids")),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SnapshotCacheTTL:       ttl,
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai_model"),
		AnthropicAPIKey:        v.GetString("anthropic_api_key"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}

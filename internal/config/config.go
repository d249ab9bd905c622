package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds all environment-sourced configuration.
type Settings struct {
	AppName      string
	Env          string
	Port         string
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	JWTAlgorithm string
	// AccessTokenTTL is ACCESS_TOKEN_EXPIRE_MINUTES converted to a duration.
	AccessTokenTTL time.Duration
	CORSOrigins    string
	// RabbitMQURL enables item event publishing when set.
	RabbitMQURL string
}

// Load reads settings from environment variables, applying defaults. It uses
// a private viper instance so concurrent loads (e.g. in tests) don't share
// state.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetDefault("APP_NAME", "FastAPI Mongo CRUD")
	v.SetDefault("ENV", "dev")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("MONGODB_DB", "fastapi_db")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.AutomaticEnv()

	s := &Settings{
		AppName:        v.GetString("APP_NAME"),
		Env:            v.GetString("ENV"),
		Port:           v.GetString("APP_PORT"),
		MongoURI:       v.GetString("MONGODB_URI"),
		MongoDB:        v.GetString("MONGODB_DB"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTAlgorithm:   v.GetString("JWT_ALGORITHM"),
		AccessTokenTTL: time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
	}

	if s.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if s.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch s.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", s.JWTAlgorithm)
	}

	return s, nil
}

// CORSList splits CORS_ORIGINS into trimmed origins. An empty result means
// no allow-list was configured and the server falls back to allow-all.
func (s *Settings) CORSList() []string {
	if strings.TrimSpace(s.CORSOrigins) == "" {
		return nil
	}
	parts := strings.Split(s.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

package config

import "time"

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	TokenTolerance time.Duration
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:      getEnv("JWT_SECRET_KEY", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "hoshi"),
		TokenTolerance: getEnvDuration("JWT_TOKEN_TOLERANCE", 30*time.Second),
	}
}

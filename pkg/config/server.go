package config

type ServerConfig struct {
	Port        int
	LogLevel    string
	BaseURL     string
	CORSOrigins []string
	BodyLimitMB int
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnvInt("SERVER_PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		CORSOrigins: getEnvStringSlice("CORS_ORIGINS", []string{"http://localhost:8080"}),
		BodyLimitMB: getEnvInt("BODY_LIMIT_MB", 10),
	}
}

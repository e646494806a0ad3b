package config

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        string
	CORSOrigins string
	BodyLimit   int
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		BodyLimit:   getEnvInt("BODY_LIMIT_BYTES", 1*1024*1024),
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects the durable store implementation.
const (
	BackendMongo = "mongo"
	BackendFile  = "file"
)

type Config struct {
	Backend  string
	MongoURI string
	MongoDB  string
	DataDir  string
	Port     string
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	// Only load .env when present; deployed environments pass real
	// environment variables instead.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("error loading .env file:", err)
		}
	}

	return &Config{
		Backend:  getEnv("STORE_BACKEND", BackendMongo),
		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "commerce"),
		DataDir:  getEnv("DATA_DIR", "data"),
		Port:     getEnv("PORT", "8080"),
		CacheTTL: getDuration("CACHE_TTL_SECONDS", 120),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallbackSeconds int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallbackSeconds) * time.Second
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APP_PORT      string
	DB_BACKEND    string
	MONGO_URI     string
	MONGO_DB      string
	DB_HOST       string
	DB_PORT       string
	DB_USER       string
	DB_PASSWORD   string
	DB_NAME       string
	ES_URL        string
	ES_USER       string
	ES_PASSWORD   string
	KAFKA_ADDRESS string
	LLM_WS_URL    string
	JWT_SECRET    string
	ACCESS_TTL    time.Duration
	REFRESH_TTL   time.Duration
	LOG_LEVEL     string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		APP_PORT:      getDefault("APP_PORT", "8080"),
		DB_BACKEND:    getDefault("DB_BACKEND", "mongo"),
		MONGO_URI:     getDefault("MONGO_URI", "mongodb://localhost:27017"),
		MONGO_DB:      getDefault("MONGO_DB", "deepchat"),
		DB_HOST:       os.Getenv("DB_HOST"),
		DB_PORT:       os.Getenv("DB_PORT"),
		DB_USER:       os.Getenv("DB_USER"),
		DB_PASSWORD:   os.Getenv("DB_PASSWORD"),
		DB_NAME:       os.Getenv("DB_NAME"),
		ES_URL:        os.Getenv("ES_URL"),
		ES_USER:       os.Getenv("ES_USER"),
		ES_PASSWORD:   os.Getenv("ES_PASSWORD"),
		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		LLM_WS_URL:    os.Getenv("LLM_WS_URL"),
		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		ACCESS_TTL:    minutes("ACCESS_TTL_MINUTES", 30),
		REFRESH_TTL:   days("REFRESH_TTL_DAYS", 7),
		LOG_LEVEL:     getDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func minutes(key string, def int) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return time.Duration(v) * time.Minute
	}
	return time.Duration(def) * time.Minute
}

func days(key string, def int) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return time.Duration(v) * 24 * time.Hour
	}
	return time.Duration(def) * 24 * time.Hour
}

package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env if present. Real deployments set the variables directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
}

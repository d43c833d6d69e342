package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/timex"
	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "TASKLIST_"

// dotEnvFile is loaded into the process environment when present. Variables
// already set in the environment win over the file.
var dotEnvFile = ".env"

func loadDotEnv() {
	if _, err := os.Stat(dotEnvFile); err != nil {
		return
	}
	if err := godotenv.Load(dotEnvFile); err != nil {
		panic(fmt.Errorf("loading %s: %w", dotEnvFile, err))
	}
}

// parseEnv overlays TASKLIST_* variables onto config.
//
//	TASKLIST_HTTP_ADDR               string
//	TASKLIST_DATABASE_DSN            string
//	TASKLIST_SECRET_KEY              string
//	TASKLIST_ACCESS_TOKEN_TTL        duration ("15m")
//	TASKLIST_REFRESH_TOKEN_TTL       duration ("240h")
//	TASKLIST_REFRESH_TOKEN_BYTES     int
//	TASKLIST_BCRYPT_COST             int
//	TASKLIST_STORE_TIMEOUT           duration
//	TASKLIST_SESSION_SWEEP_INTERVAL  duration
//	TASKLIST_CORS_ALLOWED_ORIGINS    string
//	TASKLIST_LOG_LEVEL               string
func parseEnv(config *Config) {
	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	envInt("REFRESH_TOKEN_BYTES", &config.RefreshTokenBytes)
	envInt("BCRYPT_COST", &config.BcryptCost)
	envDuration("STORE_TIMEOUT", &config.StoreTimeout)
	envDuration("SESSION_SWEEP_INTERVAL", &config.SessionSweepInterval)
	envString("CORS_ALLOWED_ORIGINS", &config.CORSAllowedOrigins)
	envString("LOG_LEVEL", &config.LogLevel)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = n
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return
	}
	d, err := timex.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = d
}

package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable; nothing in the application
// reads configuration from package-level constants. The progression
// tunables default to the values the product shipped with, so only
// the infrastructure settings are mandatory.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	DBMaxOpenConns       int // connection pool ceiling
	DBMaxIdleConns       int // idle connections kept around
	DBConnMaxLifetimeMin int // minutes before a pooled connection is recycled

	AWSRegion    string // region for the secret store
	DBSecretName string // logical name of the DB credentials secret
	MageSecret   string // logical name of the mage API key secret (empty disables the mage)

	JWTSecret string // secret used to verify provider-issued JWTs (empty disables auth)

	XPDeltaMin       int // lower bound of the experience draw per completion
	XPDeltaMax       int // upper bound of the experience draw per completion
	XPLimitIncrement int // xp_limit growth on every level-up
	LevelCap         int // maximum reachable level
	MaxRewardID      int // highest assignable reward tier
	SearchPageSize   int // missions per search result page

	SweepIntervalMin int // minutes between expiration sweep runs
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBHost: must("DB_HOST"),
		DBPort: envDefault("DB_PORT", "3306"),
		DBName: must("DB_NAME"),

		DBMaxOpenConns:       intDefault("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       intDefault("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: intDefault("DB_CONN_MAX_LIFETIME_MIN", 30),

		AWSRegion:    envDefault("AWS_REGION", "us-east-2"),
		DBSecretName: must("DB_SECRET_NAME"),
		MageSecret:   os.Getenv("MAGE_SECRET_NAME"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		XPDeltaMin:       intDefault("XP_DELTA_MIN", 10),
		XPDeltaMax:       intDefault("XP_DELTA_MAX", 35),
		XPLimitIncrement: intDefault("XP_LIMIT_INCREMENT", 10),
		LevelCap:         intDefault("LEVEL_CAP", 50),
		MaxRewardID:      intDefault("MAX_REWARD_ID", 11),
		SearchPageSize:   intDefault("SEARCH_PAGE_SIZE", 6),

		SweepIntervalMin: intDefault("SWEEP_INTERVAL_MIN", 60),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envDefault returns the variable's value, or def when unset.
func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intDefault returns the variable parsed as an int, or def when
// unset. An unparseable value is a configuration mistake and fatal.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

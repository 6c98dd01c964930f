// Package database opens the MySQL connection pool shared by every
// repository.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Config carries everything needed to build the pool. Credentials
// come from the secret store, the rest from application config; zero
// pool values fall back to defaults sized for a single instance.
type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	return c
}

// dsn renders the driver connection string. parseTime maps DATETIME
// columns onto time.Time and loc=UTC keeps both sides on one clock;
// DATE columns are formatted to strings in SQL instead.
func (c Config) dsn() string {
	auth := c.User
	if c.Password != "" {
		auth = c.User + ":" + c.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.Host, c.Port, c.Name)
}

// Open connects to MySQL, applies the pool settings and verifies the
// connection with a short ping before handing the pool out.
func Open(cfg Config) (*sql.DB, error) {
	cfg = cfg.withDefaults()

	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

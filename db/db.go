package db

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/prem22k/c3-backend/logger"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Open connects to PostgreSQL through lib/pq, tunes the pool and pings.
func Open(connStr string) (*sql.DB, error) {
	logger.Log.Info("[db] Attempting to open database connection...")

	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB connection string: %w", err)
	}
	q := u.Query()
	q.Set("binary_parameters", "no")
	u.RawQuery = q.Encode()

	conn, err := sql.Open("postgres", u.String())
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[db] Error opening database: %v", err))
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	logger.Log.Info("[db] Pinging database to verify connection...")
	if err = conn.Ping(); err != nil {
		conn.Close()
		logger.Log.Error(fmt.Sprintf("[db] Failed to ping database: %v", err))
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	logger.Log.Info("[db] ✅ Successfully connected to PostgreSQL!")
	return conn, nil
}

package database

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
    "time"

    _ "github.com/lib/pq"
    config "github.com/tbeaudouin05/stripe-billing/api/config"
)

var db *sql.DB

// Initialize opens the Postgres database named by config.AppConfig.
func Initialize() error {
    if config.AppConfig == nil {
        return errors.New("config not loaded")
    }
    return Open(context.Background(), config.AppConfig.DatabaseURL)
}

// Open connects to dsn, verifies the connection and makes it the package database.
func Open(ctx context.Context, dsn string) error {
    conn, err := sql.Open("postgres", withDisablePreparedStatements(dsn))
    if err != nil {
        return fmt.Errorf("failed to open database: %w", err)
    }
    pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    if err := conn.PingContext(pingCtx); err != nil {
        _ = conn.Close()
        return fmt.Errorf("failed to ping database: %w", err)
    }

    // Use a single connection to avoid prepared statement issues with PgBouncer in tests.
    conn.SetMaxOpenConns(1)
    conn.SetMaxIdleConns(1)
    conn.SetConnMaxLifetime(5 * time.Minute)

    db = conn
    return nil
}

// withDisablePreparedStatements appends disable_prepared_statements=true and binary_parameters=yes to the DSN if not present.
// This nudges lib/pq to avoid server-side prepared statements and binary mode, which can break with PgBouncer transaction pooling.
func withDisablePreparedStatements(dsn string) string {
    lower := strings.ToLower(dsn)
    if strings.Contains(lower, "disable_prepared_statements=") || strings.Contains(lower, "prefer_simple_protocol=") {
        return dsn
    }
    sep := "?"
    if strings.Contains(dsn, "?") {
        sep = "&"
    }
    extras := []string{"disable_prepared_statements=true"}
    if !strings.Contains(lower, "binary_parameters=") {
        extras = append(extras, "binary_parameters=yes")
    }
    return dsn + sep + strings.Join(extras, "&")
}

// GetDB returns the database connection
func GetDB() *sql.DB {
    return db
}

// Close closes the package database if it was opened.
func Close() error {
    if db == nil {
        return nil
    }
    err := db.Close()
    db = nil
    return err
}

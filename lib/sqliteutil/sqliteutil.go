package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config picks where a database lives. A non-empty Url (libsql://, https://,
// wss://) points at a remote libsql server, otherwise File is a local sqlite
// file (or `:memory:`).
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c Config) open() (*sql.DB, error) {
	if c.Url != "" {
		dsn := c.Url
		if c.AuthToken != "" {
			parsed, err := url.Parse(c.Url)
			if err != nil {
				return nil, fmt.Errorf("parse libsql url: %w", err)
			}
			query := parsed.Query()
			query.Set("authToken", c.AuthToken)
			parsed.RawQuery = query.Encode()
			dsn = parsed.String()
		}
		return sql.Open("libsql", dsn)
	}

	if c.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if c.File != ":memory:" && !strings.HasPrefix(c.File, "file:") {
		err := os.MkdirAll(filepath.Dir(c.File), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", c.File)
	if err != nil {
		return nil, err
	}
	// sqlite only tolerates one writer, and `:memory:` databases are per
	// connection, so everything goes through a single connection.
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database described by the config and applies the given
// schema to it. The schema must be idempotent (CREATE ... IF NOT EXISTS).
func OpenDB(schema string, config Config) (*sql.DB, error) {
	db, err := config.open()
	if err != nil {
		return nil, err
	}
	if schema == "" {
		return db, nil
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

type Config struct {
	Host         string        `envconfig:"DB_HOST" default:"localhost"`
	Port         string        `envconfig:"DB_PORT" default:"5432"`
	User         string        `envconfig:"DB_USER" default:"postgres"`
	Password     string        `envconfig:"DB_PASSWORD"`
	DBName       string        `envconfig:"DB_NAME" default:"library"`
	SSLMode      string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	PingTimeout  time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
}

// NewPostgresDB opens the shared connection pool and applies the embedded
// goose migrations. The handle is passed explicitly to each component; there
// is no ambient global.
func NewPostgresDB(ctx context.Context, cfg *Config, migrations fs.FS) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User, cfg.Password, net.JoinHostPort(cfg.Host, cfg.Port), cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlx.Open")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, errors.Wrap(err, "db ping")
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, errors.Wrap(err, "goose dialect")
	}
	if err := goose.Up(db.DB, "."); err != nil {
		return nil, errors.Wrap(err, "goose up")
	}

	return db, nil
}

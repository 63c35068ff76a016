package db

import (
	"context"
	"embed"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationTableName = "schema_migrations"

// Migrate applies every pending migration embedded in the binary.
func Migrate(ctx context.Context, pool *pgxpool.Pool, l *zap.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&zapGooseLogger{l: l.Sugar().With(zap.String("component", "migrations"))})
	goose.SetTableName(migrationTableName)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set migration dialect")
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}

type zapGooseLogger struct {
	l *zap.SugaredLogger
}

func (g *zapGooseLogger) Printf(format string, v ...interface{}) {
	g.l.Infof(format, v...)
}

func (g *zapGooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Fatalf(format, v...)
}

// Package db holds the MySQL schema and the migration runner used by the
// migrate command.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Statements returns every migration statement in the order it is applied.
func Statements() []string {
	out := make([]string, 0, len(schema)+len(alterations)+len(backfills))
	out = append(out, schema...)
	out = append(out, alterations...)
	return append(out, backfills...)
}

// Migrate applies the schema, alterations and backfills. Statements that were
// already applied are skipped.
func Migrate(ctx context.Context, conn *sql.DB, log *zap.Logger) error {
	applied := 0
	for _, q := range Statements() {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			if alreadyApplied(err) {
				log.Debug("skipping applied migration", zap.String("query", head(q)), zap.Error(err))
				continue
			}
			return fmt.Errorf("migrate %q: %w", head(q), err)
		}
		applied++
	}
	log.Info("migration completed", zap.Int("executed", applied))
	return nil
}

func alreadyApplied(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate column name") || strings.Contains(msg, "already exists")
}

func head(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > 60 {
		return q[:60]
	}
	return q
}

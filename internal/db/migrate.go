package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema files in lexical order. Every file is idempotent.
func (s *DBService) Migrate(ctx context.Context) error {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("could not list migrations: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		script, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("could not read migration %s: %w", name, err)
		}
		if _, err := s.DB.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("could not apply migration %s: %w", name, err)
		}
		logrus.WithField("migration", name).Debug("Applied migration")
	}
	return nil
}

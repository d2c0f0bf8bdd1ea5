package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// RunMigrations applies the file migrations in dir. A database that already
// has the layouts table but no migrate metadata is baselined to the latest
// version first.
func RunMigrations(databaseURL, dir string, log *zap.Logger) error {
	if databaseURL == "" {
		return errors.New("database URL is empty")
	}
	log = log.Named("migrate")

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: "schema_migrations_migrate"})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if tableExists(sqlDB, "table_layouts") && !tableExists(sqlDB, "schema_migrations_migrate") {
		if latest := LatestVersion(dir); latest > 0 {
			log.Info("baselining existing schema", zap.Int64("version", latest))
			if err := m.Force(int(latest)); err != nil {
				log.Warn("baseline failed", zap.Int64("version", latest), zap.Error(err))
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	log.Info("migrations applied")
	return nil
}

func tableExists(db *sql.DB, name string) bool {
	var ok bool
	row := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", name)
	return row.Scan(&ok) == nil && ok
}

var versionPrefix = regexp.MustCompile(`^0*([0-9]+)_`)

// LatestVersion returns the highest numeric prefix (000001_...) of the
// migration files in dir, or 0.
func LatestVersion(dir string) int64 {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var latest int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := versionPrefix.FindStringSubmatch(f.Name())
		if len(m) < 2 {
			continue
		}
		if v, _ := strconv.ParseInt(m[1], 10, 64); v > latest {
			latest = v
		}
	}
	return latest
}

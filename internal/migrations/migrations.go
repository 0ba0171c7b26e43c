package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var embedded embed.FS

type migration struct {
	Name string
	Path string
}

// Apply runs the bundled migrations that have not been recorded yet.
func Apply(db *sqlx.DB) ([]string, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}
	return ApplyFS(db, sub)
}

// ApplyDir runs migrations from a directory on disk instead of the bundled set.
func ApplyDir(db *sqlx.DB, dir string) ([]string, error) {
	return ApplyFS(db, os.DirFS(dir))
}

func ApplyFS(db *sqlx.DB, fsys fs.FS) ([]string, error) {
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	migs, err := listMigrations(fsys)
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(db)
	if err != nil {
		return nil, err
	}
	ran := []string{}
	for _, mig := range migs {
		version := parseVersion(mig.Name)
		if applied.names[mig.Name] || (version != "" && applied.versions[version]) {
			continue
		}
		if err := applyMigration(db, fsys, mig); err != nil {
			return ran, err
		}
		ran = append(ran, mig.Name)
	}
	return ran, nil
}

func ensureTable(db *sqlx.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  id SERIAL PRIMARY KEY,
  version TEXT NULL,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_schema_migrations_name ON schema_migrations(name)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_schema_migrations_version ON schema_migrations(version) WHERE version IS NOT NULL`)
	return err
}

func listMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	migs := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		migs = append(migs, migration{
			Name: name,
			Path: path.Join(".", name),
		})
	}
	sortMigrations(migs)
	return migs, nil
}

func sortMigrations(migs []migration) {
	sort.Slice(migs, func(i, j int) bool {
		iVersion, iOk := parseVersionNumber(migs[i].Name)
		jVersion, jOk := parseVersionNumber(migs[j].Name)
		switch {
		case iOk && jOk && iVersion != jVersion:
			return iVersion < jVersion
		case iOk != jOk:
			return iOk
		default:
			return migs[i].Name < migs[j].Name
		}
	})
}

type appliedSet struct {
	names    map[string]bool
	versions map[string]bool
}

func appliedMigrations(db *sqlx.DB) (appliedSet, error) {
	rows := []struct {
		Name    string  `db:"name"`
		Version *string `db:"version"`
	}{}
	if err := db.Select(&rows, `SELECT name, version FROM schema_migrations`); err != nil {
		return appliedSet{}, err
	}
	set := appliedSet{names: map[string]bool{}, versions: map[string]bool{}}
	for _, row := range rows {
		set.names[row.Name] = true
		if row.Version != nil {
			set.versions[*row.Version] = true
		}
	}
	return set, nil
}

func applyMigration(db *sqlx.DB, fsys fs.FS, mig migration) error {
	content, err := fs.ReadFile(fsys, mig.Path)
	if err != nil {
		return err
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(content)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply %s: %w", mig.Name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, nullIfEmpty(parseVersion(mig.Name)), mig.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func parseVersion(name string) string {
	if !strings.HasPrefix(name, "V") {
		return ""
	}
	parts := strings.SplitN(name[1:], "__", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

func parseVersionNumber(name string) (int, bool) {
	raw := parseVersion(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func nullIfEmpty(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

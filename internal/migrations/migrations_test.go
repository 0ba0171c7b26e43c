package migrations

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"V10__later.sql":   {Data: []byte("SELECT 1;")},
		"V2__second.sql":   {Data: []byte("SELECT 1;")},
		"V1__init.sql":     {Data: []byte("SELECT 1;")},
		"adhoc_fix.sql":    {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("ignored")},
		"nested/V3__x.sql": {Data: []byte("SELECT 1;")},
	}

	migs, err := listMigrations(fsys)
	require.NoError(t, err)

	names := make([]string, 0, len(migs))
	for _, mig := range migs {
		names = append(names, mig.Name)
	}
	assert.Equal(t, []string{"V1__init.sql", "V2__second.sql", "V10__later.sql", "adhoc_fix.sql"}, names)
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, "1", parseVersion("V1__init.sql"))
	assert.Equal(t, "", parseVersion("V1.sql"))
	assert.Equal(t, "", parseVersion("init.sql"))

	n, ok := parseVersionNumber("V12__news.sql")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = parseVersionNumber("Vx__news.sql")
	assert.False(t, ok)
}

func TestBundledMigrationsPresent(t *testing.T) {
	sub, err := fs.Sub(embedded, "sql")
	require.NoError(t, err)
	migs, err := listMigrations(sub)
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, "V1__init.sql", migs[0].Name)

	content, err := fs.ReadFile(sub, migs[0].Path)
	require.NoError(t, err)
	for _, table := range []string{"admins", "news_items", "events", "posters", "qr_codes"} {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

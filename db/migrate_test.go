package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestInitialMigrationDefinesResultConstraint(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/0001_init.up.sql")
	require.NoError(t, err)

	sql := string(data)
	assert.Contains(t, sql, "matches_result_iff_completed")
	assert.Contains(t, sql, "UNIQUE (user_id, match_id)")
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	err := MigrateDown("postgres://pool@localhost:5432/pool", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be positive")
}

func TestMigrateUp_UnknownDatabaseScheme(t *testing.T) {
	_, err := MigrateUp("nosuchdb://localhost/pool")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrator")
}

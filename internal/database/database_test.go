package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
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

func TestInitialSchemaEnforcesAnswerUniqueness(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/0001_init.up.sql")
	require.NoError(t, err)
	sql := string(data)

	assert.Contains(t, sql, "UNIQUE(session_id, question_id)")
	assert.Contains(t, sql, "ON subjects(lower(name))")
	assert.Contains(t, sql, "ON topics(subject_id, lower(name))")
}

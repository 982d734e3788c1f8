package db

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userColumns = "id, email, password_hash, name, lastname, date_of_birth, profession, avatar_key, created_at, updated_at"

var queryHeader = regexp.MustCompile(`(?m)^-- name: (\w+) :(one|many|exec)$`)

// namedQueries splits a queries file into name -> SQL text, header line included.
func namedQueries(t *testing.T, path string) map[string]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	src := string(data)
	locs := queryHeader.FindAllStringSubmatchIndex(src, -1)
	require.NotEmpty(t, locs)

	queries := make(map[string]string, len(locs))
	for i, loc := range locs {
		end := len(src)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		queries[src[loc[2]:loc[3]]] = src[loc[0]:end]
	}
	return queries
}

func normalizeSQL(q string) string {
	q = strings.ReplaceAll(q, "RETURNING *", "RETURNING "+userColumns)
	q = strings.ReplaceAll(q, "SELECT *", "SELECT "+userColumns)
	q = strings.TrimSpace(q)
	q = strings.TrimSuffix(q, ";")
	return strings.Join(strings.Fields(q), " ")
}

func TestQueriesMatchSource(t *testing.T) {
	compiled := map[string]string{
		"CreateUser":         createUser,
		"GetUserByID":        getUserByID,
		"GetUserByEmail":     getUserByEmail,
		"UpdateUserProfile":  updateUserProfile,
		"UpdateUserPassword": updateUserPassword,
		"UpdateUserAvatar":   updateUserAvatar,
	}

	source := namedQueries(t, "../queries/users.sql")
	assert.Len(t, source, len(compiled), "every named query needs a Go counterpart")

	for name, sql := range source {
		got, ok := compiled[name]
		if !assert.True(t, ok, "no Go constant for query %s", name) {
			continue
		}
		assert.Equal(t, normalizeSQL(sql), normalizeSQL(got), name)
	}
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, body TEXT, position INTEGER)").Error)

	columns, err := GetTableColumns(db, "test_items")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["body"])
	assert.Equal(t, "integer", colMap["position"])

	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestRequireColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE sections (id INTEGER PRIMARY KEY, position INTEGER)").Error)

	assert.NoError(t, RequireColumns(db, "sections", "id", "Position"))
	assert.ErrorContains(t, RequireColumns(db, "sections", "id", "title"), "missing columns title")
}

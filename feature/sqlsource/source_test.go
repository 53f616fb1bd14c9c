package sqlsource

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nodegrid/core/database"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/update"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type mockCommitter struct {
	mock.Mock
}

func (m *mockCommitter) Submit(cmd update.Command) error {
	return m.Called(cmd).Error(0)
}

func (m *mockCommitter) SubmitBatch(cmds ...update.Command) error {
	return m.Called(cmds).Error(0)
}

func (m *mockCommitter) Drain(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newCommitter() *mockCommitter {
	c := new(mockCommitter)
	c.On("Submit", mock.Anything).Return(nil)
	c.On("Drain", mock.Anything).Return(nil)
	return c
}

// openSQLite returns a private in-memory database shared by the pool's connections.
func openSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seeded(t *testing.T, name string, sections, items int) *Source {
	t.Helper()
	ctx := context.Background()
	src, err := New(ctx, openSQLite(t, name), Options{Migrate: true, Width: 40})
	require.NoError(t, err)
	require.NoError(t, src.Seed(ctx, nil, sections, items))
	return src
}

func body(t *testing.T, src *Source, idx index.Index) string {
	t.Helper()
	src.LockDataSource()
	defer src.UnlockDataSource()
	n := src.NodeForItem(idx)
	require.NotNil(t, n, "node at %s", idx)
	return n.(*node.Text).Body
}

func TestSeedAndRead(t *testing.T) {
	src := seeded(t, "seed", 3, 5)
	assert.Equal(t, index.Shape{5, 5, 5}, src.Shape())
	assert.Equal(t, "Section 2, row 4", body(t, src, index.New(2, 4)))

	// A second seed leaves existing content alone.
	require.NoError(t, src.Seed(context.Background(), nil, 1, 1))
	assert.Equal(t, index.Shape{5, 5, 5}, src.Shape())
}

func TestSeedSubmitsSections(t *testing.T) {
	ctx := context.Background()
	src, err := New(ctx, openSQLite(t, "seedcmd"), Options{Migrate: true})
	require.NoError(t, err)

	c := newCommitter()
	require.NoError(t, src.Seed(ctx, c, 2, 3))
	c.AssertCalled(t, "Submit", update.NewInsertSections(index.Sections(0, 1)))
	c.AssertNumberOfCalls(t, "Drain", 1)
}

func TestItemMutations(t *testing.T) {
	ctx := context.Background()
	src := seeded(t, "items", 2, 3)
	c := newCommitter()

	require.NoError(t, src.InsertItem(ctx, c, index.New(0, 1), "inserted"))
	assert.Equal(t, index.Shape{4, 3}, src.Shape())
	assert.Equal(t, "inserted", body(t, src, index.New(0, 1)))
	assert.Equal(t, "Section 0, row 1", body(t, src, index.New(0, 2)))

	require.NoError(t, src.DeleteItem(ctx, c, index.New(0, 0)))
	assert.Equal(t, "inserted", body(t, src, index.New(0, 0)))

	require.NoError(t, src.UpdateItem(ctx, c, index.New(1, 2), "edited"))
	assert.Equal(t, "edited", body(t, src, index.New(1, 2)))

	require.NoError(t, src.AppendItems(ctx, c, 1, "x", "y"))
	assert.Equal(t, index.Shape{3, 5}, src.Shape())
	assert.Equal(t, "y", body(t, src, index.New(1, 4)))

	c.AssertCalled(t, "Submit", update.NewInsertItems(index.New(0, 1)))
	c.AssertCalled(t, "Submit", update.NewDeleteItems(index.New(0, 0)))
	c.AssertCalled(t, "Submit", update.NewReloadItems(index.New(1, 2)))
	c.AssertCalled(t, "Submit", update.NewInsertItems(index.New(1, 3), index.New(1, 4)))
	c.AssertNumberOfCalls(t, "Drain", 4)
}

func TestSectionMutations(t *testing.T) {
	ctx := context.Background()
	src := seeded(t, "sections", 2, 2)
	c := newCommitter()

	require.NoError(t, src.InsertSection(ctx, c, 1, "middle"))
	assert.Equal(t, index.Shape{2, 0, 2}, src.Shape())
	require.NoError(t, src.AppendItems(ctx, c, 1, "m0"))
	assert.Equal(t, "m0", body(t, src, index.New(1, 0)))
	assert.Equal(t, "Section 1, row 0", body(t, src, index.New(2, 0)))

	require.NoError(t, src.DeleteSection(ctx, c, 0))
	assert.Equal(t, index.Shape{1, 2}, src.Shape())
	assert.Equal(t, "m0", body(t, src, index.New(0, 0)))

	// The cache matches what a fresh load sees.
	require.NoError(t, src.Refresh(ctx, c))
	assert.Equal(t, index.Shape{1, 2}, src.Shape())
	c.AssertCalled(t, "Submit", update.NewReloadAll())
}

func TestMutationsRejectOutOfRange(t *testing.T) {
	ctx := context.Background()
	src := seeded(t, "reject", 1, 2)
	c := newCommitter()

	assert.ErrorIs(t, src.InsertItem(ctx, c, index.New(0, 3), "x"), index.ErrOutOfRange)
	assert.ErrorIs(t, src.DeleteItem(ctx, c, index.New(1, 0)), index.ErrOutOfRange)
	assert.ErrorIs(t, src.UpdateItem(ctx, c, index.New(0, 2), "x"), index.ErrOutOfRange)
	assert.ErrorIs(t, src.InsertSection(ctx, c, 5, "x"), index.ErrOutOfRange)
	c.AssertNotCalled(t, "Submit", mock.Anything)
	c.AssertNotCalled(t, "Drain", mock.Anything)
}

func TestNewChecksSchema(t *testing.T) {
	_, err := New(context.Background(), openSQLite(t, "noschema"), Options{})
	assert.ErrorContains(t, err, "missing columns")
}

func TestMySQLDialect(t *testing.T) {
	sqlDB, smock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	smock.MatchExpectationsInOrder(false)

	db, err := database.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), time.Second)
	require.NoError(t, err)

	smock.ExpectQuery("SHOW COLUMNS FROM `sections`").
		WillReturnRows(sqlmock.NewRows([]string{"field", "type"}).
			AddRow("id", "bigint unsigned").AddRow("position", "bigint").AddRow("title", "varchar(255)"))
	smock.ExpectQuery("SHOW COLUMNS FROM `items`").
		WillReturnRows(sqlmock.NewRows([]string{"field", "type"}).
			AddRow("id", "bigint unsigned").AddRow("section_id", "bigint unsigned").
			AddRow("position", "bigint").AddRow("body", "text"))
	smock.ExpectQuery("SELECT \\* FROM `sections` ORDER BY position").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position", "title"}).
			AddRow(7, 0, "a").AddRow(9, 1, "b"))
	smock.ExpectQuery("SELECT count\\(\\*\\) FROM `items` WHERE section_id = \\?").
		WithArgs(7).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	smock.ExpectQuery("SELECT count\\(\\*\\) FROM `items` WHERE section_id = \\?").
		WithArgs(9).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	src, err := New(context.Background(), db, Options{})
	require.NoError(t, err)
	assert.Equal(t, index.Shape{3, 1}, src.Shape())

	smock.ExpectQuery("SELECT \\* FROM `items` WHERE section_id = \\? AND position = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "position", "body"}).
			AddRow(42, 9, 0, "from mysql"))
	assert.Equal(t, "from mysql", body(t, src, index.New(1, 0)))

	assert.NoError(t, smock.ExpectationsWereMet())
}

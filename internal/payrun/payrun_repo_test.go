package payrun

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CreateWithItems is called under the service's transaction; the bridged
// repository has to execute on that *sql.Tx so the run header, items and
// failures commit or roll back as one unit.
func TestRepository_WithTx_RunsOnTheTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	bridged, ok := NewRepository(gdb).WithTx(tx).(*repository)
	assert.True(t, ok)

	pool := bridged.conn(context.Background()).Statement.ConnPool
	got, ok := pool.(*sql.Tx)
	assert.True(t, ok, "expected statements to run on *sql.Tx, got %T", pool)
	assert.Same(t, tx, got)

	plain, ok := NewRepository(gdb).(*repository)
	assert.True(t, ok)
	_, isTx := plain.conn(context.Background()).Statement.ConnPool.(*sql.Tx)
	assert.False(t, isTx)
}

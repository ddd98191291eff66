package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("scan: %w", sql.ErrNoRows)), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repository.ErrAlreadyExists)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapErr(other))
	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fk), mapErr(fk))
}

type rowsAffected int64

func (r rowsAffected) LastInsertId() (int64, error) { return 0, nil }
func (r rowsAffected) RowsAffected() (int64, error) { return int64(r), nil }

func TestExpectAffected(t *testing.T) {
	assert.NoError(t, expectAffected(rowsAffected(1)))
	assert.ErrorIs(t, expectAffected(rowsAffected(0)), repository.ErrNotFound)
}

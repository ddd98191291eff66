package data

import (
	"context"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := config.Postgres{Host: "db", Port: 5432, User: "tracker", DbName: "portfolios", Password: "secret"}

	assert.Equal(t, "host=db port=5432 user=tracker dbname=portfolios sslmode=disable password=secret", postgresDSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, postgresDSN(cfg), "sslmode=require")
}

func TestConnectPostgresStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db, err := connectPostgres(ctx, "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable", 5)

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, db)
}

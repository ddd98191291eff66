package googleDriveApi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpired(t *testing.T) {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	old, err := expired("2025-03-01T11:59:59Z", now, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, old)

	old, err = expired("2025-03-01T12:00:01Z", now, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, old)

	_, err = expired("yesterday", now, time.Hour)
	assert.Error(t, err)
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, xlsxMimeType, mimeTypeFor("portfolio_1.xlsx"))
	assert.Equal(t, "application/octet-stream", mimeTypeFor("report"))
}

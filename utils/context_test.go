package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, GetRequestIDFromCtx(context.Background()))

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", GetRequestIDFromCtx(ctx))
}

func TestUserID(t *testing.T) {
	_, ok := GetUserIDFromCtx(context.Background())
	assert.False(t, ok)

	userID, ok := GetUserIDFromCtx(WithUserID(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandOf(t *testing.T) {
	tests := map[string]string{
		"/link 1a2b3c4d":          "/link",
		"/quote@tracker_bot MSFT": "/quote",
		"/start":                  "/start",
		"hello":                   "",
		"":                        "",
	}
	for text, want := range tests {
		assert.Equal(t, want, commandOf(text), text)
	}
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "avatars/u1/a.png", "https://cdn.example.com/avatars/u1/a.png"},
		{"https://cdn.example.com/", "/avatars/u1/a.png", "https://cdn.example.com/avatars/u1/a.png"},
		{"https://cdn.example.com/bucket", "avatars/u 1/a b.png", "https://cdn.example.com/bucket/avatars/u%201/a%20b.png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key))
	}
}

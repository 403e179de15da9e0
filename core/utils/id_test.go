package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID(16)
	assert.Len(t, id, 16)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(idAlphabet, r), "unexpected rune %q", r)
	}
}

func TestGenerateLockToken_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok := GenerateLockToken()
		_, dup := seen[tok]
		assert.False(t, dup)
		seen[tok] = struct{}{}
	}
	assert.Len(t, GenerateRequestID(), 12)
}

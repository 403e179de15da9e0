package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short random identifier of the given length, used for
// request IDs and lock ownership tokens.
func GenerateID(length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		return ""
	}
	return id
}

func GenerateRequestID() string {
	return GenerateID(12)
}

func GenerateLockToken() string {
	return GenerateID(21)
}

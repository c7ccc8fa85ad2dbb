package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateNanoIDWithPrefix returns "<prefix>_<random>" with size random characters.
func GenerateNanoIDWithPrefix(prefix string, size int) string {
	id, err := gonanoid.Generate(idAlphabet, size)
	if err != nil {
		panic(err)
	}
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// GenerateToken returns an opaque token drawn from crypto/rand.
func GenerateToken(size int) (string, error) {
	return gonanoid.Generate(tokenAlphabet, size)
}

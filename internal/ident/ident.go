// internal/ident/ident.go
package ident

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	// CodeLength is the length of room codes and player ids.
	CodeLength = 7
	codeChars  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewRoomCode returns a short random room code such as "k3x9q0a".
func NewRoomCode() string {
	return randomCode()
}

// NewPlayerID returns a short random opaque player id.
func NewPlayerID() string {
	return randomCode()
}

// NewCardID returns a random UUID string. Card ids must be unique across a whole deck.
func NewCardID() string {
	return uuid.NewString()
}

// UniqueRoomCode generates room codes until exists reports the code is free.
func UniqueRoomCode(exists func(code string) bool) string {
	for {
		code := NewRoomCode()
		if !exists(code) {
			return code
		}
	}
}

func randomCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = codeChars[rand.IntN(len(codeChars))]
			continue
		}
		code[i] = codeChars[n.Int64()]
	}
	return string(code)
}

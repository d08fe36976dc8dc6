package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a prefixed nanoid, e.g. "sec_x7k2m9q4w1e8r5t0u3y6".
// Prefixes keep node types distinguishable in logs and foreign keys.
func NewID(prefix string) string {
	id, err := gonanoid.Generate(idAlphabet, 20)
	if err != nil {
		// gonanoid only errors on invalid alphabet/size arguments.
		panic(err)
	}
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// Package utils provides small shared helpers for the trading engine.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateID generates a unique ID with optional prefix.
func GenerateID(prefix string) string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	id := hex.EncodeToString(bytes)
	if prefix != "" {
		return fmt.Sprintf("%s_%s", prefix, id)
	}
	return id
}

// GenerateTradeID generates a unique trade ID.
func GenerateTradeID() string {
	return GenerateID("trd")
}

// GenerateSignalID generates a unique signal ID.
func GenerateSignalID() string {
	return GenerateID("sig")
}

// Clamp01 clamps a confidence score to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

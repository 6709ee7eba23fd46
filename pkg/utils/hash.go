package utils

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashContent produces a stable cache key for any JSON-encodable value.
// Struct field order is fixed at compile time, so identical values always
// hash identically.
func HashContent(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode content for hashing: %w", err)
	}
	return HashString(string(data)), nil
}

package pipeline

import (
	"crypto/sha256"
	"fmt"
	"os"
)

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// FileHashHex is ContentHashHex of the file at path.
func FileHashHex(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ContentHashHex(data), nil
}

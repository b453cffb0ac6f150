package utils

import (
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// ContentDigest returns the BLAKE2b-256 digest of data as a hex string.
func ContentDigest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileDigest returns the BLAKE2b-256 digest of the file at path.
func FileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for digest: %w", path, err)
	}
	return ContentDigest(data), nil
}

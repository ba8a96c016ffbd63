package utils

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest returns the lowercase hex BLAKE3 digest of data
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileDigest returns the BLAKE3 digest and size of a file
func FileDigest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := blake3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/tilework-tech/nori/internal/messages"
)

// HashFile returns the lowercase hex SHA-256 of the file's bytes. The hash is
// purely content-based; modification time and size never factor in, so
// metadata-only changes cannot produce a false positive.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf(messages.ManifestFailedHashFmt, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf(messages.ManifestFailedHashFmt, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the lowercase hex SHA-256 of data. It is the in-memory
// counterpart of HashFile and produces identical hashes for identical bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

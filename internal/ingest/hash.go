package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultMaxItemSizeMB is the size limit used when the setting is missing
// or invalid.
const DefaultMaxItemSizeMB = 10

// ComputeHash returns the lowercase hex SHA-256 digest of data.
// It is the dedup key for stored items.
func ComputeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ExceedsSizeLimit reports whether n bytes is over a limit of limitMB
// mebibytes. A size exactly at the limit is accepted.
func ExceedsSizeLimit(n int64, limitMB int) bool {
	return n > int64(limitMB)*1024*1024
}

package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateEntryID creates a unique ID for a history entry based on timestamp
// and source text
// Format: epochMillis_md5(text)[:8]
func GenerateEntryID(text string) string {
	now := time.Now()
	epochMillis := now.UnixNano() / 1000000

	hash := md5.Sum([]byte(text))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}

package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/jonathan/dataqa/internal/datasource"
)

// DigestLength is the number of hex characters kept from the hash
const DigestLength = 8

// ComputeDigest fingerprints a source from its configuration alone.
// encoding/json sorts map keys, so equal configurations serialize, and hash,
// identically in every process.
func ComputeDigest(source datasource.DataSource) (string, error) {
	config, err := json.Marshal(source.ToDict())
	if err != nil {
		return "", err
	}
	return digestBytes(config), nil
}

func digestBytes(config []byte) string {
	sum := sha256.Sum256(config)
	return hex.EncodeToString(sum[:])[:DigestLength]
}

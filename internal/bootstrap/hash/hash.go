package hash

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// FileHash returns the hex encoded sha256 of the file content at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReaderHash(f)
}

// ReaderHash returns the hex encoded sha256 of everything read from r.
func ReaderHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BytesHash is ReaderHash for in-memory content.
func BytesHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CalculateResourceHash computes a deterministic fingerprint of any JSON
// serializable value. Server assigned fields are removed at every level first, so
// a record read back from the platform hashes the same as the one that was written.
func CalculateResourceHash(resource any) (string, error) {
	jsonBytes, err := json.Marshal(resource)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resource: %w", err)
	}

	var data any
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal for filtering: %w", err)
	}

	// json.Marshal sorts map keys, which makes the output canonical.
	canonicalJSON, err := json.Marshal(filterForHashing(data))
	if err != nil {
		return "", fmt.Errorf("failed to marshal filtered data: %w", err)
	}

	sum := sha256.Sum256(canonicalJSON)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func filterForHashing(value any) any {
	switch v := value.(type) {
	case map[string]any:
		filtered := make(map[string]any, len(v))
		for key, nested := range v {
			if IsSystemField(key) {
				continue
			}
			filtered[key] = filterForHashing(nested)
		}
		return filtered
	case []any:
		filtered := make([]any, 0, len(v))
		for _, item := range v {
			filtered = append(filtered, filterForHashing(item))
		}
		return filtered
	default:
		return v
	}
}

var systemFields = map[string]bool{
	"id":              true,
	"createdTime":     true,
	"lastUpdatedTime": true,
	"parentId":        true,
	"rootId":          true,
	"dataSetId":       true,
}

// IsSystemField reports whether a JSON field is assigned by the platform rather
// than declared by the user.
func IsSystemField(fieldName string) bool {
	return systemFields[fieldName]
}

package vault

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BucketForUser derives the caller's blob-store bucket from their phone
// number. Same input, same output: the derivation is deterministic so the
// bucket can be recomputed from the user record alone.
func BucketForUser(phoneNumber string) string {
	return SanitizeBucketName("user-" + phoneNumber)
}

// SanitizeBucketName transforms name into a compliant bucket name:
// 3-63 characters, lowercase letters, digits and hyphens only, starting and
// ending with a letter or digit.
func SanitizeBucketName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "user"
	}
	if len(s) < 3 {
		s += "-bucket"
	}
	if len(s) > 63 {
		s = s[:59] + "-bkt"
	}
	return s
}

// ObjectKeyFor derives the stored object key for a content id from the
// original filename's extension. Files without an extension are keyed by
// the bare id.
func ObjectKeyFor(id uuid.UUID, fileName string) string {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if ext == "" {
		return id.String()
	}
	return id.String() + "." + strings.ToLower(ext)
}

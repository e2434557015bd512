package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localvault/localvault/pkg/vault"
)

func TestIsAllowedMimeType(t *testing.T) {
	allowed := []string{
		"image/png",
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"application/zip",
		"application/octet-stream",
	}
	for _, mt := range allowed {
		assert.True(t, vault.IsAllowedMimeType(mt), mt)
	}

	denied := []string{
		"application/x-nonsense",
		"video/mp4",
		"application/x-msdownload",
		"",
		"IMAGE/PNG", // matching is case-sensitive on the normalized type
	}
	for _, mt := range denied {
		assert.False(t, vault.IsAllowedMimeType(mt), mt)
	}
}

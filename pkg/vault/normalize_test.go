package vault_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localvault/localvault/pkg/vault"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		fallback string
		want     string
	}{
		{"plain title kept", "Quarterly Report", "Untitled", "Quarterly Report"},
		{"hostile characters stripped", `plan<v2>:draft/final?`, "Untitled", "planv2draftfinal"},
		{"whitespace collapsed", "  a \t lot\n of   space ", "Untitled", "a lot of space"},
		{"empty uses fallback", "", "Text Content", "Text Content"},
		{"only hostile characters uses fallback", `<>:"/\|?*`, "Untitled", "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vault.SanitizeTitle(tt.title, tt.fallback))
		})
	}
}

func TestSanitizeTitleCapsLength(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := vault.SanitizeTitle(long, "Untitled")
	assert.Len(t, got, 60)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"comma separated", "work, personal ,q3", []string{"work", "personal", "q3"}},
		{"json array", `["alpha","beta"]`, []string{"alpha", "beta"}},
		{"json with blanks dropped", `["alpha",""," beta "]`, []string{"alpha", "beta"}},
		{"malformed json becomes single tag", `["broken`, []string{`["broken`}},
		{"single value", "solo", []string{"solo"}},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vault.ParseTags(tt.raw))
		})
	}
}

package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/muesli/termenv"
)

func TestPlainStylesKeepText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewPlainStyles(&buf)

	for name, render := range map[string]func(string) string{
		"success":   styles.Success,
		"error":     styles.Error,
		"file path": styles.FilePath,
		"account":   styles.Account,
		"amount":    styles.Amount,
		"keyword":   styles.Keyword,
		"dim":       styles.Dim,
		"warning":   styles.Warning,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "Assets:Bank:Fio", render("Assets:Bank:Fio"))
		})
	}

	assert.Equal(t, "12ms", styles.Timing("12ms", true))
	assert.Equal(t, "12ms", styles.Timing("12ms", false))
	assert.Equal(t, 0, buf.Len())
}

func TestStylesWithColors(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)
	styles.Renderer().SetColorProfile(termenv.ANSI)
	styles = newStyles(styles.Renderer())

	styled := styles.Error("failed")
	assert.Contains(t, styled, "failed")
	assert.NotEqual(t, "failed", styled)
}

package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("empty path uses fallback", func(t *testing.T) {
		tpl, fromFile, err := Load("", "fallback {x}")
		require.NoError(t, err)
		assert.False(t, fromFile)
		assert.Equal(t, "fallback 1", tpl.Render(map[string]string{"x": "1"}))
	})

	t.Run("missing file uses fallback", func(t *testing.T) {
		tpl, fromFile, err := Load(filepath.Join(t.TempDir(), "missing.txt"), "fallback")
		require.NoError(t, err)
		assert.False(t, fromFile)
		assert.Equal(t, "fallback", tpl.Render(nil))
	})

	t.Run("existing file wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt.txt")
		require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))

		tpl, fromFile, err := Load(path, "fallback")
		require.NoError(t, err)
		assert.True(t, fromFile)
		assert.Equal(t, "from file", tpl.Render(nil))
	})
}

func TestTemplate_Render(t *testing.T) {
	tpl := New("Ticket:\n{ticket_text}\n\nSkills so far: {skills_list}")

	out := tpl.Render(map[string]string{
		"ticket_text": "VPN down",
		"skills_list": "- dns",
	})
	assert.Equal(t, "Ticket:\nVPN down\n\nSkills so far: - dns", out)

	// Unknown placeholders pass through untouched.
	assert.Equal(t, "keep {unknown}", New("keep {unknown}").Render(map[string]string{"other": "x"}))
}

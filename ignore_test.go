package fileutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIgnoreSet(t *testing.T) {
	set := NewIgnoreSet("Thumbs.db", "", ".DS_Store")

	assert.Equal(t, []string{".DS_Store", "Thumbs.db", "__MACOSX"}, set.Names())
	assert.True(t, set.Contains("__MACOSX"))
	assert.True(t, set.Contains("Thumbs.db"))
	assert.False(t, set.Contains("thumbs.db"), "names are case-sensitive")
	assert.False(t, set.Contains(""))
	assert.False(t, set.Contains("sub/.DS_Store"), "only bare names match")
}

func TestIgnoreSetWith(t *testing.T) {
	base, err := NewIgnoreSet("a").WithPatterns("*.tmp")
	require.NoError(t, err)

	extended := base.with([]string{"b"})

	assert.True(t, extended.Contains("a"))
	assert.True(t, extended.Contains("b"))
	assert.True(t, extended.Contains("x.tmp"))
	assert.False(t, base.Contains("b"), "base set is unchanged")
}

func TestIgnoreSetPatterns(t *testing.T) {
	set, err := NewIgnoreSet().WithPatterns("._*", "*.{log,tmp}")
	require.NoError(t, err)

	assert.True(t, set.Contains("._index.html"))
	assert.True(t, set.Contains("debug.log"))
	assert.True(t, set.Contains("x.tmp"))
	assert.False(t, set.Contains("index.html"))
	assert.Equal(t, []string{".DS_Store", "__MACOSX"}, set.Names(), "patterns are not names")

	_, err = NewIgnoreSet().WithPatterns("[")
	assert.Error(t, err)
}

func TestDefaultIgnoreNamesNotAliased(t *testing.T) {
	set := NewIgnoreSet()
	set.names["extra"] = struct{}{}

	assert.Equal(t, []string{".DS_Store", "__MACOSX"}, DefaultIgnoreNames)
	assert.False(t, NewIgnoreSet().Contains("extra"))
}

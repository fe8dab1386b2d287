package fileutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"DATA:pkg/info.json", Location{Area: Data, Path: "pkg/info.json"}},
		{"library:/bundle/", Location{Area: Library, Path: "bundle"}},
		{"pkg/info.json", Location{Area: Data, Path: "pkg/info.json"}},
		{"CACHE:", Location{Area: Cache, Path: ""}},
		{"EXTRA:a:b", Location{Area: "EXTRA", Path: "a:b"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLocation(":x")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLocation(t *testing.T) {
	root := At(Data, "")
	assert.Equal(t, "DATA:", root.String())
	assert.Equal(t, Location{Area: Data, Path: "a"}, root.Child("a"))
	assert.Equal(t, "DATA:a/b", root.Child("a").Child("b").String())
}

func TestStorePath(t *testing.T) {
	p, err := storePath("/a/b/")
	require.NoError(t, err)
	assert.Equal(t, "a/b", p)

	_, err = storePath("a/../../b")
	assert.ErrorIs(t, err, ErrNotAllowed)

	p, err = storePath("a//b/./c")
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", p)

	p, err = storePath("a/..b")
	require.NoError(t, err)
	assert.Equal(t, "a/..b", p)
}

func TestLocError(t *testing.T) {
	loc := At(Data, "x")
	inner := &PathError{Op: "copy", Path: "DATA:y", Err: ErrNotExist}

	assert.Same(t, inner, locError("copy", loc, inner))

	wrapped := locError("copytree", loc, inner)
	assert.Equal(t, "copytree DATA:x: copy DATA:y: file does not exist", wrapped.Error())
	assert.True(t, IsNotExist(wrapped))
}

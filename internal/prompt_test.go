package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskPaths_PromptsForMissing(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("'/media/card'\n  \"/photos\"  \n"), &out)

	src, dest, err := p.AskPaths("", "")
	require.NoError(t, err)
	assert.Equal(t, "/media/card", src)
	assert.Equal(t, "/photos", dest)
	assert.Contains(t, out.String(), "Enter the source folder path")
	assert.Contains(t, out.String(), "Enter the destination folder path")
}

func TestAskPaths_OnlyAsksWhatIsMissing(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("/photos"), &out)

	src, dest, err := p.AskPaths("/media/card", "")
	require.NoError(t, err)
	assert.Equal(t, "/media/card", src)
	assert.Equal(t, "/photos", dest)
	assert.NotContains(t, out.String(), "source folder")
}

func TestAskPaths_NothingMissing(t *testing.T) {
	var out bytes.Buffer
	src, dest, err := NewPrompter(strings.NewReader(""), &out).AskPaths("/a", "/b")
	require.NoError(t, err)
	assert.Equal(t, "/a", src)
	assert.Equal(t, "/b", dest)
	assert.Empty(t, out.String())
}

func TestAsk_EOF(t *testing.T) {
	_, err := NewPrompter(strings.NewReader(""), &bytes.Buffer{}).Ask("Anything")
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"/abs/path", "/abs/path"},
		{"/abs/../path/", "/path"},
		{"rel", filepath.Join(wd, "rel")},
		{"~", home},
		{"~/Pictures", filepath.Join(home, "Pictures")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolvePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = ResolvePath("")
	assert.Error(t, err)
}

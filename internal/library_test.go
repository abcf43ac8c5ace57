package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func seedLibrary(t *testing.T) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/lib/2023/06 June/a.jpg", []byte("aaaa"), time.Time{})
	writeFile(t, mem, "/lib/2023/06 June/a_1.jpg", []byte("bbbbbb"), time.Time{})
	writeFile(t, mem, "/lib/2023/06 June/copy of a.jpg", []byte("aaaa"), time.Time{})
	writeFile(t, mem, "/lib/2022/01 January/b.jpg", []byte("cc"), time.Time{})
	writeFile(t, mem, "/lib/2022/01 January/c.jpg", []byte("aaaa"), time.Time{})
	writeFile(t, mem, "/lib/loose.jpg", []byte("d"), time.Time{})
	writeFile(t, mem, "/lib/2022/13 Smarch/e.jpg", []byte("e"), time.Time{})
	writeFile(t, mem, "/lib/"+ManifestDir+"/run.jsonl", []byte("{}\n"), time.Time{})
	return mem
}

func TestSurveyLibrary(t *testing.T) {
	stats, err := SurveyLibrary(seedLibrary(t), "/lib", true)
	require.NoError(t, err)

	assert.Equal(t, 7, stats.TotalFiles)
	assert.Equal(t, int64(4+6+4+2+4+1+1), stats.TotalBytes)
	assert.Equal(t, []MonthStats{
		{Year: "2022", Month: "01 January", Files: 2, Bytes: 6},
		{Year: "2023", Month: "06 June", Files: 3, Bytes: 14},
	}, stats.Months)
	assert.ElementsMatch(t, []string{"loose.jpg", "2022/13 Smarch/e.jpg"}, stats.Stray)

	// Equal content across month folders is not a duplicate.
	require.Len(t, stats.Duplicates, 1)
	dup := stats.Duplicates[0]
	assert.Equal(t, "2023/06 June", dup.Folder)
	assert.Equal(t, []string{"a.jpg", "copy of a.jpg"}, dup.Files)
	assert.Equal(t, int64(4), dup.Size)
	assert.Equal(t, string(mustHash(t, "aaaa")), dup.Hash)
}

func TestSurveyLibrary_WithoutDuplicates(t *testing.T) {
	stats, err := SurveyLibrary(seedLibrary(t), "/lib", false)
	require.NoError(t, err)
	assert.Empty(t, stats.Duplicates)
}

func TestSurveyLibrary_MissingRoot(t *testing.T) {
	_, err := SurveyLibrary(afero.NewMemMapFs(), "/nowhere", false)
	assert.Error(t, err)
}

func TestIsMonthLabel(t *testing.T) {
	assert.True(t, isMonthLabel("01 January"))
	assert.True(t, isMonthLabel("12 December"))
	assert.False(t, isMonthLabel("1 January"))
	assert.False(t, isMonthLabel("02 January"))
	assert.False(t, isMonthLabel("13 Smarch"))
	assert.False(t, isMonthLabel("June"))
}

func TestDisplayLibraryStats(t *testing.T) {
	stats, err := SurveyLibrary(seedLibrary(t), "/lib", true)
	require.NoError(t, err)

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, DisplayLibraryStats(&buf, stats, "table"))
		out := buf.String()
		assert.Contains(t, out, "7 files")
		assert.Contains(t, out, "📅 2022")
		assert.Contains(t, out, "06 June")
		assert.Contains(t, out, "loose.jpg")
		assert.Contains(t, out, "Duplicates Found (1 sets)")
		assert.Less(t, strings.Index(out, "2022"), strings.Index(out, "2023"))
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, DisplayLibraryStats(&buf, stats, "json"))
		var back LibraryStats
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, stats.Months, back.Months)
		assert.Equal(t, stats.TotalFiles, back.TotalFiles)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, DisplayLibraryStats(&buf, stats, "yaml"))
		var back map[string]interface{}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, "/lib", back["root"])
		assert.Equal(t, 7, back["total_files"])
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, DisplayLibraryStats(&bytes.Buffer{}, stats, "xml"))
	})
}

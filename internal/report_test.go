package internal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestConsoleReporter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.RunStarted("/src", "/dest", false)
	r.Moved("a.jpg", "2023/06 June/a.jpg")
	r.Skipped("b.jpg", "2022/01 January/b.jpg")
	r.Failed("c.jpg", CategorizeError("/src/c.jpg", errors.New("permission denied")))

	sum := NewSummary()
	sum.Moved, sum.Skipped, sum.Failed, sum.MovedBytes = 1, 1, 1, 2_500_000
	r.RunFinished(sum)

	out := buf.String()
	assert.Contains(t, out, "📸 Organizing photos from: /src")
	assert.Contains(t, out, "📂 Saving into: /dest")
	assert.Contains(t, out, "✅ Moved: a.jpg → 2023/06 June/a.jpg")
	assert.Contains(t, out, "🔁 Already exists (skipped): b.jpg = 2022/01 January/b.jpg")
	assert.Contains(t, out, "❌ Failed: c.jpg: permission denied")
	assert.Contains(t, out, "📦 Moved: 1 (2.5 MB)")
	assert.Contains(t, out, "🚫 Skipped (duplicates): 1")
	assert.NotContains(t, out, "organized successfully")
	assert.NotContains(t, out, "[dry-run]")
}

func TestConsoleReporter_DryRunAndSuccess(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.RunStarted("/src", "/dest", true)
	r.Moved("a.jpg", "2023/06 June/a.jpg")
	r.RunFinished(NewSummary())

	out := buf.String()
	assert.Contains(t, out, "Dry run mode")
	assert.Contains(t, out, "✅ [dry-run] Moved: a.jpg")
	assert.Contains(t, out, "🎉 Photos organized successfully.")
}

func TestConsoleReporter_Aborted(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	sum := NewSummary()
	sum.Aborted = true
	r.RunFinished(sum)

	assert.Contains(t, buf.String(), "Run stopped early")
	assert.NotContains(t, buf.String(), "organized successfully")
}

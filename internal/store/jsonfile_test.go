package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteDoc struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestFile_ReadMissing(t *testing.T) {
	f := NewFile[noteDoc](filepath.Join(t.TempDir(), "missing.json"))
	doc, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, noteDoc{}, doc)
}

func TestFile_WriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	f := NewFile[noteDoc](path)

	require.NoError(t, f.Write(noteDoc{Title: "hello", Tags: []string{"a", "b"}}))

	doc, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Title)
	assert.Equal(t, []string{"a", "b"}, doc.Tags)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "  \"title\": \"hello\"", "expected two-space indentation")
	assert.True(t, raw[len(raw)-1] == '\n', "expected trailing newline")
}

func TestFile_WriteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "doc.json")
	f := NewFile[noteDoc](path)
	require.NoError(t, f.Write(noteDoc{Title: "x"}))
	assert.FileExists(t, path)
}

func TestFile_WriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, NewFile[noteDoc](path).Write(noteDoc{Title: "x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}

func TestFile_ReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFile[noteDoc](path).Read()
	assert.Error(t, err)
}

func TestFile_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	f := NewFile[noteDoc](path)
	require.NoError(t, f.Write(noteDoc{Title: "v1"}))

	doc, err := f.Update(func(d *noteDoc) error {
		d.Title = "v2"
		d.Tags = append(d.Tags, "edited")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", doc.Title)

	reread, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, doc, reread)
}

func TestFile_UpdateSeesHandEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	f := NewFile[noteDoc](path)
	require.NoError(t, f.Write(noteDoc{Title: "original"}))

	// Simulate an edit made directly on disk between operations.
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "hand-edited", "tags": []}`), 0644))

	doc, err := f.Update(func(d *noteDoc) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "hand-edited", doc.Title)
}

func TestFile_Repair(t *testing.T) {
	t.Run("missing file is left alone", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")
		changed, err := NewFile[noteDoc](path).Repair(func(d *noteDoc) bool {
			d.Title = "should not happen"
			return true
		})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.NoFileExists(t, path)
	})

	t.Run("empty document is left alone", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

		changed, err := NewFile[noteDoc](path).Repair(func(d *noteDoc) bool {
			d.Title = "should not happen"
			return true
		})
		require.NoError(t, err)
		assert.False(t, changed)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}\n", string(raw))
	})

	t.Run("clean document is not rewritten", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		f := NewFile[noteDoc](path)
		require.NoError(t, f.Write(noteDoc{Title: "ok"}))
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		changed, err := f.Repair(func(d *noteDoc) bool { return false })
		require.NoError(t, err)
		assert.False(t, changed)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("dirty document is written back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		f := NewFile[noteDoc](path)
		require.NoError(t, f.Write(noteDoc{Title: "draft"}))

		changed, err := f.Repair(func(d *noteDoc) bool {
			d.Title = "repaired"
			return true
		})
		require.NoError(t, err)
		assert.True(t, changed)

		doc, err := f.Read()
		require.NoError(t, err)
		assert.Equal(t, "repaired", doc.Title)
	})
}

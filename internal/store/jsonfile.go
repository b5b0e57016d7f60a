// Package store persists career data as hand-editable JSON files. Each
// document lives in its own file guarded by a single mutex; every operation
// re-reads the file under that lock, so edits made directly on disk between
// requests are always picked up.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File owns one JSON document on disk and serializes all access to it.
type File[T any] struct {
	path string
	mu   sync.Mutex
}

// NewFile wraps path without touching the filesystem. The file may not
// exist yet; a missing file reads as the zero document.
func NewFile[T any](path string) *File[T] {
	return &File[T]{path: path}
}

// Path returns the location of the backing file.
func (f *File[T]) Path() string { return f.path }

// Read decodes the current document. A missing file yields the zero value.
func (f *File[T]) Read() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Write atomically replaces the document on disk.
func (f *File[T]) Write(doc T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(doc)
}

// Update runs fn against the current document and writes the result back,
// all while holding the file lock.
func (f *File[T]) Update(fn func(*T) error) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return doc, err
	}
	if err := fn(&doc); err != nil {
		return doc, err
	}
	if err := f.write(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// Repair lets fn normalize a document that may have been edited by hand.
// Missing and empty files are left alone, and nothing is written unless fn
// reports a change, so repairing an already clean document is a no-op.
func (f *File[T]) Repair(fn func(*T) bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", f.path, err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return false, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if len(keys) == 0 {
		return false, nil
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if !fn(&doc) {
		return false, nil
	}
	if err := f.write(doc); err != nil {
		return false, err
	}
	return true, nil
}

func (f *File[T]) read() (T, error) {
	var doc T
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File[T]) write(doc T) error {
	return atomicWriteJSON(f.path, doc)
}

// atomicWriteJSON marshals doc with two-space indentation and a trailing
// newline, then replaces path through a .tmp sibling in the same directory.
func atomicWriteJSON(path string, doc any) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	payload = append(payload, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

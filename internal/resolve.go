package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MaxSuffix bounds the _N probing sequence. A folder would need a million
// same-named files with distinct content to reach it.
const MaxSuffix = 1_000_000

// Resolution is the decision for one incoming file.
type Resolution struct {
	// Skip is set when identical content already sits in the folder.
	Skip bool
	// Path is where the file should go. Empty when Skip is set.
	Path string
	// Existing is the file whose content matched, when Skip is set.
	Existing string
}

// Resolver picks destination names inside a single folder. It never treats
// content found in other folders as a duplicate.
type Resolver struct {
	fs afero.Fs
}

func NewResolver(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs}
}

// Resolve decides where a file named candidate with content hash should be
// placed inside folder. The returned path did not exist when it was checked;
// nothing prevents another process from creating it afterwards.
func (r *Resolver) Resolve(folder, candidate string, hash ContentHash) (Resolution, error) {
	path := filepath.Join(folder, candidate)
	res, done, err := r.probe(path, hash)
	if err != nil || done {
		return res, err
	}

	base, ext := splitName(candidate)
	for i := 1; i <= MaxSuffix; i++ {
		path = filepath.Join(folder, fmt.Sprintf("%s_%d%s", base, i, ext))
		res, done, err = r.probe(path, hash)
		if err != nil || done {
			return res, err
		}
	}
	return Resolution{}, fmt.Errorf("%w: %s in %s", ErrSuffixesExhausted, candidate, folder)
}

// probe reports done when path settles the resolution: either it is free,
// or it already holds the same content.
func (r *Resolver) probe(path string, hash ContentHash) (Resolution, bool, error) {
	info, err := r.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Resolution{Path: path}, true, nil
	}
	if err != nil {
		return Resolution{}, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	// A directory or device occupies the name but cannot hold our content.
	if !info.Mode().IsRegular() {
		return Resolution{}, false, nil
	}

	existing, err := HashFile(r.fs, path)
	if err != nil {
		return Resolution{}, false, err
	}
	if existing == hash {
		return Resolution{Skip: true, Existing: path}, true, nil
	}
	return Resolution{}, false, nil
}

// splitName splits at the last dot, except that leading dots belong to the
// base: ".hidden" has no extension and becomes ".hidden_1".
func splitName(name string) (base, ext string) {
	trimmed := strings.TrimLeft(name, ".")
	ext = filepath.Ext(trimmed)
	return strings.TrimSuffix(name, ext), ext
}

// Package discovery locates USFM source files and turns them into the
// line sequences the parser consumes. It owns all file I/O: walking
// directories, reading bytes, transparent xz decompression, UTF-8
// checking, and newline splitting.
package discovery

import (
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	cerrors "github.com/cedarworks/CedarBible/core/errors"
)

// Source is one discovered USFM file, decoded and split into lines.
type Source struct {
	// Path is the file path the source was loaded from.
	Path string `json:"path"`

	// Lines are the raw source lines, carriage returns stripped.
	Lines []string `json:"-"`

	// SourceHash is the BLAKE3 hash of the decompressed file bytes.
	SourceHash string `json:"source_hash"`
}

// usfmExtensions are the file extensions selected by Discover, before
// any trailing .xz suffix.
var usfmExtensions = map[string]bool{
	".usfm": true,
	".sfm":  true,
}

// isUSFMPath reports whether the file name selects as a USFM source,
// optionally compressed.
func isUSFMPath(name string) bool {
	lower := strings.ToLower(name)
	lower = strings.TrimSuffix(lower, ".xz")
	return usfmExtensions[filepath.Ext(lower)]
}

// Discover walks dir and returns the paths of all USFM sources in
// lexical order. Non-matching files and subdirectory structure are
// ignored; unreadable entries fail the walk.
func Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isUSFMPath(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, cerrors.NewIO("walk", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads one source file, decompressing .xz files transparently,
// and splits it into lines. The bytes must decode as UTF-8.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerrors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, cerrors.NewIO("decompress", path, err)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, cerrors.NewIO("read", path, err)
	}
	if !utf8.Valid(data) {
		return nil, &cerrors.ValidationError{
			Field:   "encoding",
			Message: "file is not valid UTF-8: " + path,
		}
	}

	h := blake3.Sum256(data)

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return &Source{
		Path:       path,
		Lines:      lines,
		SourceHash: hex.EncodeToString(h[:]),
	}, nil
}

// LoadAll discovers and loads every USFM source under dir. A file that
// fails to load aborts the whole operation; line-level parse issues are
// the parser's concern, not discovery's.
func LoadAll(dir string) ([]*Source, error) {
	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	sources := make([]*Source, 0, len(paths))
	for _, path := range paths {
		src, err := Load(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

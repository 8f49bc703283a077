package store

import (
	"sync"

	"github.com/cedarworks/CedarBible/core/book"
	"github.com/cedarworks/CedarBible/core/usfm"
	"github.com/cedarworks/CedarBible/internal/discovery"
)

// import.go - Directory import orchestration. Files are parsed in
// parallel (each file's pipeline is fully independent) and saved
// sequentially, since SQLite allows one writer.

// ImportResult reports the outcome for one source file. Err is set for
// files that could not be loaded at all; line-level parse failures only
// raise the Diagnostics count.
type ImportResult struct {
	Path        string            `json:"path"`
	ImportID    string            `json:"import_id,omitempty"`
	BookID      string            `json:"book_id,omitempty"`
	Chapters    int               `json:"chapters"`
	Diagnostics []usfm.Diagnostic `json:"diagnostics,omitempty"`
	Err         error             `json:"-"`
}

// ProgressFunc observes import progress: done files out of total so far.
type ProgressFunc func(res ImportResult, done, total int)

type parsedFile struct {
	index  int
	source *discovery.Source
	book   *book.Book
	diags  []usfm.Diagnostic
	err    error
}

// ImportDir discovers, parses, and stores every USFM file under dir.
// A file that fails to load is reported and skipped; the remaining
// files are still imported. Progress may be nil.
func (s *Store) ImportDir(dir string, workers int, progress ProgressFunc) ([]ImportResult, error) {
	paths, err := discovery.Discover(dir)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	parsed := make([]parsedFile, len(paths))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pf := parsedFile{index: i}
			pf.source, pf.err = discovery.Load(path)
			if pf.err == nil {
				pf.book, pf.diags = usfm.ParseLines(pf.source.Lines)
			}
			parsed[i] = pf
		}(i, path)
	}
	wg.Wait()

	results := make([]ImportResult, 0, len(paths))
	for i, pf := range parsed {
		res := ImportResult{Path: paths[i], Err: pf.err}
		if pf.err == nil {
			res.BookID = pf.book.ID
			res.Chapters = len(pf.book.Chapters)
			res.Diagnostics = pf.diags
			res.ImportID, res.Err = s.SaveBook(pf.book, pf.source.Path, pf.source.SourceHash, len(pf.diags))
		}
		results = append(results, res)
		if progress != nil {
			progress(res, i+1, len(paths))
		}
	}
	return results, nil
}

// Package store persists parsed books in a SQLite database: one row
// per import, book, chapter, and content block. Inline items are kept
// as JSON alongside the flattened block text so books can be
// reconstructed losslessly.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cedarworks/CedarBible/core/book"
	cerrors "github.com/cedarworks/CedarBible/core/errors"
	"github.com/cedarworks/CedarBible/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id          TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	source_path TEXT NOT NULL,
	source_hash TEXT NOT NULL,
	diagnostics INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS books (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	import_id  TEXT NOT NULL REFERENCES imports(id),
	code       TEXT NOT NULL,
	long_name  TEXT NOT NULL,
	short_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chapters (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id  INTEGER NOT NULL REFERENCES books(id),
	number   INTEGER NOT NULL,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS blocks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	chapter_id   INTEGER NOT NULL REFERENCES chapters(id),
	position     INTEGER NOT NULL,
	kind         TEXT NOT NULL,
	verse_number INTEGER NOT NULL DEFAULT 0,
	indented     INTEGER NOT NULL DEFAULT 0,
	text         TEXT NOT NULL,
	items        TEXT NOT NULL,
	hash         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_code ON books(code);
CREATE INDEX IF NOT EXISTS idx_chapters_book ON chapters(book_id);
CREATE INDEX IF NOT EXISTS idx_blocks_chapter ON blocks(chapter_id);
`

// Store is a SQLite-backed book repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the store at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, &cerrors.StorageError{Operation: "open", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &cerrors.StorageError{Operation: "migrate", Err: err}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ImportRecord describes one recorded import.
type ImportRecord struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	SourcePath  string    `json:"source_path"`
	SourceHash  string    `json:"source_hash"`
	Diagnostics int       `json:"diagnostics"`
}

// BookSummary is one row of the book listing.
type BookSummary struct {
	Code      string `json:"code"`
	LongName  string `json:"long_name"`
	ShortName string `json:"short_name"`
	Chapters  int    `json:"chapters"`
	ImportID  string `json:"import_id"`
}

// SaveBook records one parsed book together with its import metadata
// and returns the import ID.
func (s *Store) SaveBook(b *book.Book, sourcePath, sourceHash string, diagnostics int) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", &cerrors.StorageError{Operation: "begin", Err: err}
	}
	defer tx.Rollback()

	importID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.Exec(
		`INSERT INTO imports (id, created_at, source_path, source_hash, diagnostics) VALUES (?, ?, ?, ?, ?)`,
		importID, createdAt, sourcePath, sourceHash, diagnostics,
	); err != nil {
		return "", &cerrors.StorageError{Operation: "insert", Entity: "imports", Err: err}
	}

	res, err := tx.Exec(
		`INSERT INTO books (import_id, code, long_name, short_name) VALUES (?, ?, ?, ?)`,
		importID, b.ID, b.LongName, b.ShortName,
	)
	if err != nil {
		return "", &cerrors.StorageError{Operation: "insert", Entity: "books", Err: err}
	}
	bookID, err := res.LastInsertId()
	if err != nil {
		return "", &cerrors.StorageError{Operation: "insert", Entity: "books", Err: err}
	}

	for ci, ch := range b.Chapters {
		res, err := tx.Exec(
			`INSERT INTO chapters (book_id, number, position) VALUES (?, ?, ?)`,
			bookID, ch.Number, ci,
		)
		if err != nil {
			return "", &cerrors.StorageError{Operation: "insert", Entity: "chapters", Err: err}
		}
		chapterID, err := res.LastInsertId()
		if err != nil {
			return "", &cerrors.StorageError{Operation: "insert", Entity: "chapters", Err: err}
		}

		for bi, cb := range ch.Content {
			items, err := json.Marshal(cb.Items)
			if err != nil {
				return "", &cerrors.StorageError{Operation: "encode", Entity: "blocks", Err: err}
			}
			if cb.Hash == "" {
				cb.ComputeHash()
			}
			if _, err := tx.Exec(
				`INSERT INTO blocks (chapter_id, position, kind, verse_number, indented, text, items, hash)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				chapterID, bi, string(cb.Kind), cb.VerseNumber, boolToInt(cb.Indented),
				cb.FlattenText(), string(items), cb.Hash,
			); err != nil {
				return "", &cerrors.StorageError{Operation: "insert", Entity: "blocks", Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", &cerrors.StorageError{Operation: "commit", Err: err}
	}
	return importID, nil
}

// ListBooks returns a summary of every stored book, most recent import
// first.
func (s *Store) ListBooks() ([]BookSummary, error) {
	rows, err := s.db.Query(`
		SELECT b.code, b.long_name, b.short_name, b.import_id,
		       (SELECT COUNT(*) FROM chapters c WHERE c.book_id = b.id)
		FROM books b
		JOIN imports i ON i.id = b.import_id
		ORDER BY i.created_at DESC, b.code`)
	if err != nil {
		return nil, &cerrors.StorageError{Operation: "query", Entity: "books", Err: err}
	}
	defer rows.Close()

	var out []BookSummary
	for rows.Next() {
		var bs BookSummary
		if err := rows.Scan(&bs.Code, &bs.LongName, &bs.ShortName, &bs.ImportID, &bs.Chapters); err != nil {
			return nil, &cerrors.StorageError{Operation: "scan", Entity: "books", Err: err}
		}
		out = append(out, bs)
	}
	return out, rows.Err()
}

// GetBook reconstructs the most recently imported book with the given
// code.
func (s *Store) GetBook(code string) (*book.Book, error) {
	var bookID int64
	b := &book.Book{}
	err := s.db.QueryRow(`
		SELECT b.id, b.code, b.long_name, b.short_name
		FROM books b
		JOIN imports i ON i.id = b.import_id
		WHERE b.code = ?
		ORDER BY i.created_at DESC
		LIMIT 1`, code).Scan(&bookID, &b.ID, &b.LongName, &b.ShortName)
	if err == sql.ErrNoRows {
		return nil, cerrors.NewNotFound("book", code)
	}
	if err != nil {
		return nil, &cerrors.StorageError{Operation: "query", Entity: "books", Err: err}
	}

	chRows, err := s.db.Query(
		`SELECT id, number FROM chapters WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return nil, &cerrors.StorageError{Operation: "query", Entity: "chapters", Err: err}
	}
	defer chRows.Close()

	type chapterRow struct {
		id     int64
		number int
	}
	var chapterRows []chapterRow
	for chRows.Next() {
		var cr chapterRow
		if err := chRows.Scan(&cr.id, &cr.number); err != nil {
			return nil, &cerrors.StorageError{Operation: "scan", Entity: "chapters", Err: err}
		}
		chapterRows = append(chapterRows, cr)
	}
	if err := chRows.Err(); err != nil {
		return nil, &cerrors.StorageError{Operation: "scan", Entity: "chapters", Err: err}
	}

	for _, cr := range chapterRows {
		ch := &book.Chapter{Number: cr.number}
		blockRows, err := s.db.Query(
			`SELECT kind, verse_number, indented, items, hash
			 FROM blocks WHERE chapter_id = ? ORDER BY position`, cr.id)
		if err != nil {
			return nil, &cerrors.StorageError{Operation: "query", Entity: "blocks", Err: err}
		}
		for blockRows.Next() {
			var (
				kind     string
				verseNum int
				indented int
				itemsRaw string
				hash     string
			)
			if err := blockRows.Scan(&kind, &verseNum, &indented, &itemsRaw, &hash); err != nil {
				blockRows.Close()
				return nil, &cerrors.StorageError{Operation: "scan", Entity: "blocks", Err: err}
			}
			cb := &book.ContentBlock{
				Kind:        book.BlockKind(kind),
				VerseNumber: verseNum,
				Indented:    indented != 0,
				Hash:        hash,
			}
			if itemsRaw != "" && itemsRaw != "null" {
				if err := json.Unmarshal([]byte(itemsRaw), &cb.Items); err != nil {
					blockRows.Close()
					return nil, &cerrors.StorageError{Operation: "decode", Entity: "blocks", Err: err}
				}
			}
			ch.Content = append(ch.Content, cb)
		}
		if err := blockRows.Err(); err != nil {
			blockRows.Close()
			return nil, &cerrors.StorageError{Operation: "scan", Entity: "blocks", Err: err}
		}
		blockRows.Close()
		b.Chapters = append(b.Chapters, ch)
	}

	return b, nil
}

// ListImports returns every recorded import, most recent first.
func (s *Store) ListImports() ([]ImportRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, source_path, source_hash, diagnostics
		 FROM imports ORDER BY created_at DESC`)
	if err != nil {
		return nil, &cerrors.StorageError{Operation: "query", Entity: "imports", Err: err}
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var (
			rec       ImportRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &rec.SourcePath, &rec.SourceHash, &rec.Diagnostics); err != nil {
			return nil, &cerrors.StorageError{Operation: "scan", Entity: "imports", Err: err}
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

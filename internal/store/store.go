// Package store persists an import result to a SQLite database.
//
// The schema mirrors the importer's output shape: books, lines, primary and
// alternate TOC rows, and directional links. Each line row carries a BLAKE3
// hash of its content so downstream consumers can detect text changes between
// corpus revisions without diffing the text itself.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/otzarlib/otzar/core/errors"
	"github.com/otzarlib/otzar/core/importer"
	"github.com/otzarlib/otzar/core/links"
	"github.com/otzarlib/otzar/core/sqlite"
	"github.com/otzarlib/otzar/internal/logging"
)

// Store wraps a SQLite database holding one imported corpus.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the corpus database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open corpus database")
	}
	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing corpus database without write access.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.Wrap(err, "open corpus database")
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			he_title TEXT,
			categories TEXT,
			dependent INTEGER NOT NULL DEFAULT 0,
			base_line_id INTEGER NOT NULL,
			has_alt_structures INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS lines (
			id INTEGER PRIMARY KEY,
			book_id INTEGER NOT NULL,
			line_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			ref TEXT,
			he_ref TEXT,
			FOREIGN KEY (book_id) REFERENCES books(id)
		);
		CREATE TABLE IF NOT EXISTS toc_entries (
			book_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			he_title TEXT,
			level INTEGER NOT NULL,
			line_index INTEGER NOT NULL,
			parent_position INTEGER NOT NULL,
			has_children INTEGER NOT NULL,
			is_last_child INTEGER NOT NULL,
			PRIMARY KEY (book_id, position),
			FOREIGN KEY (book_id) REFERENCES books(id)
		);
		CREATE TABLE IF NOT EXISTS alt_toc_entries (
			book_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			structure_key TEXT NOT NULL,
			title TEXT NOT NULL,
			he_title TEXT,
			level INTEGER NOT NULL,
			line_id INTEGER NOT NULL,
			address INTEGER NOT NULL,
			parent_position INTEGER NOT NULL,
			has_children INTEGER NOT NULL,
			is_last_child INTEGER NOT NULL,
			PRIMARY KEY (book_id, position),
			FOREIGN KEY (book_id) REFERENCES books(id)
		);
		CREATE TABLE IF NOT EXISTS links (
			id TEXT PRIMARY KEY,
			source_book_id INTEGER NOT NULL,
			source_line_id INTEGER NOT NULL,
			target_book_id INTEGER NOT NULL,
			target_line_id INTEGER NOT NULL,
			type TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_lines_book ON lines(book_id, line_index);
		CREATE INDEX IF NOT EXISTS idx_lines_ref ON lines(ref);
		CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_book_id, source_line_id);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_book_id, target_line_id);
	`)
	if err != nil {
		return errors.Wrap(err, "create schema")
	}
	return nil
}

// WriteResult persists a full import result in one transaction per concern.
func (s *Store) WriteResult(ctx context.Context, result *importer.Result) error {
	if err := s.writeBooks(ctx, result.Books); err != nil {
		return err
	}
	var lineRows int64
	for _, book := range result.Books {
		n, err := s.writeBook(ctx, book)
		if err != nil {
			return err
		}
		lineRows += n
	}
	if err := s.writeLinks(ctx, result.Links); err != nil {
		return err
	}
	logging.StoreEvent("corpus_written", s.path, lineRows)
	return nil
}

func (s *Store) writeBooks(ctx context.Context, books []*importer.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin books transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO books (id, title, he_title, categories, dependent, base_line_id, has_alt_structures)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare books insert")
	}
	defer stmt.Close()

	for _, book := range books {
		_, err := stmt.ExecContext(ctx, book.ID, book.Title, book.HeTitle,
			joinCategories(book.Categories), boolInt(book.Dependent),
			book.BaseLineID, boolInt(book.HasAltStructures))
		if err != nil {
			return errors.Wrapf(err, "insert book %q", book.Title)
		}
	}
	return tx.Commit()
}

// writeBook writes one book's lines and TOC rows in a single transaction, so
// a partially written book never becomes visible.
func (s *Store) writeBook(ctx context.Context, book *importer.Book) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin book transaction")
	}
	defer tx.Rollback()

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lines (id, book_id, line_index, content, content_hash, ref, he_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare lines insert")
	}
	defer lineStmt.Close()

	for _, line := range book.Lines {
		hash := blake3.Sum256([]byte(line.Content))
		_, err := lineStmt.ExecContext(ctx, book.BaseLineID+line.LineIndex,
			line.BookID, line.LineIndex, line.Content,
			hex.EncodeToString(hash[:]), line.Ref, line.HeRef)
		if err != nil {
			return 0, errors.Wrapf(err, "insert line %d of %q", line.LineIndex, book.Title)
		}
	}

	tocStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO toc_entries (book_id, position, title, he_title, level, line_index, parent_position, has_children, is_last_child)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare toc insert")
	}
	defer tocStmt.Close()

	for i, e := range book.TocEntries {
		_, err := tocStmt.ExecContext(ctx, book.ID, i, e.Title, e.HeTitle,
			e.Level, e.LineIndex, e.ParentIndex,
			boolInt(e.HasChildren), boolInt(e.IsLastChild))
		if err != nil {
			return 0, errors.Wrapf(err, "insert toc entry %d of %q", i, book.Title)
		}
	}

	altStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alt_toc_entries (book_id, position, structure_key, title, he_title, level, line_id, address, parent_position, has_children, is_last_child)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare alt toc insert")
	}
	defer altStmt.Close()

	for i, e := range book.AltEntries {
		_, err := altStmt.ExecContext(ctx, book.ID, i, e.StructureKey, e.Title,
			e.HeTitle, e.Level, e.LineID, e.Address, e.ParentIndex,
			boolInt(e.HasChildren), boolInt(e.IsLastChild))
		if err != nil {
			return 0, errors.Wrapf(err, "insert alt toc entry %d of %q", i, book.Title)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrapf(err, "commit book %q", book.Title)
	}
	return int64(len(book.Lines)), nil
}

func (s *Store) writeLinks(ctx context.Context, linkRows []links.Link) error {
	if len(linkRows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin links transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (id, source_book_id, source_line_id, target_book_id, target_line_id, type)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare links insert")
	}
	defer stmt.Close()

	for _, link := range linkRows {
		_, err := stmt.ExecContext(ctx, uuid.New().String(),
			link.SourceBookID, link.SourceLineID,
			link.TargetBookID, link.TargetLineID, string(link.Type))
		if err != nil {
			return errors.Wrap(err, "insert link")
		}
	}
	return tx.Commit()
}

// CountLines returns the number of persisted lines.
func (s *Store) CountLines(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lines`).Scan(&n)
	return n, err
}

// LineByRef returns the content of the line with the given canonical ref.
func (s *Store) LineByRef(ctx context.Context, ref string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM lines WHERE ref = ?`, ref).Scan(&content)
	if err == sql.ErrNoRows {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// LinksFrom returns the outgoing links of a line.
func (s *Store) LinksFrom(ctx context.Context, bookID, lineID int) ([]links.Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_book_id, source_line_id, target_book_id, target_line_id, type
		FROM links WHERE source_book_id = ? AND source_line_id = ?`, bookID, lineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []links.Link
	for rows.Next() {
		var l links.Link
		var typ string
		if err := rows.Scan(&l.SourceBookID, &l.SourceLineID, &l.TargetBookID, &l.TargetLineID, &typ); err != nil {
			return nil, err
		}
		l.Type = links.ConnectionType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}

// joinCategories stores the category path as a single slash-joined column.
func joinCategories(categories []string) string {
	return strings.Join(categories, "/")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

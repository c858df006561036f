package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-sqlite3"
)

// Config holds configuration for a Store.
type Config struct {
	// Path to the backing file, either *.db or *.db.lzma.
	Path string

	// Table is the word-pair table name. Defaults to DefaultTable.
	Table string

	// MemoryOnly keeps every change in memory; the backing file is never
	// written.
	MemoryOnly bool

	// Logger receives load, search and flush events. nil means no logging.
	Logger *slog.Logger
}

// Store is a word-pair table loaded entirely into an in-memory SQLite
// database, optionally written back to its backing file after mutations.
//
// A Store is not safe for concurrent mutation. Searches may run
// concurrently with each other.
type Store struct {
	db   *sql.DB
	conn *sql.Conn

	path       string
	format     Format
	table      string
	memoryOnly bool
	logger     *slog.Logger

	// image is the last image read from or written to a compressed backing
	// file. Flush skips rewriting the file when it is unchanged.
	image []byte

	closed bool
}

// New validates cfg and returns an uninitialized Store. The file suffix is
// checked before the file system is touched; a missing file is an error.
func New(cfg Config) (*Store, error) {
	format, err := DetectFormat(cfg.Path)
	if err != nil {
		return nil, err
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !ValidTable(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("dictionary file: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		path:       cfg.Path,
		format:     format,
		table:      table,
		memoryOnly: cfg.MemoryOnly,
		logger:     logger,
	}, nil
}

// Open creates and initializes a Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Init reads the backing file, decompressing it if needed, and loads the
// image into a fresh in-memory database. An empty file leaves the database
// without any tables; call Prepare before use.
func (s *Store) Init(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.conn != nil {
		return ErrAlreadyInitialized
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read dictionary file: %w", err)
	}
	image := raw
	if s.format == FormatLZMA {
		if image, err = Decompress(raw); err != nil {
			return fmt.Errorf("%s: %w", s.path, err)
		}
	}

	db, conn, err := openMemory(ctx)
	if err != nil {
		return err
	}
	// The live connection must never be recycled: closing it drops the data.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if len(image) > 0 {
		if err := restore(ctx, conn, image); err != nil {
			conn.Close()
			db.Close()
			return fmt.Errorf("load %s: %w", s.path, err)
		}
	}

	s.db, s.conn, s.image = db, conn, image
	s.logger.Debug("dictionary loaded",
		"path", s.path, "format", s.format.String(), "bytes", len(image), "table", s.table)
	return nil
}

// Prepare creates the word-pair table if it does not exist yet and flushes
// unless the store is memory-only.
func (s *Store) Prepare(ctx context.Context) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return s.persist(ctx)
}

// Fill appends every entry of the tab-separated raw file at rawPath to the
// table in one transaction and flushes unless the store is memory-only. A
// missing or malformed raw file leaves the table untouched.
func (s *Store) Fill(ctx context.Context, rawPath string) error {
	if _, err := s.handle(); err != nil {
		return err
	}
	f, err := os.Open(rawPath)
	if err != nil {
		return fmt.Errorf("open raw file: %w", err)
	}
	defer f.Close()

	entries, err := ParseRaw(f)
	if err != nil {
		return fmt.Errorf("%s: %w", rawPath, err)
	}
	return s.Insert(ctx, entries...)
}

// Insert appends entries to the table in one transaction, in order, and
// flushes unless the store is memory-only.
func (s *Store) Insert(ctx context.Context, entries ...Entry) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Fields()...); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %d entries: %w", len(entries), err)
	}
	s.logger.Debug("entries inserted", "table", s.table, "count", len(entries))

	return s.persist(ctx)
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int, error) {
	conn, err := s.handle()
	if err != nil {
		return 0, err
	}
	var n int
	if err := conn.QueryRowContext(ctx, "SELECT count(*) FROM "+s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// Flush makes the backing file reflect the in-memory database. Compressed
// files are rewritten from a serialized snapshot; plain files are written by
// SQLite's online backup. A memory-only store never touches the file.
func (s *Store) Flush(ctx context.Context) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	if s.memoryOnly {
		s.logger.Debug("flush skipped for memory-only store", "path", s.path)
		return nil
	}

	switch s.format {
	case FormatLZMA:
		image, err := snapshot(ctx, conn)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if len(image) > 0 && bytes.Equal(image, s.image) {
			s.logger.Debug("flush skipped, image unchanged", "path", s.path)
			return nil
		}
		packed, err := Compress(image)
		if err != nil {
			return err
		}
		if err := writeFile(s.path, packed); err != nil {
			return err
		}
		s.image = image
		s.logger.Info("dictionary flushed",
			"path", s.path, "format", s.format.String(), "bytes", len(packed))
	default:
		if err := backupToFile(ctx, conn, s.path); err != nil {
			return fmt.Errorf("backup to %s: %w", s.path, err)
		}
		s.logger.Info("dictionary flushed", "path", s.path, "format", s.format.String())
	}
	return nil
}

// Close releases the in-memory database. The backing file is not written.
func (s *Store) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := errors.Join(s.conn.Close(), s.db.Close())
	s.conn, s.db, s.image = nil, nil, nil
	return err
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Format returns the backing file format.
func (s *Store) Format() Format {
	return s.format
}

// Table returns the word-pair table name.
func (s *Store) Table() string {
	return s.table
}

// MemoryOnly reports whether mutations stay in memory.
func (s *Store) MemoryOnly() bool {
	return s.memoryOnly
}

func (s *Store) handle() (*sql.Conn, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	return s.conn, nil
}

// persist flushes after a committed mutation unless the store is memory-only.
func (s *Store) persist(ctx context.Context) error {
	if s.memoryOnly {
		return nil
	}
	return s.Flush(ctx)
}

// openMemory opens a single-connection in-memory database.
func openMemory(ctx context.Context) (*sql.DB, *sql.Conn, error) {
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, conn, nil
}

func sqliteConn(driverConn any) (*sqlite3.SQLiteConn, error) {
	c, ok := driverConn.(*sqlite3.SQLiteConn)
	if !ok {
		return nil, fmt.Errorf("unexpected driver connection %T", driverConn)
	}
	return c, nil
}

// backup copies the main database of src over the main database of dst.
func backup(dst, src *sql.Conn) error {
	return dst.Raw(func(d any) error {
		dc, err := sqliteConn(d)
		if err != nil {
			return err
		}
		return src.Raw(func(s any) error {
			sc, err := sqliteConn(s)
			if err != nil {
				return err
			}
			bk, err := dc.Backup("main", sc, "main")
			if err != nil {
				return fmt.Errorf("start backup: %w", err)
			}
			if _, err := bk.Step(-1); err != nil {
				_ = bk.Finish()
				return fmt.Errorf("backup step: %w", err)
			}
			return bk.Finish()
		})
	})
}

// restore loads image into conn. The image is deserialized into a scratch
// connection and copied with the backup API so conn stays an ordinary,
// growable in-memory database.
func restore(ctx context.Context, conn *sql.Conn, image []byte) error {
	db, scratch, err := openMemory(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer scratch.Close()

	err = scratch.Raw(func(d any) error {
		c, err := sqliteConn(d)
		if err != nil {
			return err
		}
		return c.Deserialize(image, "main")
	})
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	return backup(conn, scratch)
}

// snapshot copies conn into a second in-memory database and serializes the
// copy. An empty database yields an empty image.
func snapshot(ctx context.Context, conn *sql.Conn) ([]byte, error) {
	var pages int
	if err := conn.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pages); err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, nil
	}

	db, scratch, err := openMemory(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	defer scratch.Close()

	if err := backup(scratch, conn); err != nil {
		return nil, err
	}
	var image []byte
	err = scratch.Raw(func(d any) error {
		c, err := sqliteConn(d)
		if err != nil {
			return err
		}
		image, err = c.Serialize("main")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return image, nil
}

// backupToFile writes conn into the SQLite database file at path.
func backupToFile(ctx context.Context, conn *sql.Conn, path string) error {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	dst, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer dst.Close()
	return backup(dst, conn)
}

// writeFile truncates path and writes data to it.
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

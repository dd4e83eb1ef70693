package fecom

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	sqlx "github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/supernemo-dbd/fecom_go/pkg/migrations"
)

type SQLiteArchiveOptions struct {
	Options
	// Codec name recorded next to each payload.
	Codec string
	// RunID restricts Load to one run. Empty reads every run in
	// insertion order.
	RunID string
}

// SQLiteArchive stores records as rows of a SQLite database. Every archive
// opened for writing gets a fresh run id.
type SQLiteArchive struct {
	db       *sqlx.DB
	path     string
	opts     SQLiteArchiveOptions
	runID    string
	seq      int64
	lastID   int64
	readOnly bool
}

type sqliteRecord struct {
	ID      int64  `db:"id"`
	RunID   string `db:"run_id"`
	Seq     int64  `db:"seq"`
	Codec   string `db:"codec"`
	Payload []byte `db:"payload"`
}

func OpenSQLiteArchive(path string, opts SQLiteArchiveOptions) (*SQLiteArchive, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	// one connection keeps the writer sequence and the reader cursor coherent
	db.SetMaxOpenConns(1)

	a := &SQLiteArchive{
		db:    db,
		path:  path,
		opts:  opts,
		runID: uuid.NewString(),
	}
	if err := a.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations on %s: %w", path, err)
	}
	opts.logf(PrioInformation, "sqliteArchive", "opened %s, run %s", path, a.runID)
	return a, nil
}

// OpenSQLiteArchiveReader opens an existing archive read only. A missing
// file is an *ErrOpenFile and nothing is created on disk.
func OpenSQLiteArchiveReader(path string, opts SQLiteArchiveOptions) (*SQLiteArchive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	db, err := sqlx.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	db.SetMaxOpenConns(1)

	var tables int
	err = db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'records'")
	if err != nil {
		db.Close()
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	if tables == 0 {
		db.Close()
		return nil, &CorruptedStreamError{Codec: "sqlite archive", Offset: -1, Reason: path + " has no records table"}
	}

	opts.logf(PrioInformation, "sqliteArchive", "opened %s read only", path)
	return &SQLiteArchive{db: db, path: path, opts: opts, readOnly: true}, nil
}

func (a *SQLiteArchive) migrate(fsys fs.FS) error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := a.db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := a.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := a.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		a.opts.logf(PrioDebug, "sqliteArchive", "applied migration %s", name)
	}
	return nil
}

// RunID is the run the writer side stores its records under. It is empty
// for an archive opened with OpenSQLiteArchiveReader.
func (a *SQLiteArchive) RunID() string {
	return a.runID
}

func (a *SQLiteArchive) Path() string {
	return a.path
}

func (a *SQLiteArchive) Store(record []byte) error {
	if a.readOnly {
		return fmt.Errorf("storing record in %s: archive opened read only", a.path)
	}
	_, err := a.db.Exec(
		"INSERT INTO records (run_id, seq, codec, payload) VALUES (?, ?, ?, ?)",
		a.runID, a.seq, a.opts.Codec, record)
	if err != nil {
		return fmt.Errorf("inserting record %d of run %s: %w", a.seq, a.runID, err)
	}
	a.seq++
	return nil
}

func (a *SQLiteArchive) Load() ([]byte, error) {
	var rec sqliteRecord
	err := a.db.Get(&rec, `
		SELECT id, run_id, seq, codec, payload FROM records
		WHERE id > ? AND (? = '' OR run_id = ?)
		ORDER BY id LIMIT 1`,
		a.lastID, a.opts.RunID, a.opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("loading record after id %d: %w", a.lastID, err)
	}
	if a.opts.Codec != "" && rec.Codec != a.opts.Codec {
		return nil, &CorruptedStreamError{
			Codec:  "sqlite archive",
			Offset: rec.ID,
			Reason: fmt.Sprintf("record %d of run %s was written with codec %q, reading with %q", rec.Seq, rec.RunID, rec.Codec, a.opts.Codec),
		}
	}
	a.lastID = rec.ID
	return rec.Payload, nil
}

// Runs lists the run ids present in the archive in order of first record.
func (a *SQLiteArchive) Runs() ([]string, error) {
	var runs []string
	err := a.db.Select(&runs, "SELECT run_id FROM records GROUP BY run_id ORDER BY MIN(id)")
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

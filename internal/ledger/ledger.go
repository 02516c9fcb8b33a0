// Package ledger is the durable record of issued invoice identifiers.
//
// Every operation opens the store, runs, and closes it again. No connection
// outlives a call.
package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/felixhoffmnn/latex-templates/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrDuplicateIdentifier is returned when a sequence id was already recorded.
var ErrDuplicateIdentifier = errors.New("identifier already recorded")

// Entry is one issued identifier.
type Entry struct {
	SequenceID       int
	SubjectReference int
	IssueDate        time.Time
	Status           model.Status
}

type entryRow struct {
	SequenceID       int    `db:"sequence_id"`
	SubjectReference int    `db:"subject_reference"`
	IssueDate        string `db:"issue_date"`
	Status           string `db:"status"`
}

// Ledger issues and records sequence ids in an SQLite file.
type Ledger struct {
	path    string
	startID int
	now     func() time.Time
}

// New returns a Ledger stored at path. startID is issued when the ledger is empty.
func New(path string, startID int) *Ledger {
	if startID < 1 {
		startID = 1
	}
	return &Ledger{path: path, startID: startID, now: time.Now}
}

// Path returns the store location.
func (l *Ledger) Path() string { return l.path }

// Exists reports whether the store has been created.
func (l *Ledger) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

func (l *Ledger) dsn() string {
	return "file:" + l.path + "?_busy_timeout=5000&_foreign_keys=on"
}

// Init creates the store and applies pending migrations.
func (l *Ledger) Init(ctx context.Context) error {
	return l.withDB(ctx, func(*sqlx.DB) error { return nil })
}

func (l *Ledger) withDB(ctx context.Context, fn func(*sqlx.DB) error) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	if err := l.migrate(); err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", l.dsn())
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer db.Close()
	return fn(db)
}

// migrate runs on its own connection because closing the migrator closes the database.
func (l *Ledger) migrate() error {
	db, err := sql.Open("sqlite3", l.dsn())
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("preparing ledger migrations: %w", err)
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("loading ledger migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("preparing ledger migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating ledger: %w", err)
	}
	return nil
}

// NextIdentifier returns the start id for an empty ledger, otherwise the
// largest recorded id plus one. It does not reserve the id.
func (l *Ledger) NextIdentifier(ctx context.Context) (int, error) {
	var next int
	err := l.withDB(ctx, func(db *sqlx.DB) error {
		var highest sql.NullInt64
		if err := db.GetContext(ctx, &highest, `SELECT MAX(sequence_id) FROM issued_identifiers`); err != nil {
			return fmt.Errorf("querying ledger: %w", err)
		}
		if !highest.Valid {
			next = l.startID
			return nil
		}
		next = int(highest.Int64) + 1
		return nil
	})
	return next, err
}

// Record appends an issued identifier. A sequence id already present yields
// ErrDuplicateIdentifier and leaves the ledger unchanged.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.SequenceID < 1 {
		return fmt.Errorf("recording identifier: invalid sequence id %d", e.SequenceID)
	}
	status := e.Status
	if status == "" {
		status = model.StatusSent
	}
	return l.withDB(ctx, func(db *sqlx.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO issued_identifiers (sequence_id, subject_reference, issue_date, status, recorded_at)
			 VALUES (?, ?, ?, ?, ?)`,
			e.SequenceID, e.SubjectReference, e.IssueDate.Format(time.DateOnly), string(status),
			l.now().UTC().Format(time.RFC3339))
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) &&
				(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
				return fmt.Errorf("%w: %d", ErrDuplicateIdentifier, e.SequenceID)
			}
			return fmt.Errorf("recording identifier %d: %w", e.SequenceID, err)
		}
		return nil
	})
}

// Entries returns all recorded identifiers in issuance order.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := l.withDB(ctx, func(db *sqlx.DB) error {
		var rows []entryRow
		if err := db.SelectContext(ctx, &rows,
			`SELECT sequence_id, subject_reference, issue_date, status FROM issued_identifiers ORDER BY entry_no`); err != nil {
			return fmt.Errorf("querying ledger: %w", err)
		}
		for _, r := range rows {
			date, err := time.Parse(time.DateOnly, r.IssueDate)
			if err != nil {
				return fmt.Errorf("ledger entry %d: parsing date %q: %w", r.SequenceID, r.IssueDate, err)
			}
			entries = append(entries, Entry{
				SequenceID:       r.SequenceID,
				SubjectReference: r.SubjectReference,
				IssueDate:        date,
				Status:           model.Status(r.Status),
			})
		}
		return nil
	})
	return entries, err
}

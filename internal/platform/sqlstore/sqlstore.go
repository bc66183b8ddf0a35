// Package sqlstore backs the account store with SQLite. The primary key on
// the derived address makes record creation exclusive, and one SQL
// transaction per unit gives the all-or-nothing, single-writer-wins behavior
// the replay guard relies on.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/dexlane/solana-bridge/internal/platform"
)

const schema = `
CREATE TABLE IF NOT EXISTS account (
	address TEXT PRIMARY KEY,
	data    BLOB NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// New opens (and if needed initializes) the store at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA foreign_keys = ON;
		pragma journal_mode = WAL;
		pragma synchronous = normal;
	`); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Begin(ctx context.Context) (platform.Unit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &unit{ctx: ctx, tx: tx}, nil
}

type unit struct {
	ctx  context.Context
	tx   *sql.Tx
	done bool
}

func (u *unit) Create(addr solana.PublicKey, size int) error {
	_, err := u.tx.ExecContext(
		u.ctx,
		`INSERT INTO account (address, data) VALUES ($1, $2)`,
		addr.String(), make([]byte, size),
	)
	if isUniqueViolation(err) {
		return platform.ErrAlreadyInUse
	}
	return err
}

func (u *unit) Get(addr solana.PublicKey) ([]byte, error) {
	var data []byte
	err := u.tx.QueryRowContext(
		u.ctx,
		`SELECT data FROM account WHERE address = $1`,
		addr.String(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, platform.ErrAccountNotFound
	}
	return data, err
}

func (u *unit) Put(addr solana.PublicKey, data []byte) error {
	res, err := u.tx.ExecContext(
		u.ctx,
		`UPDATE account SET data = $1 WHERE address = $2`,
		data, addr.String(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return platform.ErrAccountNotFound
	}
	return nil
}

func (u *unit) Commit() error {
	if u.done {
		return fmt.Errorf("unit is closed")
	}
	u.done = true
	return u.tx.Commit()
}

func (u *unit) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

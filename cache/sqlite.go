package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_meta (
	id    INTEGER PRIMARY KEY CHECK (id = 0),
	seal  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_entries (
	sig_hi INTEGER NOT NULL,
	sig_lo INTEGER NOT NULL,
	fit    TEXT NOT NULL,
	PRIMARY KEY (sig_hi, sig_lo)
);
`

// OpenSQLite opens (creating if necessary) a sqlite3-backed store at path
// for a cache's (signature, fitness, seal) triples — an additive
// persistence path alongside the mandatory line-oriented textual format,
// useful for a host that wants to query or inspect cached fitnesses with
// ordinary SQL.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init sqlite schema: %w", err)
	}
	return db, nil
}

// SaveSQLite persists every live entry of c into db, replacing its prior
// contents inside a single transaction.
func (c *Cache) SaveSQLite(db *sql.DB) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin sqlite save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("cache: clear sqlite entries: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO cache_meta (id, seal) VALUES (0, ?) ON CONFLICT(id) DO UPDATE SET seal = excluded.seal",
		c.seal); err != nil {
		return fmt.Errorf("cache: write sqlite seal: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO cache_entries (sig_hi, sig_lo, fit) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("cache: prepare sqlite insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range c.slots {
		if !s.valid || s.seal != c.seal {
			continue
		}
		if _, err := stmt.Exec(s.sig[0], s.sig[1], encodeFitness(s.fit)); err != nil {
			return fmt.Errorf("cache: insert sqlite entry: %w", err)
		}
	}
	return tx.Commit()
}

// LoadSQLite replaces c's contents with what is stored in db, re-hashing
// every entry into c's current table size. Transactional: c is left
// unchanged if any row fails to parse.
func (c *Cache) LoadSQLite(db *sql.DB) error {
	var seal uint64
	row := db.QueryRow("SELECT seal FROM cache_meta WHERE id = 0")
	if err := row.Scan(&seal); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("cache: read sqlite seal: %w", err)
	}

	rows, err := db.Query("SELECT sig_hi, sig_lo, fit FROM cache_entries")
	if err != nil {
		return fmt.Errorf("cache: query sqlite entries: %w", err)
	}
	defer rows.Close()

	scratch := make([]slot, len(c.slots))
	for rows.Next() {
		var hi, lo uint64
		var fitStr string
		if err := rows.Scan(&hi, &lo, &fitStr); err != nil {
			return fmt.Errorf("cache: scan sqlite entry: %w", err)
		}
		f, err := decodeFitness(fitStr)
		if err != nil {
			return fmt.Errorf("cache: decode sqlite fitness: %w", err)
		}
		sig := genome.Signature{hi, lo}
		idx := sig[0] & c.mask
		scratch[idx] = slot{sig: sig, fit: f, seal: seal, valid: true}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("cache: iterate sqlite entries: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = scratch
	c.seal = seal
	return nil
}

func encodeFitness(f fitness.Vector) string {
	s := ""
	for i, v := range f {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%g", v)
	}
	return s
}

func decodeFitness(s string) (fitness.Vector, error) {
	return parseFitnessLine(s)
}

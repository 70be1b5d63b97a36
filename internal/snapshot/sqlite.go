package snapshot

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openmined/dirdiff/internal/db"
	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/fingerprint"
	"github.com/openmined/dirdiff/internal/utils"
)

const setSchema = `
CREATE TABLE fingerprints (
    path TEXT PRIMARY KEY,
    digest TEXT NOT NULL
);
`

const diffSchema = `
CREATE TABLE differences (
    category TEXT NOT NULL, -- sourceOnlyPaths | destinationOnlyPaths | hashMismatchPaths
    path TEXT NOT NULL,
    PRIMARY KEY (category, path)
);
`

const (
	categorySourceOnly      = "sourceOnlyPaths"
	categoryDestinationOnly = "destinationOnlyPaths"
	categoryHashMismatch    = "hashMismatchPaths"
)

type fingerprintRow struct {
	Path   string `db:"path"`
	Digest string `db:"digest"`
}

type differenceRow struct {
	Category string `db:"category"`
	Path     string `db:"path"`
}

func writeSetSQLite(path string, set fingerprint.Set) error {
	return utils.WriteFileAtomic(path, func(tmpPath string) error {
		return withTx(tmpPath, setSchema, func(tx *sqlx.Tx) error {
			stmt, err := tx.Preparex("INSERT INTO fingerprints (path, digest) VALUES (?, ?)")
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, p := range set.Paths() {
				if _, err := stmt.Exec(p, string(set[p])); err != nil {
					return fmt.Errorf("insert %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func readSetSQLite(path string) (fingerprint.Set, error) {
	conn, err := db.Open(db.WithPath(path), db.WithReadOnly())
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer conn.Close()

	var rows []fingerprintRow
	if err := conn.Select(&rows, "SELECT path, digest FROM fingerprints"); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}

	doc := make(document, len(rows))
	for _, row := range rows {
		doc[row.Path] = row.Digest
	}
	return fromDocument(doc)
}

func writeDiffSQLite(path string, result *diff.Result) error {
	return utils.WriteFileAtomic(path, func(tmpPath string) error {
		return withTx(tmpPath, diffSchema, func(tx *sqlx.Tx) error {
			stmt, err := tx.Preparex("INSERT INTO differences (category, path) VALUES (?, ?)")
			if err != nil {
				return err
			}
			defer stmt.Close()

			for category, paths := range map[string][]string{
				categorySourceOnly:      result.SourceOnlyPaths,
				categoryDestinationOnly: result.DestinationOnlyPaths,
				categoryHashMismatch:    result.HashMismatchPaths,
			} {
				for _, p := range paths {
					if _, err := stmt.Exec(category, p); err != nil {
						return fmt.Errorf("insert %s: %w", p, err)
					}
				}
			}
			return nil
		})
	})
}

func readDiffSQLite(path string) (*diff.Result, error) {
	conn, err := db.Open(db.WithPath(path), db.WithReadOnly())
	if err != nil {
		return nil, fmt.Errorf("open diff: %w", err)
	}
	defer conn.Close()

	var rows []differenceRow
	if err := conn.Select(&rows, "SELECT category, path FROM differences ORDER BY path"); err != nil {
		return nil, fmt.Errorf("diff %s: %w", path, err)
	}

	result := &diff.Result{}
	for _, row := range rows {
		switch row.Category {
		case categorySourceOnly:
			result.SourceOnlyPaths = append(result.SourceOnlyPaths, row.Path)
		case categoryDestinationOnly:
			result.DestinationOnlyPaths = append(result.DestinationOnlyPaths, row.Path)
		case categoryHashMismatch:
			result.HashMismatchPaths = append(result.HashMismatchPaths, row.Path)
		default:
			return nil, fmt.Errorf("%w: unknown category %q", ErrCorrupt, row.Category)
		}
	}
	if err := validateDiff(result); err != nil {
		return nil, err
	}
	return result.Normalize(), nil
}

// withTx opens the database at path, creates schema and runs fn in a single transaction.
func withTx(path, schema string, fn func(tx *sqlx.Tx) error) error {
	conn, err := db.Open(db.WithPath(path))
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(schema); err != nil {
		tx.Rollback()
		return fmt.Errorf("create schema: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return conn.Close()
}

// Package sqlite is the embedded single-file backend. A store file carries
// its own identity, file-format version and credential gate in a metadata
// table; the schema itself migrates through PRAGMA user_version.
package sqlite

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - initial schema
const currentSchemaVersion = 1

const (
	metaFileUUID    = "file_uuid"
	metaFileVersion = "file_version"
	metaCredSalt    = "credential_salt"
	metaCredDigest  = "credential_digest"
)

// Store is the durable storage.Store implementation.
type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Store = (*Store)(nil)

// Open creates or opens the store file at path. On an existing file the
// credential gate runs before the version gate: a bad password fails with
// errs.ErrWrongCredentials, an unsupported file-format version with
// errs.ErrVersionMismatch. The engine never reaches "open" on either.
func Open(path, password string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrPersistence, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect %s: %v", errs.ErrPersistence, path, err)
	}

	// SQLite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY between the engine's short transactions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := initOrVerifyMetadata(db, password); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// FileVersion reads the file-format version from the file's metadata without
// loading any entity state. Usable as a pre-flight compatibility check.
func FileVersion(path, password string) (float64, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", errs.ErrPersistence, path, err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return 0, fmt.Errorf("%w: connect %s: %v", errs.ErrPersistence, path, err)
	}
	if err := verifyCredentials(db, password); err != nil {
		return 0, err
	}
	return readVersion(db)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the file path this store was opened at.
func (s *Store) Path() string { return s.path }

// SaveInto writes a compacted copy of the store to dst using VACUUM INTO.
// The copy is transactionally consistent with the state at the time the
// statement runs.
func (s *Store) SaveInto(ctx context.Context, dst string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("%w: save into %s: %v", errs.ErrPersistence, dst, err)
	}
	return nil
}

func (s *Store) Info(ctx context.Context) (storage.Info, error) {
	id, err := readMeta(s.db, metaFileUUID)
	if err != nil {
		return storage.Info{}, err
	}
	v, err := readVersion(s.db)
	if err != nil {
		return storage.Info{}, err
	}
	_ = ctx
	return storage.Info{UUID: id, Version: v}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%w: %s: %v", errs.ErrPersistence, pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("%w: apply schema: %v", errs.ErrPersistence, err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("%w: read user_version: %v", errs.ErrPersistence, err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("%w: set user_version: %v", errs.ErrPersistence, err)
		}
	}
	return nil
}

// initOrVerifyMetadata seeds identity, version and credentials on a fresh
// file, and gates credentials then version on an existing one.
func initOrVerifyMetadata(db *sql.DB, password string) error {
	existing, err := hasMeta(db, metaFileUUID)
	if err != nil {
		return err
	}
	if !existing {
		salt := make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("%w: salt: %v", errs.ErrPersistence, err)
		}
		rows := map[string]string{
			metaFileUUID:    uuid.NewString(),
			metaFileVersion: strconv.FormatFloat(storage.CurrentFileVersion, 'f', -1, 64),
			metaCredSalt:    hex.EncodeToString(salt),
			metaCredDigest:  digest(salt, password),
		}
		for k, v := range rows {
			if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
				return fmt.Errorf("%w: seed metadata: %v", errs.ErrPersistence, err)
			}
		}
		return nil
	}
	if err := verifyCredentials(db, password); err != nil {
		return err
	}
	v, err := readVersion(db)
	if err != nil {
		return err
	}
	if v > storage.CurrentFileVersion || v < storage.MinimumFileVersion {
		return fmt.Errorf("%w: file version %g, supported %g..%g",
			errs.ErrVersionMismatch, v, storage.MinimumFileVersion, storage.CurrentFileVersion)
	}
	return nil
}

func verifyCredentials(db *sql.DB, password string) error {
	saltHex, err := readMeta(db, metaCredSalt)
	if err != nil {
		return err
	}
	want, err := readMeta(db, metaCredDigest)
	if err != nil {
		return err
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return fmt.Errorf("%w: malformed credential salt", errs.ErrPersistence)
	}
	if digest(salt, password) != want {
		return errs.ErrWrongCredentials
	}
	return nil
}

func digest(salt []byte, password string) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

func readVersion(db *sql.DB) (float64, error) {
	raw, err := readMeta(db, metaFileVersion)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed file version %q", errs.ErrVersionMismatch, raw)
	}
	return v, nil
}

func hasMeta(db *sql.DB, key string) (bool, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM metadata WHERE key = ?`, key).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: read metadata: %v", errs.ErrPersistence, err)
	}
	return n > 0, nil
}

func readMeta(db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: metadata key %q missing", errs.ErrPersistence, key)
	}
	if err != nil {
		return "", fmt.Errorf("%w: read metadata: %v", errs.ErrPersistence, err)
	}
	return v, nil
}

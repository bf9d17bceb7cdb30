package stores

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/fleetcheck/internal/data/db"
)

// busyRetries and busyBackoff bound retries of writes that hit SQLITE_BUSY
// after the connection's own busy timeout has run out.
const (
	busyRetries = 3
	busyBackoff = 100 * time.Millisecond
)

// corruptMessages are driver error texts that mean the file is unusable.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsBusyError reports whether err is SQLITE_BUSY or one of its extended codes.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code&0xff == sqlite3.SQLITE_BUSY
}

// IsCorruptionError reports whether err means the database file is damaged
// or not a database at all.
func IsCorruptionError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
		return false
	}

	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// retryBusy runs fn, retrying with a linear backoff while it fails with
// SQLITE_BUSY. Other errors are returned at once.
func retryBusy(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !IsBusyError(err) || attempt > busyRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * busyBackoff):
		}
	}
}

// RecoverFromCorruption moves the database and its WAL and SHM files aside
// as <file>.corrupt.<timestamp> so a fresh database can be created. Side
// files that cannot be moved are removed, since SQLite would otherwise
// replay them into the new database.
func RecoverFromCorruption(dataDir string) error {
	dbPath := filepath.Join(dataDir, db.FileName)
	backup := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	if err := os.Rename(dbPath, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("back up corrupted database: %w", err)
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		side := dbPath + suffix
		if _, err := os.Stat(side); err != nil {
			continue
		}
		if err := os.Rename(side, backup+suffix); err != nil {
			if rmErr := os.Remove(side); rmErr != nil {
				return fmt.Errorf("back up or remove %s file: %w", strings.TrimPrefix(suffix, "-"), err)
			}
		}
	}

	return nil
}

package database

import "gorm.io/gorm"

// LockKey takes a transaction-scoped advisory lock on key. It guards check-then-insert
// sequences that have no existing row to lock. SQLite serializes writers itself, so
// the call is a no-op there.
func LockKey(tx *gorm.DB, key string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error
}

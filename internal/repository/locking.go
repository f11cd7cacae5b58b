package repository

import "gorm.io/gorm/clause"

// SQLite ignores the clause; PostgreSQL takes a row lock.
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

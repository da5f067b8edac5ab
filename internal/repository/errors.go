// Package repository defines the MySQL data access layer and the error
// values shared by every repository.  Handlers and services use these
// sentinels to distinguish failure scenarios without inspecting driver
// errors.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write cannot be applied because of
// existing state: a duplicate unique key, or a conditional update whose
// precondition no longer holds.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is a ErrConflict specialised for user registration.
var ErrEmailExists = errors.New("email already exists")

// ErrNoCredential rejects a user row with neither a password nor a Google id.
var ErrNoCredential = errors.New("user has no credential")

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// notFound maps sql.ErrNoRows onto ErrNotFound and leaves other errors as is.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

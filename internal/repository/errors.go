// Package repository wraps the SQL tables behind small structs. Methods
// take a context and, where a caller needs atomicity, a *sql.Tx variant
// is provided with the Tx suffix. Sentinel errors below let handlers
// tell missing rows and conflicting state apart.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be
// performed because of dependent records, such as removing a movie
// that already sold tickets. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNoChange is returned by updates that matched a row but changed nothing.
var ErrNoChange = errors.New("no change")

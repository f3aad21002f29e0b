// Package sqlite persists the upload journal in a SQLite database with
// embedded schema migrations.
package sqlite

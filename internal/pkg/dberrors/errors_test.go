package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintDetection(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "books_isbn_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "students_program_id_fkey"}

	assert.True(t, IsDuplicateConstraintError(dup, "books_isbn_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "other_key"))
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(fk))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk, "students_program_id_fkey"))
	assert.False(t, IsForeignKeyViolation(fk, "employees_campus_id_fkey"))
	assert.False(t, IsForeignKeyViolation(errors.New("plain")))

	assert.True(t, IsNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)))
}

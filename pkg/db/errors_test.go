package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_stores_owner_domain"}

	if !IsUniqueViolation(dup, "idx_stores_owner_domain") {
		t.Fatal("matching constraint should be detected")
	}
	if !IsUniqueViolation(fmt.Errorf("persist store: %w", dup), "idx_stores_owner_domain") {
		t.Fatal("wrapped driver error should be detected")
	}
	if !IsUniqueViolation(dup, "") {
		t.Fatal("empty constraint matches any unique violation")
	}
	if IsUniqueViolation(dup, "idx_stores_owner_primary") {
		t.Fatal("different constraint must not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503", ConstraintName: "idx_stores_owner_domain"}, "idx_stores_owner_domain") {
		t.Fatal("foreign key violations are not unique violations")
	}
	if IsUniqueViolation(errors.New("duplicate key value violates unique constraint"), "") {
		t.Fatal("message text alone is not a unique violation")
	}
}

func TestIsUniqueViolationPQDriver(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "idx_stores_owner_primary"}

	if !IsUniqueViolation(fmt.Errorf("persist store: %w", dup), "idx_stores_owner_primary") {
		t.Fatal("pq unique violation should be detected")
	}
	if IsUniqueViolation(dup, "idx_stores_owner_domain") {
		t.Fatal("different constraint must not match")
	}
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	if !IsUniqueViolation(fmt.Errorf("insert payment: %w", dup)) {
		t.Error("IsUniqueViolation(wrapped 23505) = false, want true")
	}
	fk := &pq.Error{Code: "23503"}
	if IsUniqueViolation(fk) {
		t.Error("IsUniqueViolation(23503) = true, want false")
	}
	if IsUniqueViolation(errors.New("duplicate")) {
		t.Error("IsUniqueViolation(plain error) = true, want false")
	}
}

func TestIsNoRows(t *testing.T) {
	t.Parallel()

	if !IsNoRows(fmt.Errorf("get job: %w", sql.ErrNoRows)) {
		t.Error("IsNoRows(wrapped ErrNoRows) = false, want true")
	}
	if IsNoRows(errors.New("boom")) {
		t.Error("IsNoRows(other) = true, want false")
	}
}

package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsWriteConflict(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	if !IsWriteConflict(serialization) {
		t.Fatal("serialization failure is a write conflict")
	}
	deadlock := &pgconn.PgError{Code: "40P01"}
	if !IsWriteConflict(fmt.Errorf("saving: %w", deadlock)) {
		t.Fatal("wrapped deadlock is a write conflict")
	}
	if IsWriteConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not a write conflict")
	}
	if !IsWriteConflict(errors.New("stale contract payment version")) {
		t.Fatal("optimistic stale-version error is a write conflict")
	}
	if IsWriteConflict(nil) {
		t.Fatal("nil is not a conflict")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_contract_payments_invoice_number"}
	if !IsUniqueViolation(pgErr, "invoice_number") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pgErr, "contract_number") {
		t.Fatal("unexpected constraint match")
	}
	if !IsUniqueViolation(errors.New(`duplicate key value violates unique constraint`), "") {
		t.Fatal("expected message match")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(gorm.ErrRecordNotFound) {
		t.Fatal("gorm sentinel should match")
	}
	if IsNotFound(errors.New("other")) {
		t.Fatal("plain errors should not match")
	}
}

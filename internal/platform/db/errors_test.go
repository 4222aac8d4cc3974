package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert plan: %w", &pgconn.PgError{Code: "23505", ConstraintName: "plans_plan_number_key"})

	if !IsUniqueViolation(err) {
		t.Error("expected unique violation")
	}
	if !IsUniqueViolation(err, "plans_plan_number_key") {
		t.Error("expected match on constraint name")
	}
	if IsUniqueViolation(err, "staffs_username_key") {
		t.Error("unexpected match on other constraint")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error is not a unique violation")
	}
}

func TestIsForeignKeyAndCheckViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected fk violation")
	}
	if !IsCheckViolation(&pgconn.PgError{Code: "23514"}) {
		t.Error("expected check violation")
	}
	if IsCheckViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violation is not a check violation")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Error("expected wrapped ErrNoRows to match")
	}
	if IsNoRows(nil) {
		t.Error("nil is not ErrNoRows")
	}
}

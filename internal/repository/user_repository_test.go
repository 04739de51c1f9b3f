package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/kestrelhq/kestrel/internal/models"
)

var userColumns = []string{
	"id", "organization_id", "user_type_id", "name", "email", "password_hash",
	"phone_number", "active", "last_login_at", "reset_token_hash",
	"reset_token_expires_at", "created_at", "updated_at",
}

func newUserRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(
		"usr-a1B2c3D4e5", "org-f6G7h8I9j0", "utp-k1L2m3N4o5", "Jane Doe",
		"jane@acme.test", "$2a$10$hash", "+15550100", true, nil, nil, nil, now, now,
	)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	repo := NewUserWriteRepository(db)
	err = repo.Create(&models.User{
		ID:             "usr-a1B2c3D4e5",
		OrganizationID: "org-f6G7h8I9j0",
		UserTypeID:     "utp-k1L2m3N4o5",
		Name:           "Jane Doe",
		Email:          "jane@acme.test",
		PasswordHash:   "$2a$10$hash",
		Active:         true,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs("jane@acme.test").
		WillReturnRows(newUserRow(now))

	repo := NewUserWriteRepository(db)
	user, err := repo.GetByEmail("jane@acme.test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "usr-a1B2c3D4e5" {
		t.Errorf("expected usr-a1B2c3D4e5, got %s", user.ID)
	}
	if user.PasswordHash != "$2a$10$hash" {
		t.Errorf("expected password hash to be populated, got %q", user.PasswordHash)
	}
	if user.PhoneNumber != "+15550100" {
		t.Errorf("expected phone number, got %q", user.PhoneNumber)
	}
	if user.LastLoginAt != nil {
		t.Errorf("expected nil last login, got %v", user.LastLoginAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs("usr-missing000").
		WillReturnRows(sqlmock.NewRows(userColumns))

	repo := NewUserWriteRepository(db)
	if _, err := repo.GetByID("usr-missing000"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE users SET deleted_at").
		WithArgs("usr-missing000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserWriteRepository(db)
	if err := repo.Delete("usr-missing000"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserCountByUserType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("org-f6G7h8I9j0", "utp-k1L2m3N4o5").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	repo := NewUserWriteRepository(db)
	count, err := repo.CountByUserType("org-f6G7h8I9j0", "utp-k1L2m3N4o5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserUpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE users").
		WithArgs("usr-a1B2c3D4e5", "$2a$10$newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserWriteRepository(db)
	if err := repo.UpdatePassword("usr-a1B2c3D4e5", "$2a$10$newhash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

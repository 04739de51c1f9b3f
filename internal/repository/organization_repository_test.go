package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/kestrelhq/kestrel/internal/models"
)

func TestOrganizationCreateDuplicateSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO organizations").WillReturnError(&pq.Error{Code: "23505"})

	repo := NewOrganizationWriteRepository(db)
	err = repo.Create(&models.Organization{
		ID:        "org-f6G7h8I9j0",
		Name:      "Acme",
		Slug:      "acme",
		Email:     "ops@acme.test",
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("expected ErrSlugExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOrganizationGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM organizations").
		WithArgs("org-f6G7h8I9j0").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "email", "phone_number", "active", "created_at", "updated_at",
		}).AddRow("org-f6G7h8I9j0", "Acme", "acme", "ops@acme.test", nil, true, now, now))

	repo := NewOrganizationWriteRepository(db)
	org, err := repo.GetByID("org-f6G7h8I9j0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Slug != "acme" {
		t.Errorf("expected slug acme, got %s", org.Slug)
	}
	if org.PhoneNumber != "" {
		t.Errorf("expected empty phone number, got %q", org.PhoneNumber)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserTypeCreateDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO user_types").WillReturnError(&pq.Error{Code: "23505"})

	repo := NewUserTypeWriteRepository(db)
	err = repo.Create(&models.UserType{
		ID:             "utp-k1L2m3N4o5",
		OrganizationID: "org-f6G7h8I9j0",
		Name:           "admin",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
	if !errors.Is(err, ErrUserTypeNameExists) {
		t.Errorf("expected ErrUserTypeNameExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserTypeDeleteScopedToOrganization(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE user_types SET deleted_at").
		WithArgs("utp-k1L2m3N4o5", "org-other00000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserTypeWriteRepository(db)
	err = repo.Delete("org-other00000", "utp-k1L2m3N4o5")
	if !errors.Is(err, ErrUserTypeNotFound) {
		t.Errorf("expected ErrUserTypeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

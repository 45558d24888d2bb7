package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newUserMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ada@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "ada@example.com", "Ada", "secret", "user", 4)
	if err != ErrEmailExists {
		t.Fatalf("Create = %v, want ErrEmailExists", err)
	}
}

func TestCreateNormalizesEmail(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("ada@example.com", "Ada", sqlmock.AnyArg(), "user").
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := repo.Create(context.Background(), "  ADA@Example.COM ", "Ada", "secret", "user", 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 3 {
		t.Errorf("Create returned id %d, want 3", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateRoleChecksExistence(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs("admin", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM users`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // no rows

	if err := repo.UpdateRole(context.Background(), 9, "admin"); err != ErrUserNotFound {
		t.Fatalf("UpdateRole = %v, want ErrUserNotFound", err)
	}
}

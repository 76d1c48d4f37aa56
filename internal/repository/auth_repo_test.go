package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockAdminRepo(t *testing.T) (*AdminRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewAdminRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestAdminRepository_Create(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		passwordHash   string
		mockExpect     func(sqlmock.Sqlmock)
		wantID         int
		wantErr        bool
		errContainsStr string
	}{
		{
			name:         "success",
			username:     "operator",
			passwordHash: "h123",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertAdminSQL)).
					WithArgs("operator", "h123").
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name:         "exec error",
			username:     "ops2",
			passwordHash: "h456",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertAdminSQL)).
					WithArgs("ops2", "h456").
					WillReturnError(errors.New("db exec failed"))
			},
			wantErr:        true,
			errContainsStr: "insert admin",
		},
		{
			name:         "last insert id error",
			username:     "ops3",
			passwordHash: "h789",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertAdminSQL)).
					WithArgs("ops3", "h789").
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			wantErr:        true,
			errContainsStr: "get last insert id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockAdminRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			id, err := repo.Create(tt.username, tt.passwordHash)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContainsStr != "" && !regexp.MustCompile(regexp.QuoteMeta(tt.errContainsStr)).MatchString(err.Error()) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errContainsStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Fatalf("expected id %d, got %d", tt.wantID, id)
			}
		})
	}
}

func TestAdminRepository_GetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newMockAdminRepo(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(7, "operator", "hash")
		mock.ExpectQuery(regexp.QuoteMeta(selectAdminByUsernameSQL)).
			WithArgs("operator").
			WillReturnRows(rows)

		a, err := repo.GetByUsername("operator")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a == nil || a.ID != 7 || a.Username != "operator" || a.PasswordHash != "hash" {
			t.Fatalf("unexpected account: %+v", a)
		}
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		repo, mock, cleanup := newMockAdminRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectAdminByUsernameSQL)).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}))

		a, err := repo.GetByUsername("ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != nil {
			t.Fatalf("expected nil account, got %+v", a)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, cleanup := newMockAdminRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectAdminByUsernameSQL)).
			WithArgs("operator").
			WillReturnError(errors.New("boom"))

		if _, err := repo.GetByUsername("operator"); err == nil {
			t.Fatalf("expected error, got nil")
		}
	})
}

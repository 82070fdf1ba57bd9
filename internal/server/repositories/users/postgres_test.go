package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	qInsert = `(?s)^INSERT\s+INTO\s+users\s+\(id,\s*name,\s*password_hash\)\s+VALUES\s+\(\$1,\s*\$2,\s*\$3\)\s+RETURNING\s+created_at$`
	qGet    = `(?s)^SELECT\s+id,\s*name,\s*password_hash,\s*deleted,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	qUpdate = `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,\s*password_hash\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+NOT\s+deleted$`
	qDelete = `^UPDATE\s+users\s+SET\s+deleted\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s+AND\s+NOT\s+deleted$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(qInsert).
		WithArgs("u1", "Alice", "$2a$hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{ID: "u1", Name: "Alice", PasswordHash: "$2a$hash"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("created_at not scanned: %v", u.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{ID: "u1"})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.User{ID: "u1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectQuery(qGet).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash", "deleted", "created_at"}).
			AddRow("u1", "Alice", "h", true, created))

	u, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || u.Name != "Alice" || u.PasswordHash != "h" || !u.Deleted {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qGet).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qGet).WillReturnError(errors.New("timeout"))

	_, err := repo.Get(context.Background(), "u1")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected generic db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := &models.User{ID: "u1", Name: "Alice B", PasswordHash: "$2a$new"}

	mock.ExpectExec(qUpdate).WithArgs("u1", "Alice B", "$2a$new").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	mock.ExpectExec(qUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Update(context.Background(), u); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Update on deleted user: got %v, want ErrorNotFound", err)
	}

	mock.ExpectExec(qUpdate).WillReturnError(errors.New("boom"))
	if err := repo.Update(context.Background(), u); err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Update db error: got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		execErr error
		wantErr error
	}{
		{name: "deleted", rows: 1},
		{name: "missing or already deleted", rows: 0, wantErr: common.ErrorNotFound},
		{name: "db error", execErr: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(qDelete).WithArgs("u1")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.rows))
			}

			err := repo.SoftDelete(context.Background(), "u1")
			switch {
			case tt.execErr != nil:
				if err == nil {
					t.Fatal("expected error")
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

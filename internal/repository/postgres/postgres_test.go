package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		conn.Close()
	})
	return newDB(conn), mock
}

const (
	insertUserQuery  = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password,\s*salt\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id\s*$`
	selectUserByID   = `(?s)^SELECT\s+id,\s*username,\s*password,\s*salt\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	selectUserByName = `(?s)^SELECT\s+id,\s*username,\s*password,\s*salt\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`
	insertPostQuery  = `(?s)^INSERT\s+INTO\s+posts\s*\(author,\s*title,\s*content,\s*date\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`
	listPostsQuery   = `(?s)^SELECT\s+id,\s*title,\s*date\s+FROM\s+posts\s+ORDER\s+BY\s+date\s+DESC,\s*id\s+DESC\s*$`
	selectPostQuery  = `(?s)^SELECT\s+id,\s*author,\s*title,\s*content,\s*date\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1\s*$`
	updatePostQuery  = `(?s)^UPDATE\s+posts\s+SET\s+title\s*=\s*\$1,\s*content\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s*$`
	deletePostQuery  = `(?s)^DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1\s*$`
)

// =========================================================================
// USERS
// =========================================================================

func TestCreateUser_Success(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice", []byte("hash"), []byte("salt")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	u := &model.User{Username: "alice", PasswordHash: []byte("hash"), Salt: []byte("salt")}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if u.ID != 7 {
		t.Errorf("ID = %d, want 7", u.ID)
	}
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice", []byte("hash"), []byte("salt")).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key value"})

	err := db.CreateUser(context.Background(), &model.User{Username: "alice", PasswordHash: []byte("hash"), Salt: []byte("salt")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_DBError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice", []byte("hash"), []byte("salt")).
		WillReturnError(errors.New("db down"))

	err := db.CreateUser(context.Background(), &model.User{Username: "alice", PasswordHash: []byte("hash"), Salt: []byte("salt")})
	if err == nil || errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected plain db error, got %v", err)
	}
}

func TestGetUserByUsername_Found(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(selectUserByName).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "salt"}).
			AddRow(int64(1), "alice", []byte("hash"), []byte("salt")))

	got, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername error: %v", err)
	}
	if got.ID != 1 || got.Username != "alice" || string(got.Salt) != "salt" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(selectUserByName).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := db.GetUserByUsername(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(selectUserByID).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "salt"}))

	_, err := db.GetUserByID(context.Background(), 9)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// POSTS
// =========================================================================

func TestCreatePost_StoresMillis(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.UnixMilli(1_700_000_000_123)

	mock.ExpectQuery(insertPostQuery).
		WithArgs(int64(1), "Hi", "Hello", int64(1_700_000_000_123)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	post := &model.Post{AuthorID: 1, Title: "Hi", Content: "Hello", CreatedAt: at}
	if err := db.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("CreatePost error: %v", err)
	}
	if post.ID != 3 {
		t.Errorf("ID = %d, want 3", post.ID)
	}
}

func TestListPostSummaries(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(listPostsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date"}).
			AddRow(int64(2), "newer", int64(2000)).
			AddRow(int64(1), "older", int64(1000)))

	got, err := db.ListPostSummaries(context.Background())
	if err != nil {
		t.Fatalf("ListPostSummaries error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "newer" || got[1].Title != "older" {
		t.Fatalf("unexpected summaries: %+v", got)
	}
	if !got[1].CreatedAt.Equal(time.UnixMilli(1000)) {
		t.Errorf("CreatedAt = %v, want %v", got[1].CreatedAt, time.UnixMilli(1000))
	}
}

func TestListPostSummaries_Empty(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(listPostsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date"}))

	got, err := db.ListPostSummaries(context.Background())
	if err != nil {
		t.Fatalf("ListPostSummaries error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", got)
	}
}

func TestGetPostByID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(selectPostQuery).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "title", "content", "date"}).
			AddRow(int64(1), int64(4), "Hi", "Hello", int64(1_700_000_000_000)))

	got, err := db.GetPostByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetPostByID error: %v", err)
	}
	if got.AuthorID != 4 || got.Title != "Hi" || got.Content != "Hello" {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.CreatedAt.UnixMilli() != 1_700_000_000_000 {
		t.Errorf("CreatedAt millis = %d", got.CreatedAt.UnixMilli())
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(selectPostQuery).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := db.GetPostByID(context.Background(), 5)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePost(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(updatePostQuery).
		WithArgs("new", "body", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := db.UpdatePost(context.Background(), &model.Post{ID: 1, Title: "new", Content: "body"}); err != nil {
		t.Fatalf("UpdatePost error: %v", err)
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(updatePostQuery).
		WithArgs("new", "body", int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.UpdatePost(context.Background(), &model.Post{ID: 8, Title: "new", Content: "body"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeletePost(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(deletePostQuery).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deletePostQuery).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := db.DeletePost(context.Background(), 1); err != nil {
		t.Fatalf("DeletePost error: %v", err)
	}
	if err := db.DeletePost(context.Background(), 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second DeletePost error = %v, want ErrNotFound", err)
	}
}

func TestDeletePost_DBError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(deletePostQuery).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	err := db.DeletePost(context.Background(), 1)
	if err == nil || errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected plain db error, got %v", err)
	}
}

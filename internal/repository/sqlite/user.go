package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
	"github.com/sakif/markdown-blog/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user and sets user.ID from the generated rowid.
//
// The UNIQUE constraint on username is the authority on duplicates: two
// concurrent signups may both pass the service's pre-check, and the loser
// gets apperror.ErrConflict here.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password, salt) VALUES (?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.Salt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUserByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password, salt FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return &u, nil
}

// GetUserByUsername retrieves a user by exact (case-sensitive) username.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password, salt FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}

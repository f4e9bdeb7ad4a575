package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
)

func (d *DB) CreateUser(ctx context.Context, user *model.User) error {
	query :=
		`INSERT INTO users (username, password, salt)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	err := d.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Salt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("postgres: inserting user %q: %w", user.Username, err)
	}

	return nil
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query :=
		`SELECT id, username, password, salt FROM users
		 WHERE id = $1`

	user := &model.User{}
	err := d.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("postgres: getting user %d: %w", id, err)
	}

	return user, nil
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query :=
		`SELECT id, username, password, salt FROM users
		 WHERE username = $1`

	user := &model.User{}
	err := d.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("postgres: getting user %q: %w", username, err)
	}

	return user, nil
}

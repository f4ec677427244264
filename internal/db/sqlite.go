package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fotowand/backend/internal/model"
	_ "modernc.org/sqlite"
)

// SQLite is the single-file credential and book store used for local runs.
type SQLite struct {
	DB *sql.DB
}

func NewSQLite(sqlDB *sql.DB) *SQLite {
	return &SQLite{DB: sqlDB}
}

// OpenSQLite opens path (":memory:" works) and applies the migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// one writer; also keeps ":memory:" on a single connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := MigrateSQLite(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return NewSQLite(sqlDB), nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

func (s *SQLite) CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, username, email, passwordHash, now.Unix(), now.Unix())
	if err != nil {
		return nil, translate(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Unix(now.Unix(), 0).UTC(),
		UpdatedAt:    time.Unix(now.Unix(), 0).UTC(),
	}, nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *SQLite) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
}

func (s *SQLite) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE email = ?
	`, passwordHash, time.Now().UTC().Unix(), email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) ListBooks(ctx context.Context) ([]model.Book, error) {
	rows, err := s.DB.QueryContext(ctx, listBooksQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Pages, &b.Year, &b.ImageURL, &b.Favorite); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *SQLite) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		user             model.User
		created, updated int64
	)
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&created,
		&updated,
	)
	if err != nil {
		return nil, translate(err)
	}
	user.CreatedAt = time.Unix(created, 0).UTC()
	user.UpdatedAt = time.Unix(updated, 0).UTC()
	return &user, nil
}

package store

import (
	"context"
	"database/sql"

	"github.com/01moynul/medistore/internal/models"
)

const userColumns = "id, name, email, password_hash, role, status, phone, created_at, updated_at"

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := s.now()
	query := `INSERT INTO users (name, email, password_hash, role, status, phone, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.q.ExecContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.Phone, now, now)
	if err != nil {
		return mapErr(err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var (
		u     models.User
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	u.Phone = nullString(phone)
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUser(s.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int64, status string) error {
	_, err := s.q.ExecContext(ctx, "UPDATE users SET status = ?, updated_at = ? WHERE id = ?", status, s.now(), id)
	return mapErr(err)
}

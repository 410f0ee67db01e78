package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portfolio/internal/ids"
	"portfolio/internal/models"
)

const adminColumns = `id, email, name, password, created_at, updated_at`

func scanAdmin(row scanner) (*models.Admin, error) {
	var admin models.Admin
	if err := row.Scan(&admin.ID, &admin.Email, &admin.Name, &admin.Password, &admin.CreatedAt, &admin.UpdatedAt); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindAdminByEmail returns the admin with the given normalized email, or nil.
func (db *DB) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	row := db.conn.QueryRowContext(ctx, db.rebind(`SELECT `+adminColumns+` FROM admins WHERE email = ?`), email)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return admin, nil
}

// FindAdminByID returns only the public identity of the admin, or nil.
func (db *DB) FindAdminByID(ctx context.Context, id string) (*models.AdminIdentity, error) {
	row := db.conn.QueryRowContext(ctx, db.rebind(`SELECT id, email, name FROM admins WHERE id = ?`), id)
	var identity models.AdminIdentity
	if err := row.Scan(&identity.ID, &identity.Email, &identity.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin by id: %w", err)
	}
	return &identity, nil
}

// GetAdmin returns the full admin record, including the stored credential, or nil.
func (db *DB) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	row := db.conn.QueryRowContext(ctx, db.rebind(`SELECT `+adminColumns+` FROM admins WHERE id = ?`), id)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// CreateAdmin inserts an admin. password is stored as given; callers hash it.
func (db *DB) CreateAdmin(ctx context.Context, email, name, password string) (*models.Admin, error) {
	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin id: %w", err)
	}
	now := time.Now().UTC()

	query := `INSERT INTO admins (id, email, name, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := db.conn.ExecContext(ctx, db.rebind(query), id, email, name, password, now, now); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return &models.Admin{
		ID:        id,
		Email:     email,
		Name:      name,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (db *DB) UpdateAdminPassword(ctx context.Context, id, password string) error {
	query := `UPDATE admins SET password = ?, updated_at = ? WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, db.rebind(query), password, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return checkAffected(res)
}

func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// ListAdmins returns admins newest first.
func (db *DB) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := []*models.Admin{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

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

const contactSelect = `SELECT id, name, email, subject, message, is_read, created_at FROM contacts`

func scanContact(row scanner) (*models.Contact, error) {
	var c models.Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Read, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) CreateContact(ctx context.Context, name, email, subject, message string) (*models.Contact, error) {
	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact id: %w", err)
	}
	now := time.Now().UTC()

	query := `INSERT INTO contacts (id, name, email, subject, message, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := db.conn.ExecContext(ctx, db.rebind(query), id, name, email, subject, message, false, now); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &models.Contact{
		ID:        id,
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		CreatedAt: now,
	}, nil
}

// ListContacts returns messages newest first.
func (db *DB) ListContacts(ctx context.Context, unreadOnly bool) ([]*models.Contact, error) {
	query := contactSelect
	var args []any
	if unreadOnly {
		query += ` WHERE is_read = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (db *DB) SetContactRead(ctx context.Context, id string, read bool) (*models.Contact, error) {
	res, err := db.conn.ExecContext(ctx, db.rebind(`UPDATE contacts SET is_read = ? WHERE id = ?`), read, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return nil, err
	}

	c, err := scanContact(db.conn.QueryRowContext(ctx, db.rebind(contactSelect+` WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

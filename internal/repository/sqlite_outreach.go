package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
)

// SQLiteOutreachRepo implements OutreachRepo using a SQLite database.
type SQLiteOutreachRepo struct {
	db db.DBTX
}

func NewSQLiteOutreachRepo(conn db.DBTX) *SQLiteOutreachRepo {
	return &SQLiteOutreachRepo{db: conn}
}

const outreachColumns = `id, contact_id, title, due_date, status, path_instance_id, step_index,
	created_at, updated_at`

func (r *SQLiteOutreachRepo) Create(ctx context.Context, o *domain.Outreach) error {
	query := `INSERT INTO outreaches (` + outreachColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.ContactID,
		o.Title,
		formatTime(o.DueDate),
		string(o.Status),
		nullableStrToValue(o.PathInstanceID),
		nullableIntToValue(o.StepIndex),
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting outreach: %w", err)
	}
	return nil
}

func (r *SQLiteOutreachRepo) GetByID(ctx context.Context, id string) (*domain.Outreach, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreaches WHERE id = ?`
	return r.scanOutreach(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteOutreachRepo) ListByContact(ctx context.Context, contactID string) ([]*domain.Outreach, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreaches WHERE contact_id = ? ORDER BY due_date, id`
	return r.list(ctx, query, contactID)
}

func (r *SQLiteOutreachRepo) ListByPathInstance(ctx context.Context, pathInstanceID string) ([]*domain.Outreach, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreaches WHERE path_instance_id = ?
		ORDER BY step_index, due_date, id`
	return r.list(ctx, query, pathInstanceID)
}

func (r *SQLiteOutreachRepo) Update(ctx context.Context, o *domain.Outreach) error {
	query := `UPDATE outreaches SET title = ?, due_date = ?, status = ?, path_instance_id = ?,
		step_index = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		o.Title,
		formatTime(o.DueDate),
		string(o.Status),
		nullableStrToValue(o.PathInstanceID),
		nullableIntToValue(o.StepIndex),
		formatTime(o.UpdatedAt),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating outreach: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("outreach %s: %w", o.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteOutreachRepo) list(ctx context.Context, query string, arg string) ([]*domain.Outreach, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing outreaches: %w", err)
	}
	defer rows.Close()

	var out []*domain.Outreach
	for rows.Next() {
		o, err := r.scanOutreach(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outreaches: %w", err)
	}
	return out, nil
}

func (r *SQLiteOutreachRepo) scanOutreach(row rowScanner) (*domain.Outreach, error) {
	var o domain.Outreach
	var dueDate, status, createdAt, updatedAt string
	var instanceID sql.NullString
	var stepIndex sql.NullInt64

	err := row.Scan(&o.ID, &o.ContactID, &o.Title, &dueDate, &status, &instanceID, &stepIndex,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("outreach: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning outreach: %w", err)
	}
	o.Status = domain.OutreachStatus(status)
	o.PathInstanceID = nullStrPtr(instanceID)
	o.StepIndex = nullIntPtr(stepIndex)
	if o.DueDate, err = parseTime(dueDate, "due_date"); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &o, nil
}

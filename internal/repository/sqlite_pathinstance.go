package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
)

// SQLitePathInstanceRepo implements PathInstanceRepo using a SQLite database.
type SQLitePathInstanceRepo struct {
	db db.DBTX
}

func NewSQLitePathInstanceRepo(conn db.DBTX) *SQLitePathInstanceRepo {
	return &SQLitePathInstanceRepo{db: conn}
}

const pathInstanceColumns = `id, contact_relationship_id, path_id, tier, status, started_at, ended_at`

func (r *SQLitePathInstanceRepo) Create(ctx context.Context, p *domain.PathInstance) error {
	query := `INSERT INTO path_instances (` + pathInstanceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ContactRelationshipID,
		p.PathID,
		p.Tier,
		string(p.Status),
		formatTime(p.StartedAt),
		nullableTimeToString(p.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting path instance: %w", err)
	}
	return nil
}

func (r *SQLitePathInstanceRepo) GetByID(ctx context.Context, id string) (*domain.PathInstance, error) {
	query := `SELECT ` + pathInstanceColumns + ` FROM path_instances WHERE id = ?`
	return r.scanInstance(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLitePathInstanceRepo) ListByRelationship(ctx context.Context, relationshipID string, tier *int) ([]*domain.PathInstance, error) {
	query := `SELECT ` + pathInstanceColumns + ` FROM path_instances
		WHERE contact_relationship_id = ? AND (? IS NULL OR tier = ?)
		ORDER BY started_at, id`
	t := nullableIntToValue(tier)
	rows, err := r.db.QueryContext(ctx, query, relationshipID, t, t)
	if err != nil {
		return nil, fmt.Errorf("listing path instances: %w", err)
	}
	defer rows.Close()

	var instances []*domain.PathInstance
	for rows.Next() {
		p, err := r.scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating path instances: %w", err)
	}
	return instances, nil
}

func (r *SQLitePathInstanceRepo) Update(ctx context.Context, p *domain.PathInstance) error {
	query := `UPDATE path_instances SET status = ?, ended_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(p.Status), nullableTimeToString(p.EndedAt), p.ID)
	if err != nil {
		return fmt.Errorf("updating path instance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("path instance %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLitePathInstanceRepo) scanInstance(row rowScanner) (*domain.PathInstance, error) {
	var p domain.PathInstance
	var status, startedAt string
	var endedAt sql.NullString

	err := row.Scan(&p.ID, &p.ContactRelationshipID, &p.PathID, &p.Tier, &status, &startedAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("path instance: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning path instance: %w", err)
	}
	p.Status = domain.PathStatus(status)
	if p.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	p.EndedAt = parseNullableTime(endedAt)
	return &p, nil
}

// SQLiteStepInstanceRepo implements StepInstanceRepo using a SQLite database.
type SQLiteStepInstanceRepo struct {
	db db.DBTX
}

func NewSQLiteStepInstanceRepo(conn db.DBTX) *SQLiteStepInstanceRepo {
	return &SQLiteStepInstanceRepo{db: conn}
}

func (r *SQLiteStepInstanceRepo) Complete(ctx context.Context, s *domain.StepInstance) error {
	// Legacy rows may exist with a NULL completed_at; fill those in, but never
	// overwrite a real completion time.
	query := `INSERT INTO step_instances (path_instance_id, step_index, step_id, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path_instance_id, step_index) DO UPDATE
		SET completed_at = COALESCE(step_instances.completed_at, excluded.completed_at)`
	_, err := r.db.ExecContext(ctx, query,
		s.PathInstanceID, s.StepIndex, s.StepID, nullableTimeToString(s.CompletedAt))
	if err != nil {
		return fmt.Errorf("completing step instance: %w", err)
	}
	return nil
}

func (r *SQLiteStepInstanceRepo) ListByPathInstance(ctx context.Context, pathInstanceID string) ([]*domain.StepInstance, error) {
	query := `SELECT path_instance_id, step_index, step_id, completed_at FROM step_instances
		WHERE path_instance_id = ? ORDER BY step_index`
	rows, err := r.db.QueryContext(ctx, query, pathInstanceID)
	if err != nil {
		return nil, fmt.Errorf("listing step instances: %w", err)
	}
	defer rows.Close()

	var steps []*domain.StepInstance
	for rows.Next() {
		var s domain.StepInstance
		var completedAt sql.NullString
		if err := rows.Scan(&s.PathInstanceID, &s.StepIndex, &s.StepID, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning step instance: %w", err)
		}
		s.CompletedAt = parseNullableTime(completedAt)
		steps = append(steps, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating step instances: %w", err)
	}
	return steps, nil
}

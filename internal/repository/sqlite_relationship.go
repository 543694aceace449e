package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
)

// SQLiteRelationshipRepo implements RelationshipRepo using a SQLite database.
type SQLiteRelationshipRepo struct {
	db db.DBTX
}

func NewSQLiteRelationshipRepo(conn db.DBTX) *SQLiteRelationshipRepo {
	return &SQLiteRelationshipRepo{db: conn}
}

const relationshipColumns = `id, contact_id, current_level, current_path_id, current_step_index,
	current_path_instance_id, created_at, updated_at`

func (r *SQLiteRelationshipRepo) Create(ctx context.Context, rel *domain.ContactRelationship) error {
	query := `INSERT INTO contact_relationships (` + relationshipColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID,
		rel.ContactID,
		rel.CurrentLevel,
		nullableStrToValue(rel.CurrentPathID),
		nullableIntToValue(rel.CurrentStepIndex),
		nullableStrToValue(rel.CurrentPathInstanceID),
		formatTime(rel.CreatedAt),
		formatTime(rel.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting contact relationship: %w", err)
	}
	for _, sw := range rel.LevelSwitches {
		if err := r.AppendLevelSwitch(ctx, rel.ID, sw); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRelationshipRepo) GetByContactID(ctx context.Context, contactID string) (*domain.ContactRelationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM contact_relationships WHERE contact_id = ?`
	rel, err := r.scanRelationship(r.db.QueryRowContext(ctx, query, contactID))
	if err != nil {
		return nil, err
	}
	rel.LevelSwitches, err = r.listSwitches(ctx, rel.ID)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *SQLiteRelationshipRepo) List(ctx context.Context) ([]*domain.ContactRelationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM contact_relationships ORDER BY contact_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing contact relationships: %w", err)
	}

	var rels []*domain.ContactRelationship
	for rows.Next() {
		rel, err := r.scanRelationship(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating contact relationships: %w", err)
	}
	rows.Close()

	// Switches are loaded after the cursor is closed; inside a transaction
	// the connection cannot serve two result sets at once.
	for _, rel := range rels {
		if rel.LevelSwitches, err = r.listSwitches(ctx, rel.ID); err != nil {
			return nil, err
		}
	}
	return rels, nil
}

func (r *SQLiteRelationshipRepo) Update(ctx context.Context, rel *domain.ContactRelationship) error {
	query := `UPDATE contact_relationships SET
		current_level = ?, current_path_id = ?, current_step_index = ?,
		current_path_instance_id = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rel.CurrentLevel,
		nullableStrToValue(rel.CurrentPathID),
		nullableIntToValue(rel.CurrentStepIndex),
		nullableStrToValue(rel.CurrentPathInstanceID),
		formatTime(rel.UpdatedAt),
		rel.ID,
	)
	if err != nil {
		return fmt.Errorf("updating contact relationship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact relationship %s: %w", rel.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRelationshipRepo) AppendLevelSwitch(ctx context.Context, relationshipID string, sw domain.LevelSwitch) error {
	query := `INSERT INTO level_switches (contact_relationship_id, seq, from_level, to_level, switched_at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?
		FROM level_switches WHERE contact_relationship_id = ?`
	_, err := r.db.ExecContext(ctx, query,
		relationshipID, sw.FromLevel, sw.ToLevel, formatTime(sw.SwitchedAt), relationshipID)
	if err != nil {
		return fmt.Errorf("appending level switch: %w", err)
	}
	return nil
}

func (r *SQLiteRelationshipRepo) listSwitches(ctx context.Context, relationshipID string) ([]domain.LevelSwitch, error) {
	query := `SELECT from_level, to_level, switched_at FROM level_switches
		WHERE contact_relationship_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("listing level switches: %w", err)
	}
	defer rows.Close()

	var switches []domain.LevelSwitch
	for rows.Next() {
		var sw domain.LevelSwitch
		var switchedAt string
		if err := rows.Scan(&sw.FromLevel, &sw.ToLevel, &switchedAt); err != nil {
			return nil, fmt.Errorf("scanning level switch: %w", err)
		}
		if sw.SwitchedAt, err = parseTime(switchedAt, "switched_at"); err != nil {
			return nil, err
		}
		switches = append(switches, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating level switches: %w", err)
	}
	return switches, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRelationshipRepo) scanRelationship(row rowScanner) (*domain.ContactRelationship, error) {
	var rel domain.ContactRelationship
	var pathID, instanceID sql.NullString
	var stepIndex sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&rel.ID, &rel.ContactID, &rel.CurrentLevel, &pathID, &stepIndex,
		&instanceID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contact relationship: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning contact relationship: %w", err)
	}

	rel.CurrentPathID = nullStrPtr(pathID)
	rel.CurrentStepIndex = nullIntPtr(stepIndex)
	rel.CurrentPathInstanceID = nullStrPtr(instanceID)
	if rel.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if rel.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &rel, nil
}

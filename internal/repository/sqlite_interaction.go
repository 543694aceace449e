package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
)

// SQLiteInteractionRepo implements InteractionRepo using a SQLite database.
// Topics are stored as a JSON array.
type SQLiteInteractionRepo struct {
	db db.DBTX
}

func NewSQLiteInteractionRepo(conn db.DBTX) *SQLiteInteractionRepo {
	return &SQLiteInteractionRepo{db: conn}
}

func (r *SQLiteInteractionRepo) Create(ctx context.Context, i *domain.Interaction) error {
	topics := i.Topics
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}

	query := `INSERT INTO interactions (id, contact_id, date, location, topics, warmth,
		strengthened, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		i.ID,
		i.ContactID,
		formatTime(i.Date),
		i.Location,
		string(topicsJSON),
		i.Warmth,
		boolToInt(i.Strengthened),
		i.Note,
		formatTime(i.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

// ListByContact returns interactions newest first.
func (r *SQLiteInteractionRepo) ListByContact(ctx context.Context, contactID string) ([]*domain.Interaction, error) {
	query := `SELECT id, contact_id, date, location, topics, warmth, strengthened, note, created_at
		FROM interactions WHERE contact_id = ? ORDER BY date DESC, id`
	rows, err := r.db.QueryContext(ctx, query, contactID)
	if err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Interaction
	for rows.Next() {
		var i domain.Interaction
		var date, topics, createdAt string
		var strengthened int
		if err := rows.Scan(&i.ID, &i.ContactID, &date, &i.Location, &topics, &i.Warmth,
			&strengthened, &i.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &i.Topics); err != nil {
			return nil, fmt.Errorf("decoding topics for interaction %s: %w", i.ID, err)
		}
		i.Strengthened = intToBool(strengthened)
		if i.Date, err = parseTime(date, "date"); err != nil {
			return nil, err
		}
		if i.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteInteractionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM interactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting interaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("interaction %s: %w", id, ErrNotFound)
	}
	return nil
}

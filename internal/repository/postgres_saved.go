package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homescout/api/internal/database"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

const savedColumns = `id, property_id, to_char(saved_date, 'YYYY-MM-DD'), notes`

type postgresSavedRepository struct {
	db *database.Database
}

// NewPostgresSavedRepository creates a SavedRepository backed by PostgreSQL.
// The unique index on property_id backs the one-record-per-property rule.
func NewPostgresSavedRepository(db *database.Database) SavedRepository {
	return &postgresSavedRepository{db: db}
}

func (r *postgresSavedRepository) List(ctx context.Context) ([]models.SavedProperty, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+savedColumns+` FROM saved_properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved properties: %w", err)
	}
	return collectSaved(rows)
}

func (r *postgresSavedRepository) GetByID(ctx context.Context, id int) (*models.SavedProperty, error) {
	query := `SELECT ` + savedColumns + ` FROM saved_properties WHERE id = $1`

	s, err := scanSaved(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("saved record %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query saved record %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSavedRepository) Add(ctx context.Context, propertyID int, notes string) (*models.SavedProperty, error) {
	var saved *models.SavedProperty

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := lockSaved(ctx, tx, propertyID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("property %d: %w", propertyID, ErrAlreadySaved)
		}
		saved, err = insertSaved(ctx, tx, propertyID, notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *postgresSavedRepository) Remove(ctx context.Context, propertyID int) (*models.SavedProperty, error) {
	query := `DELETE FROM saved_properties WHERE property_id = $1 RETURNING ` + savedColumns

	s, err := scanSaved(r.db.Pool.QueryRow(ctx, query, propertyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("saved property %d: %w", propertyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to remove saved property %d: %w", propertyID, err)
	}
	return s, nil
}

func (r *postgresSavedRepository) Toggle(ctx context.Context, propertyID int) (*models.ToggleResult, error) {
	var result *models.ToggleResult

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := lockSaved(ctx, tx, propertyID)
		if err != nil {
			return err
		}

		if existing != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM saved_properties WHERE id = $1`, existing.ID); err != nil {
				return fmt.Errorf("failed to remove saved property %d: %w", propertyID, err)
			}
			result = &models.ToggleResult{Action: models.ToggleRemoved, Property: *existing}
			return nil
		}

		saved, err := insertSaved(ctx, tx, propertyID, "")
		if err != nil {
			return err
		}
		result = &models.ToggleResult{Action: models.ToggleAdded, Property: *saved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresSavedRepository) UpdateNotes(ctx context.Context, id int, notes string) (*models.SavedProperty, error) {
	query := `UPDATE saved_properties SET notes = $2 WHERE id = $1 RETURNING ` + savedColumns

	s, err := scanSaved(r.db.Pool.QueryRow(ctx, query, id, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("saved record %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update notes for saved record %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSavedRepository) Clear(ctx context.Context) ([]models.SavedProperty, error) {
	rows, err := r.db.Pool.Query(ctx, `DELETE FROM saved_properties RETURNING `+savedColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to clear saved properties: %w", err)
	}
	return collectSaved(rows)
}

func (r *postgresSavedRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SeedSaved inserts saved records keeping their ids. Records conflicting on
// id or property id are skipped.
func SeedSaved(ctx context.Context, db *database.Database, saved []models.SavedProperty) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, s := range saved {
			if s.SavedDate == "" {
				s.SavedDate = models.Today()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO saved_properties (id, property_id, saved_date, notes)
				VALUES ($1, $2, $3::text::date, $4)
				ON CONFLICT DO NOTHING`,
				s.ID, s.PropertyID, s.SavedDate, s.Notes,
			)
			if err != nil {
				return fmt.Errorf("failed to seed saved record %d: %w", s.ID, err)
			}
		}
		return nil
	})
}

// lockSaved takes a table lock so the existence check and the following write
// cannot interleave with another add or toggle, then returns the record for
// propertyID or nil.
func lockSaved(ctx context.Context, tx pgx.Tx, propertyID int) (*models.SavedProperty, error) {
	if _, err := tx.Exec(ctx, `LOCK TABLE saved_properties IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("failed to lock saved properties: %w", err)
	}

	query := `SELECT ` + savedColumns + ` FROM saved_properties WHERE property_id = $1`
	s, err := scanSaved(tx.QueryRow(ctx, query, propertyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query saved property %d: %w", propertyID, err)
	}
	return s, nil
}

func insertSaved(ctx context.Context, tx pgx.Tx, propertyID int, notes string) (*models.SavedProperty, error) {
	query := `
		INSERT INTO saved_properties (id, property_id, saved_date, notes)
		SELECT COALESCE(MAX(id), 0) + 1, $1, CURRENT_DATE, $2 FROM saved_properties
		RETURNING ` + savedColumns

	s, err := scanSaved(tx.QueryRow(ctx, query, propertyID, notes))
	if err != nil {
		return nil, fmt.Errorf("failed to insert saved property %d: %w", propertyID, err)
	}
	return s, nil
}

func collectSaved(rows pgx.Rows) ([]models.SavedProperty, error) {
	defer rows.Close()

	results := make([]models.SavedProperty, 0)
	for rows.Next() {
		s, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved property row: %w", err)
		}
		results = append(results, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved property rows: %w", err)
	}
	return results, nil
}

func scanSaved(row pgx.Row) (*models.SavedProperty, error) {
	var s models.SavedProperty
	if err := row.Scan(&s.ID, &s.PropertyID, &s.SavedDate, &s.Notes); err != nil {
		return nil, err
	}
	return &s, nil
}

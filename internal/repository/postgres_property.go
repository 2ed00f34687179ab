package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homescout/api/internal/database"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

const propertyColumns = `
	id,
	title,
	price,
	address,
	city,
	state,
	zip_code,
	bedrooms,
	bathrooms,
	square_feet,
	property_type,
	status,
	year_built,
	images,
	amenities,
	description,
	to_char(listing_date, 'YYYY-MM-DD')`

// postgresPropertyRepository stores listings in the properties table.
type postgresPropertyRepository struct {
	db *database.Database
}

// NewPostgresPropertyRepository creates a PropertyRepository backed by
// PostgreSQL. The schema must already be migrated.
func NewPostgresPropertyRepository(db *database.Database) PropertyRepository {
	return &postgresPropertyRepository{db: db}
}

func (r *postgresPropertyRepository) ListAll(ctx context.Context) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY id`
	return r.queryProperties(ctx, query)
}

func (r *postgresPropertyRepository) GetByID(ctx context.Context, id int) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}
	return p, nil
}

// Search uses strpos rather than LIKE so that % and _ in the term are literal.
func (r *postgresPropertyRepository) Search(ctx context.Context, term string) ([]models.Property, error) {
	if strings.TrimSpace(term) == "" {
		return r.ListAll(ctx)
	}

	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE strpos(lower(title), lower($1)) > 0
			OR strpos(lower(address), lower($1)) > 0
			OR strpos(lower(city), lower($1)) > 0
			OR strpos(lower(state), lower($1)) > 0
			OR strpos(lower(property_type), lower($1)) > 0
			OR strpos(zip_code, $1) > 0
		ORDER BY id
	`
	return r.queryProperties(ctx, query, term)
}

func (r *postgresPropertyRepository) FilterByCriteria(ctx context.Context, criteria models.Criteria) ([]models.Property, error) {
	where, args := criteriaClause(criteria)
	query := `SELECT ` + propertyColumns + ` FROM properties` + where + ` ORDER BY id`
	return r.queryProperties(ctx, query, args...)
}

func (r *postgresPropertyRepository) Create(ctx context.Context, p models.Property) (*models.Property, error) {
	stored := p.Clone()
	if stored.ListingDate == "" {
		stored.ListingDate = models.Today()
	}
	if stored.Status == "" {
		stored.Status = models.StatusForSale
	}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		// Serialize id assignment between concurrent creates
		if _, err := tx.Exec(ctx, `LOCK TABLE properties IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock properties: %w", err)
		}
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM properties`).Scan(&stored.ID); err != nil {
			return fmt.Errorf("failed to assign property id: %w", err)
		}
		return insertProperty(ctx, tx, stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *postgresPropertyRepository) Update(ctx context.Context, id int, patch models.PropertyPatch) (*models.Property, error) {
	var updated models.Property

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 FOR UPDATE`
		existing, err := scanProperty(tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("property %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to load property %d: %w", id, err)
		}

		updated = patch.Apply(*existing)

		_, err = tx.Exec(ctx, `
			UPDATE properties SET
				title = $2, price = $3, address = $4, city = $5, state = $6,
				zip_code = $7, bedrooms = $8, bathrooms = $9, square_feet = $10,
				property_type = $11, status = $12, year_built = $13, images = $14,
				amenities = $15, description = $16, listing_date = $17::text::date
			WHERE id = $1`,
			propertyArgs(updated)...,
		)
		if err != nil {
			return fmt.Errorf("failed to update property %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *postgresPropertyRepository) Delete(ctx context.Context, id int) (*models.Property, error) {
	query := `DELETE FROM properties WHERE id = $1 RETURNING ` + propertyColumns

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete property %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPropertyRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SeedProperties inserts properties keeping their ids. Rows whose id already
// exists are left untouched.
func SeedProperties(ctx context.Context, db *database.Database, properties []models.Property) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, p := range properties {
			if p.ListingDate == "" {
				p.ListingDate = models.Today()
			}
			if p.Status == "" {
				p.Status = models.StatusForSale
			}
			if err := insertProperty(ctx, tx, p, "ON CONFLICT (id) DO NOTHING"); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postgresPropertyRepository) queryProperties(ctx context.Context, query string, args ...interface{}) ([]models.Property, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	results := make([]models.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		results = append(results, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}
	return results, nil
}

func insertProperty(ctx context.Context, tx pgx.Tx, p models.Property, suffix ...string) error {
	query := `
		INSERT INTO properties (
			id, title, price, address, city, state, zip_code, bedrooms, bathrooms,
			square_feet, property_type, status, year_built, images, amenities,
			description, listing_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17::text::date)
	` + strings.Join(suffix, " ")

	if _, err := tx.Exec(ctx, query, propertyArgs(p)...); err != nil {
		return fmt.Errorf("failed to insert property %d: %w", p.ID, err)
	}
	return nil
}

func propertyArgs(p models.Property) []interface{} {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return []interface{}{
		p.ID, p.Title, p.Price, p.Address, p.City, p.State, p.ZipCode,
		p.Bedrooms, p.Bathrooms, p.SquareFeet, p.PropertyType, p.Status,
		p.YearBuilt, images, amenities, p.Description, p.ListingDate,
	}
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Price,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.SquareFeet,
		&p.PropertyType,
		&p.Status,
		&p.YearBuilt,
		&p.Images,
		&p.Amenities,
		&p.Description,
		&p.ListingDate,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// criteriaClause builds a WHERE clause equivalent to filter.Matches.
func criteriaClause(c models.Criteria) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if c.Location != nil {
		add(`(strpos(lower(title), lower(?)) > 0
			OR strpos(lower(address), lower(?)) > 0
			OR strpos(lower(city), lower(?)) > 0
			OR strpos(lower(state), lower(?)) > 0
			OR strpos(zip_code, lower(?)) > 0)`, strings.TrimSpace(*c.Location))
	}
	if c.MinPrice != nil {
		add(`price >= ?`, *c.MinPrice)
	}
	if c.MaxPrice != nil {
		add(`price <= ?`, *c.MaxPrice)
	}
	if c.PropertyType != nil {
		add(`lower(property_type) = lower(?)`, *c.PropertyType)
	}
	if c.MinBeds != nil {
		add(`bedrooms >= ?`, *c.MinBeds)
	}
	if c.MinBaths != nil {
		add(`bathrooms >= ?`, *c.MinBaths)
	}
	if c.MinSqft != nil {
		add(`square_feet >= ?`, *c.MinSqft)
	}
	if c.MaxSqft != nil {
		add(`square_feet <= ?`, *c.MaxSqft)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// LoadCampus reads every location and link.
func (r *LocationRepo) LoadCampus(ctx context.Context) ([]domain.Location, map[string][]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, x, z FROM locations ORDER BY id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query locations: %w", err)
	}
	locations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Location, error) {
		var l domain.Location
		err := row.Scan(&l.ID, &l.Name, &l.X, &l.Z)
		return l, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan locations: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT from_id, to_id FROM location_links ORDER BY from_id, to_id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	adjacency := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, nil, fmt.Errorf("scan link: %w", err)
		}
		adjacency[from] = append(adjacency[from], to)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return locations, adjacency, nil
}

// UpsertBatch inserts or updates many locations using pgx.Batch.
func (r *LocationRepo) UpsertBatch(ctx context.Context, locations []domain.Location) error {
	batch := &pgx.Batch{}
	for _, l := range locations {
		batch.Queue(`
			INSERT INTO locations (id, name, x, z)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, x = EXCLUDED.x, z = EXCLUDED.z, updated_at = now()
		`, l.ID, l.Name, l.X, l.Z)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range locations {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// ReplaceLinks swaps the whole link table for adjacency in one transaction.
func (r *LocationRepo) ReplaceLinks(ctx context.Context, adjacency map[string][]string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM location_links`); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"location_links"},
		[]string{"from_id", "to_id"},
		pgx.CopyFromRows(linkRows(adjacency)),
	); err != nil {
		return fmt.Errorf("copy links: %w", err)
	}

	return tx.Commit(ctx)
}

// linkRows flattens adjacency into sorted, de-duplicated (from, to) rows.
func linkRows(adjacency map[string][]string) [][]any {
	froms := make([]string, 0, len(adjacency))
	for from := range adjacency {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	var rows [][]any
	for _, from := range froms {
		seen := make(map[string]bool)
		for _, to := range adjacency[from] {
			if seen[to] || to == from {
				continue
			}
			seen[to] = true
			rows = append(rows, []any{from, to})
		}
	}
	return rows
}

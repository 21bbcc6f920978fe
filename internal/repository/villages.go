package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

func (s *SQLiteDB) AddVillage(ctx context.Context, v *models.Village) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO villages (name, district, state, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)`,
		v.Name, v.District, v.State, v.Latitude, v.Longitude,
	)
	if err != nil {
		return fmt.Errorf("error inserting village: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading village id: %w", err)
	}
	v.ID = id
	return nil
}

func (s *SQLiteDB) GetVillage(ctx context.Context, id int64) (*models.Village, error) {
	var v models.Village
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, district, state, latitude, longitude
		FROM villages WHERE id = ?`, id,
	).Scan(&v.ID, &v.Name, &v.District, &v.State, &v.Latitude, &v.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying village: %w", err)
	}
	return &v, nil
}

func (s *SQLiteDB) ListVillages(ctx context.Context) ([]models.Village, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, district, state, latitude, longitude
		FROM villages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing villages: %w", err)
	}
	defer rows.Close()

	var villages []models.Village
	for rows.Next() {
		var v models.Village
		if err := rows.Scan(&v.ID, &v.Name, &v.District, &v.State, &v.Latitude, &v.Longitude); err != nil {
			return nil, fmt.Errorf("error scanning village: %w", err)
		}
		villages = append(villages, v)
	}
	return villages, rows.Err()
}

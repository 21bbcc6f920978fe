package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

func (s *SQLiteDB) AddAlert(ctx context.Context, a *models.RuleAlert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts
			(id, village, district, state, clinic_id, asha_worker_id, ngo_id, alert_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Village, a.District, a.State, a.ClinicID, a.ASHAWorkerID, a.NGOID, a.Text, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting alert: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAlert(ctx context.Context, id string) (*models.RuleAlert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, village, district, state, clinic_id, asha_worker_id, ngo_id, alert_text, created_at
		FROM alerts WHERE id = ?`, id)
	return scanAlert(row)
}

func (s *SQLiteDB) LatestAlertByVillageName(ctx context.Context, name string) (*models.RuleAlert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, village, district, state, clinic_id, asha_worker_id, ngo_id, alert_text, created_at
		FROM alerts
		WHERE village = ? COLLATE NOCASE
		ORDER BY created_at DESC
		LIMIT 1`, name)
	return scanAlert(row)
}

func (s *SQLiteDB) ListAlerts(ctx context.Context) ([]models.RuleAlert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, village, district, state, clinic_id, asha_worker_id, ngo_id, alert_text, created_at
		FROM alerts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.RuleAlert
	for rows.Next() {
		var a models.RuleAlert
		if err := rows.Scan(&a.ID, &a.Village, &a.District, &a.State, &a.ClinicID,
			&a.ASHAWorkerID, &a.NGOID, &a.Text, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteDB) AddSummary(ctx context.Context, sum *models.AlertSummary) error {
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alert_summaries
			(id, alert_id, risk_percentage, risk_level, summary_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.AlertID, sum.RiskPercentage, string(sum.RiskLevel), sum.Text, sum.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting alert summary: %w", err)
	}
	return nil
}

func (s *SQLiteDB) SummariesForAlert(ctx context.Context, alertID string) ([]models.AlertSummary, error) {
	return s.querySummaries(ctx, `
		SELECT id, alert_id, risk_percentage, risk_level, summary_text, created_at
		FROM alert_summaries WHERE alert_id = ? ORDER BY created_at DESC`, alertID)
}

func (s *SQLiteDB) ListSummaries(ctx context.Context) ([]models.AlertSummary, error) {
	return s.querySummaries(ctx, `
		SELECT id, alert_id, risk_percentage, risk_level, summary_text, created_at
		FROM alert_summaries ORDER BY created_at DESC`)
}

func (s *SQLiteDB) querySummaries(ctx context.Context, query string, args ...any) ([]models.AlertSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing alert summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.AlertSummary
	for rows.Next() {
		var (
			sum   models.AlertSummary
			level string
		)
		if err := rows.Scan(&sum.ID, &sum.AlertID, &sum.RiskPercentage, &level,
			&sum.Text, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning alert summary: %w", err)
		}
		sum.RiskLevel = models.RiskLevel(level)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func scanAlert(row *sql.Row) (*models.RuleAlert, error) {
	var a models.RuleAlert
	err := row.Scan(&a.ID, &a.Village, &a.District, &a.State, &a.ClinicID,
		&a.ASHAWorkerID, &a.NGOID, &a.Text, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying alert: %w", err)
	}
	return &a, nil
}

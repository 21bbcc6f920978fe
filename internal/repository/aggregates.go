package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

// UpsertAggregate writes the whole snapshot in a single statement, so a
// reader sees either the previous row or the new row, never a partial
// update.
func (s *SQLiteDB) UpsertAggregate(ctx context.Context, a *models.VillageAggregate) error {
	symptoms, err := json.Marshal(a.SymptomDistribution)
	if err != nil {
		return fmt.Errorf("error encoding symptom distribution: %w", err)
	}
	severity, err := json.Marshal(a.SeverityDistribution)
	if err != nil {
		return fmt.Errorf("error encoding severity distribution: %w", err)
	}
	trend, err := json.Marshal(a.MonthlyTrend)
	if err != nil {
		return fmt.Errorf("error encoding monthly trend: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO village_dashboards
			(village_id, total_cases, total_deaths, hospitalized_cases, risk_level,
			 risk_percentage, latest_alert, symptom_distribution, severity_distribution,
			 monthly_trend, awareness_campaign_seen, last_aggregated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(village_id) DO UPDATE SET
			total_cases = excluded.total_cases,
			total_deaths = excluded.total_deaths,
			hospitalized_cases = excluded.hospitalized_cases,
			risk_level = excluded.risk_level,
			risk_percentage = excluded.risk_percentage,
			latest_alert = excluded.latest_alert,
			symptom_distribution = excluded.symptom_distribution,
			severity_distribution = excluded.severity_distribution,
			monthly_trend = excluded.monthly_trend,
			awareness_campaign_seen = excluded.awareness_campaign_seen,
			last_aggregated_at = excluded.last_aggregated_at`,
		a.VillageID, a.TotalCases, a.TotalDeaths, a.HospitalizedCases, string(a.RiskLevel),
		a.RiskPercentage, a.LatestAlert, string(symptoms), string(severity),
		string(trend), a.AwarenessCampaignSeen, a.LastAggregatedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting village dashboard: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAggregate(ctx context.Context, villageID int64) (*models.VillageAggregate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT village_id, total_cases, total_deaths, hospitalized_cases, risk_level,
		       risk_percentage, latest_alert, symptom_distribution, severity_distribution,
		       monthly_trend, awareness_campaign_seen, last_aggregated_at
		FROM village_dashboards WHERE village_id = ?`, villageID)

	a, err := scanAggregate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *SQLiteDB) ListAggregates(ctx context.Context) ([]models.VillageAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT village_id, total_cases, total_deaths, hospitalized_cases, risk_level,
		       risk_percentage, latest_alert, symptom_distribution, severity_distribution,
		       monthly_trend, awareness_campaign_seen, last_aggregated_at
		FROM village_dashboards ORDER BY last_aggregated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing village dashboards: %w", err)
	}
	defer rows.Close()

	var aggregates []models.VillageAggregate
	for rows.Next() {
		a, err := scanAggregate(rows.Scan)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, *a)
	}
	return aggregates, rows.Err()
}

func scanAggregate(scan func(...any) error) (*models.VillageAggregate, error) {
	var (
		a        models.VillageAggregate
		level    string
		symptoms string
		severity string
		trend    string
	)
	err := scan(&a.VillageID, &a.TotalCases, &a.TotalDeaths, &a.HospitalizedCases,
		&level, &a.RiskPercentage, &a.LatestAlert, &symptoms, &severity, &trend,
		&a.AwarenessCampaignSeen, &a.LastAggregatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning village dashboard: %w", err)
	}

	a.RiskLevel = models.RiskLevel(level)
	if err := json.Unmarshal([]byte(symptoms), &a.SymptomDistribution); err != nil {
		return nil, fmt.Errorf("error decoding symptom distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(severity), &a.SeverityDistribution); err != nil {
		return nil, fmt.Errorf("error decoding severity distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(trend), &a.MonthlyTrend); err != nil {
		return nil, fmt.Errorf("error decoding monthly trend: %w", err)
	}
	return &a, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

func (s *SQLiteDB) AddHealthRecord(ctx context.Context, r *models.HealthRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO health_reports
			(village_id, patient_name, age, gender, symptoms, severity,
			 reported_on, water_source, treatment_given, asha_worker_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.VillageID, r.PatientName, r.Age, r.Gender, r.Symptoms, string(r.Severity),
		nullTime(r.ReportedOn), r.WaterSource, r.TreatmentGiven, r.ASHAWorkerID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting health report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading health report id: %w", err)
	}
	r.ID = id
	return nil
}

func (s *SQLiteDB) AddClinicRecord(ctx context.Context, r *models.ClinicRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clinic_reports
			(village_id, typhoid_cases, fever_cases, diarrhea_cases, cholera_cases,
			 hospitalized_cases, deaths_reported, reported_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.VillageID, r.TyphoidCases, r.FeverCases, r.DiarrheaCases, r.CholeraCases,
		r.HospitalizedCases, r.DeathsReported, nullTime(r.ReportedOn), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting clinic report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading clinic report id: %w", err)
	}
	r.ID = id
	return nil
}

func (s *SQLiteDB) AddSurveyRecord(ctx context.Context, r *models.SurveyRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ngo_surveys
			(village_id, ngo_id, clean_drinking_water, toilet_coverage,
			 waste_disposal_system, flooding_waterlogging, awareness_campaigns,
			 typhoid_cases, fever_cases, diarrhea_cases, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.VillageID, r.NGOID, r.CleanDrinkingWater, r.ToiletCoverage,
		r.WasteDisposalSystem, r.FloodingWaterlogging, r.AwarenessCampaigns,
		r.TyphoidCases, r.FeverCases, r.DiarrheaCases, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting ngo survey: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading ngo survey id: %w", err)
	}
	r.ID = id
	return nil
}

func (s *SQLiteDB) HealthRecords(ctx context.Context, villageID int64, w Window) ([]models.HealthRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, village_id, patient_name, age, gender, symptoms, severity,
		       reported_on, water_source, treatment_given, asha_worker_id, created_at
		FROM health_reports
		WHERE village_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		villageID, w.Start, w.End,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing health reports: %w", err)
	}
	defer rows.Close()

	var records []models.HealthRecord
	for rows.Next() {
		var (
			r          models.HealthRecord
			severity   string
			reportedOn sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.VillageID, &r.PatientName, &r.Age, &r.Gender,
			&r.Symptoms, &severity, &reportedOn, &r.WaterSource, &r.TreatmentGiven,
			&r.ASHAWorkerID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning health report: %w", err)
		}
		r.Severity = models.Severity(severity)
		if reportedOn.Valid {
			r.ReportedOn = reportedOn.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteDB) ClinicRecords(ctx context.Context, villageID int64, w Window) ([]models.ClinicRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, village_id, typhoid_cases, fever_cases, diarrhea_cases, cholera_cases,
		       hospitalized_cases, deaths_reported, reported_on, created_at
		FROM clinic_reports
		WHERE village_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		villageID, w.Start, w.End,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing clinic reports: %w", err)
	}
	defer rows.Close()

	var records []models.ClinicRecord
	for rows.Next() {
		var (
			r          models.ClinicRecord
			reportedOn sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.VillageID, &r.TyphoidCases, &r.FeverCases,
			&r.DiarrheaCases, &r.CholeraCases, &r.HospitalizedCases, &r.DeathsReported,
			&reportedOn, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning clinic report: %w", err)
		}
		if reportedOn.Valid {
			r.ReportedOn = reportedOn.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteDB) SurveyRecords(ctx context.Context, villageID int64, w Window) ([]models.SurveyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, village_id, ngo_id, clean_drinking_water, toilet_coverage,
		       waste_disposal_system, flooding_waterlogging, awareness_campaigns,
		       typhoid_cases, fever_cases, diarrhea_cases, created_at
		FROM ngo_surveys
		WHERE village_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		villageID, w.Start, w.End,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing ngo surveys: %w", err)
	}
	defer rows.Close()

	var records []models.SurveyRecord
	for rows.Next() {
		var r models.SurveyRecord
		if err := rows.Scan(&r.ID, &r.VillageID, &r.NGOID, &r.CleanDrinkingWater,
			&r.ToiletCoverage, &r.WasteDisposalSystem, &r.FloodingWaterlogging,
			&r.AwarenessCampaigns, &r.TyphoidCases, &r.FeverCases, &r.DiarrheaCases,
			&r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning ngo survey: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

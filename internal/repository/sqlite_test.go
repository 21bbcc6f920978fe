package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteDB_AddAndGetVillage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := &models.Village{
		Name:      "Rampur",
		District:  "Majuli",
		State:     "Assam",
		Latitude:  26.95,
		Longitude: 94.17,
	}
	if err := db.AddVillage(ctx, v); err != nil {
		t.Fatalf("AddVillage failed: %v", err)
	}
	if v.ID == 0 {
		t.Fatal("village ID not assigned")
	}

	got, err := db.GetVillage(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVillage failed: %v", err)
	}
	if got.Name != "Rampur" || got.District != "Majuli" {
		t.Errorf("got village %+v", got)
	}

	if _, err := db.GetVillage(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing village: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_HealthRecordsWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	inWindow := &models.HealthRecord{
		VillageID:   1,
		PatientName: "Asha Devi",
		Age:         34,
		Symptoms:    "Fever, Cough",
		Severity:    models.SeverityModerate,
		ReportedOn:  now.AddDate(0, 0, -3),
		WaterSource: "Well",
		CreatedAt:   now.AddDate(0, 0, -3),
	}
	outOfWindow := &models.HealthRecord{
		VillageID:   1,
		PatientName: "Ramesh",
		Age:         50,
		Symptoms:    "Headache",
		Severity:    models.SeverityMild,
		CreatedAt:   now.AddDate(0, 0, -40),
	}
	otherVillage := &models.HealthRecord{
		VillageID:   2,
		PatientName: "Sita",
		Age:         8,
		Symptoms:    "Diarrhea",
		Severity:    models.SeveritySevere,
		CreatedAt:   now.AddDate(0, 0, -1),
	}
	for _, r := range []*models.HealthRecord{inWindow, outOfWindow, otherVillage} {
		if err := db.AddHealthRecord(ctx, r); err != nil {
			t.Fatalf("AddHealthRecord failed: %v", err)
		}
	}

	records, err := db.HealthRecords(ctx, 1, Window{Start: now.AddDate(0, 0, -30), End: now})
	if err != nil {
		t.Fatalf("HealthRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.PatientName != "Asha Devi" || got.Severity != models.SeverityModerate {
		t.Errorf("got record %+v", got)
	}
	if got.ReportedOn.IsZero() {
		t.Error("reported_on not round-tripped")
	}
}

func TestSQLiteDB_HealthRecordNullReportedOn(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	r := &models.HealthRecord{
		VillageID:   1,
		PatientName: "Asha Devi",
		Age:         34,
		Symptoms:    "Fever",
		Severity:    models.SeverityMild,
		CreatedAt:   now,
	}
	if err := db.AddHealthRecord(ctx, r); err != nil {
		t.Fatalf("AddHealthRecord failed: %v", err)
	}

	records, err := db.HealthRecords(ctx, 1, Window{Start: now.AddDate(0, 0, -1), End: now})
	if err != nil {
		t.Fatalf("HealthRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].ReportedOn.IsZero() {
		t.Errorf("expected zero ReportedOn, got %v", records[0].ReportedOn)
	}
}

func TestSQLiteDB_ClinicAndSurveyRecords(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	clinic := &models.ClinicRecord{
		VillageID:         1,
		TyphoidCases:      2,
		FeverCases:        5,
		DiarrheaCases:     3,
		CholeraCases:      1,
		HospitalizedCases: 4,
		DeathsReported:    1,
		CreatedAt:         now.AddDate(0, 0, -5),
	}
	if err := db.AddClinicRecord(ctx, clinic); err != nil {
		t.Fatalf("AddClinicRecord failed: %v", err)
	}

	survey := &models.SurveyRecord{
		VillageID:          1,
		NGOID:              9,
		CleanDrinkingWater: false,
		ToiletCoverage:     40,
		AwarenessCampaigns: true,
		TyphoidCases:       1,
		FeverCases:         2,
		DiarrheaCases:      2,
		CreatedAt:          now.AddDate(0, 0, -2),
	}
	if err := db.AddSurveyRecord(ctx, survey); err != nil {
		t.Fatalf("AddSurveyRecord failed: %v", err)
	}

	w := Window{Start: now.AddDate(0, 0, -30), End: now}

	clinics, err := db.ClinicRecords(ctx, 1, w)
	if err != nil {
		t.Fatalf("ClinicRecords failed: %v", err)
	}
	if len(clinics) != 1 {
		t.Fatalf("got %d clinic records, want 1", len(clinics))
	}
	if clinics[0].DiseaseTotal() != 11 {
		t.Errorf("disease total = %d, want 11", clinics[0].DiseaseTotal())
	}

	surveys, err := db.SurveyRecords(ctx, 1, w)
	if err != nil {
		t.Fatalf("SurveyRecords failed: %v", err)
	}
	if len(surveys) != 1 {
		t.Fatalf("got %d surveys, want 1", len(surveys))
	}
	if surveys[0].CleanDrinkingWater || !surveys[0].AwarenessCampaigns {
		t.Errorf("survey flags not round-tripped: %+v", surveys[0])
	}
}

func TestSQLiteDB_LatestAlertByVillageName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	older := &models.RuleAlert{
		ID:        "a1",
		Village:   "Rampur",
		Text:      "High Severity Alert: 4 severe cases found",
		CreatedAt: base,
	}
	newer := &models.RuleAlert{
		ID:        "a2",
		Village:   "RAMPUR",
		Text:      "Health Risk: 3 people received no treatment",
		CreatedAt: base.AddDate(0, 0, 5),
	}
	other := &models.RuleAlert{
		ID:        "a3",
		Village:   "Basantpur",
		Text:      "No outbreak alerts. Situation normal.",
		CreatedAt: base.AddDate(0, 0, 10),
	}
	for _, a := range []*models.RuleAlert{older, newer, other} {
		if err := db.AddAlert(ctx, a); err != nil {
			t.Fatalf("AddAlert failed: %v", err)
		}
	}

	// Lookup is case-insensitive and picks the newest row.
	got, err := db.LatestAlertByVillageName(ctx, "rampur")
	if err != nil {
		t.Fatalf("LatestAlertByVillageName failed: %v", err)
	}
	if got.ID != "a2" {
		t.Errorf("got alert %s, want a2", got.ID)
	}

	if _, err := db.LatestAlertByVillageName(ctx, "Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing village: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_SummariesAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alert := &models.RuleAlert{ID: "a1", Village: "Rampur", Text: "alert"}
	if err := db.AddAlert(ctx, alert); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	first := &models.AlertSummary{
		ID:             "s1",
		AlertID:        "a1",
		RiskPercentage: 64.1,
		RiskLevel:      models.RiskHigh,
		Text:           "first summary",
	}
	second := &models.AlertSummary{
		ID:             "s2",
		AlertID:        "a1",
		RiskPercentage: 71.8,
		RiskLevel:      models.RiskHigh,
		Text:           "regenerated summary",
	}
	for _, s := range []*models.AlertSummary{first, second} {
		if err := db.AddSummary(ctx, s); err != nil {
			t.Fatalf("AddSummary failed: %v", err)
		}
	}

	summaries, err := db.SummariesForAlert(ctx, "a1")
	if err != nil {
		t.Fatalf("SummariesForAlert failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2 (regeneration must not overwrite)", len(summaries))
	}
}

func TestSQLiteDB_UpsertAggregateReplaces(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	first := &models.VillageAggregate{
		VillageID:      1,
		TotalCases:     5,
		RiskLevel:      models.RiskLow,
		RiskPercentage: 22.5,
		SymptomDistribution: map[string]int{
			"fever": 3,
			"cough": 2,
		},
		SeverityDistribution: map[models.Severity]float64{
			models.SeverityMild: 100.0,
		},
		MonthlyTrend: []models.TrendPoint{
			{Month: "2025-07", Count: 2},
			{Month: "2025-08", Count: 3},
		},
		LastAggregatedAt: now,
	}
	if err := db.UpsertAggregate(ctx, first); err != nil {
		t.Fatalf("UpsertAggregate failed: %v", err)
	}

	second := &models.VillageAggregate{
		VillageID:      1,
		TotalCases:     11,
		TotalDeaths:    1,
		RiskLevel:      models.RiskModerate,
		RiskPercentage: 43.5,
		LatestAlert:    "High Severity Alert: 4 severe cases found",
		SymptomDistribution: map[string]int{
			"diarrhea": 6,
			"fever":    5,
		},
		SeverityDistribution: map[models.Severity]float64{
			models.SeverityMild:   60.0,
			models.SeveritySevere: 40.0,
		},
		MonthlyTrend: []models.TrendPoint{
			{Month: "2025-07", Count: 4},
			{Month: "2025-08", Count: 7},
		},
		AwarenessCampaignSeen: true,
		LastAggregatedAt:      now.Add(time.Hour),
	}
	if err := db.UpsertAggregate(ctx, second); err != nil {
		t.Fatalf("second UpsertAggregate failed: %v", err)
	}

	// One row per village: the second write replaced the first wholesale.
	all, err := db.ListAggregates(ctx)
	if err != nil {
		t.Fatalf("ListAggregates failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(all))
	}

	got, err := db.GetAggregate(ctx, 1)
	if err != nil {
		t.Fatalf("GetAggregate failed: %v", err)
	}
	if got.TotalCases != 11 || got.RiskLevel != models.RiskModerate {
		t.Errorf("got aggregate %+v", got)
	}
	if !reflect.DeepEqual(got.SymptomDistribution, second.SymptomDistribution) {
		t.Errorf("symptom distribution = %v, want %v", got.SymptomDistribution, second.SymptomDistribution)
	}
	if !reflect.DeepEqual(got.MonthlyTrend, second.MonthlyTrend) {
		t.Errorf("monthly trend = %v, want %v", got.MonthlyTrend, second.MonthlyTrend)
	}
	if !got.AwarenessCampaignSeen {
		t.Error("awareness flag lost in upsert")
	}

	if _, err := db.GetAggregate(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing aggregate: expected ErrNotFound, got %v", err)
	}
}

package aggregation

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/symptoms"
)

// fakeRecords serves canned records, applying the window filter on
// CreatedAt the way the SQLite repository does.
type fakeRecords struct {
	health  []models.HealthRecord
	clinics []models.ClinicRecord
	surveys []models.SurveyRecord
	err     error
}

func (f *fakeRecords) AddHealthRecord(ctx context.Context, r *models.HealthRecord) error { return nil }
func (f *fakeRecords) AddClinicRecord(ctx context.Context, r *models.ClinicRecord) error { return nil }
func (f *fakeRecords) AddSurveyRecord(ctx context.Context, r *models.SurveyRecord) error { return nil }

func (f *fakeRecords) HealthRecords(ctx context.Context, villageID int64, w repository.Window) ([]models.HealthRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.HealthRecord
	for _, r := range f.health {
		if r.VillageID == villageID && inWindow(r.CreatedAt, w) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) ClinicRecords(ctx context.Context, villageID int64, w repository.Window) ([]models.ClinicRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ClinicRecord
	for _, r := range f.clinics {
		if r.VillageID == villageID && inWindow(r.CreatedAt, w) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) SurveyRecords(ctx context.Context, villageID int64, w repository.Window) ([]models.SurveyRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SurveyRecord
	for _, r := range f.surveys {
		if r.VillageID == villageID && inWindow(r.CreatedAt, w) {
			out = append(out, r)
		}
	}
	return out, nil
}

func inWindow(t time.Time, w repository.Window) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// fakeAlerts holds alerts keyed by lowercase village name.
type fakeAlerts struct {
	latest map[string]*models.RuleAlert
}

func (f *fakeAlerts) AddAlert(ctx context.Context, a *models.RuleAlert) error { return nil }

func (f *fakeAlerts) GetAlert(ctx context.Context, id string) (*models.RuleAlert, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeAlerts) ListAlerts(ctx context.Context) ([]models.RuleAlert, error) { return nil, nil }

func (f *fakeAlerts) AddSummary(ctx context.Context, s *models.AlertSummary) error {
	return nil
}
func (f *fakeAlerts) SummariesForAlert(ctx context.Context, alertID string) ([]models.AlertSummary, error) {
	return nil, nil
}
func (f *fakeAlerts) ListSummaries(ctx context.Context) ([]models.AlertSummary, error) {
	return nil, nil
}

func (f *fakeAlerts) LatestAlertByVillageName(ctx context.Context, name string) (*models.RuleAlert, error) {
	if a, ok := f.latest[lower(name)]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

var testNow = time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

func newTestAggregator(records *fakeRecords, alerts *fakeAlerts) *Aggregator {
	if alerts == nil {
		alerts = &fakeAlerts{}
	}
	return NewAggregator(records, alerts, symptoms.NewNormalizer(nil))
}

func TestAggregateEmptyVillage(t *testing.T) {
	agg := newTestAggregator(&fakeRecords{}, nil)

	got, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if got.TotalCases != 0 || got.TotalDeaths != 0 || got.HospitalizedCases != 0 {
		t.Errorf("empty village should be all zero, got %+v", got)
	}
	if got.RiskPercentage != 0.0 || got.RiskLevel != models.RiskVeryLow {
		t.Errorf("empty village risk = %v %q, want 0 Very Low", got.RiskPercentage, got.RiskLevel)
	}
	if len(got.MonthlyTrend) != 6 {
		t.Errorf("trend has %d points, want 6", len(got.MonthlyTrend))
	}
	if got.LatestAlert != "" {
		t.Errorf("latest alert = %q, want empty", got.LatestAlert)
	}
}

func TestAggregateHealthReportsOnly(t *testing.T) {
	// 5 reports in the current month: 3 Mild, 1 Moderate, 1 Severe.
	records := &fakeRecords{}
	severities := []models.Severity{
		models.SeverityMild, models.SeverityMild, models.SeverityMild,
		models.SeverityModerate, models.SeveritySevere,
	}
	for i, sev := range severities {
		records.health = append(records.health, models.HealthRecord{
			ID:        int64(i + 1),
			VillageID: 1,
			Symptoms:  "Fever and Cough",
			Severity:  sev,
			CreatedAt: testNow.AddDate(0, 0, -1),
		})
	}

	agg := newTestAggregator(records, nil)
	got, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if got.TotalCases != 5 {
		t.Errorf("total cases = %d, want 5", got.TotalCases)
	}
	// severity_score = 8/15*100 = 53.33, case_score = 25,
	// risk = 0.6*53.33 + 0.3*25 = 39.5 -> Moderate.
	if got.RiskPercentage != 39.5 {
		t.Errorf("risk percentage = %v, want 39.5", got.RiskPercentage)
	}
	if got.RiskLevel != models.RiskModerate {
		t.Errorf("risk level = %q, want Moderate", got.RiskLevel)
	}
	if got.SymptomDistribution["fever"] != 5 || got.SymptomDistribution["cough"] != 5 {
		t.Errorf("symptom distribution = %v, want fever:5 cough:5", got.SymptomDistribution)
	}
	wantSeverity := map[models.Severity]float64{
		models.SeverityMild:     60.0,
		models.SeverityModerate: 20.0,
		models.SeveritySevere:   20.0,
	}
	if !reflect.DeepEqual(got.SeverityDistribution, wantSeverity) {
		t.Errorf("severity distribution = %v, want %v", got.SeverityDistribution, wantSeverity)
	}

	current := got.MonthlyTrend[len(got.MonthlyTrend)-1]
	if current.Month != "2025-08" || current.Count != 5 {
		t.Errorf("current month point = %+v, want 2025-08:5", current)
	}
}

func TestAggregateMergesAllThreeSources(t *testing.T) {
	records := &fakeRecords{
		health: []models.HealthRecord{{
			VillageID: 1,
			Symptoms:  "Diarrhoea",
			Severity:  models.SeverityMild,
			CreatedAt: testNow.AddDate(0, 0, -2),
		}},
		clinics: []models.ClinicRecord{{
			VillageID:         1,
			TyphoidCases:      2,
			FeverCases:        3,
			DiarrheaCases:     1,
			CholeraCases:      0,
			HospitalizedCases: 4,
			DeathsReported:    1,
			CreatedAt:         testNow.AddDate(0, 0, -3),
		}},
		surveys: []models.SurveyRecord{{
			VillageID:          1,
			CleanDrinkingWater: false,
			AwarenessCampaigns: true,
			TyphoidCases:       1,
			FeverCases:         1,
			DiarrheaCases:      2,
			CreatedAt:          testNow.AddDate(0, 0, -4),
		}},
	}

	agg := newTestAggregator(records, nil)
	got, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// 1 health row + clinic sum 6 + survey sum 4. Sources may double count
	// the same real-world case; that is the documented behavior.
	if got.TotalCases != 11 {
		t.Errorf("total cases = %d, want 11", got.TotalCases)
	}
	if got.TotalDeaths != 1 {
		t.Errorf("total deaths = %d, want 1", got.TotalDeaths)
	}
	if got.HospitalizedCases != 4 {
		t.Errorf("hospitalized = %d, want 4", got.HospitalizedCases)
	}

	wantSymptoms := map[string]int{
		"diarrhea": 1 + 1 + 2,
		"typhoid":  2 + 1,
		"fever":    3 + 1,
		"cholera":  0,
	}
	if !reflect.DeepEqual(got.SymptomDistribution, wantSymptoms) {
		t.Errorf("symptom distribution = %v, want %v", got.SymptomDistribution, wantSymptoms)
	}

	// Clinic monthly contribution is the summed four-disease total keyed by
	// creation month; health rows contribute 1 each.
	current := got.MonthlyTrend[len(got.MonthlyTrend)-1]
	if current.Count != 1+6 {
		t.Errorf("current month count = %d, want 7", current.Count)
	}

	if !got.AwarenessCampaignSeen {
		t.Error("awareness campaign flag not set")
	}

	// Survey reported no clean drinking water: +20 penalty applies.
	// severity: 1 Mild -> 1/3*100 = 33.333; cases 11 -> 55.
	// 0.6*33.333 + 0.3*55 + 20 = 56.5 -> Moderate.
	if got.RiskPercentage != 56.5 {
		t.Errorf("risk percentage = %v, want 56.5", got.RiskPercentage)
	}
}

func TestAggregateWindowExcludesOldRecords(t *testing.T) {
	records := &fakeRecords{
		health: []models.HealthRecord{
			{VillageID: 1, Severity: models.SeverityMild, CreatedAt: testNow.AddDate(0, 0, -1)},
			{VillageID: 1, Severity: models.SeveritySevere, CreatedAt: testNow.AddDate(0, 0, -200)}, // outside 6*30d
		},
	}

	agg := newTestAggregator(records, nil)
	got, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got.TotalCases != 1 {
		t.Errorf("total cases = %d, want 1 (old record must be excluded)", got.TotalCases)
	}
}

func TestAggregateReportDateFallback(t *testing.T) {
	reported := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	records := &fakeRecords{
		health: []models.HealthRecord{
			// Report date present: bucketed under 2025-06 even though it was
			// ingested in August.
			{VillageID: 1, Severity: models.SeverityMild, ReportedOn: reported, CreatedAt: testNow.AddDate(0, 0, -1)},
			// No report date: falls back to CreatedAt.
			{VillageID: 1, Severity: models.SeverityMild, CreatedAt: testNow.AddDate(0, 0, -1)},
		},
	}

	agg := newTestAggregator(records, nil)
	got, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	byMonth := make(map[string]int)
	for _, p := range got.MonthlyTrend {
		byMonth[p.Month] = p.Count
	}
	if byMonth["2025-06"] != 1 {
		t.Errorf("2025-06 count = %d, want 1", byMonth["2025-06"])
	}
	if byMonth["2025-08"] != 1 {
		t.Errorf("2025-08 count = %d, want 1", byMonth["2025-08"])
	}
}

func TestAggregateLatestAlertCaseInsensitive(t *testing.T) {
	alerts := &fakeAlerts{latest: map[string]*models.RuleAlert{
		"rampur": {Village: "RAMPUR", Text: "Health Risk: 4 people received no treatment"},
	}}

	agg := newTestAggregator(&fakeRecords{}, alerts)
	got, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got.LatestAlert == "" {
		t.Fatal("latest alert not picked up by case-insensitive match")
	}
	// "no treatment" in the alert text adds the untreated penalty.
	if got.RiskPercentage != 15.0 {
		t.Errorf("risk percentage = %v, want 15.0 (untreated penalty only)", got.RiskPercentage)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := &fakeRecords{
		health: []models.HealthRecord{
			{VillageID: 1, Symptoms: "fever, cough", Severity: models.SeverityModerate, CreatedAt: testNow.AddDate(0, 0, -5)},
		},
	}
	agg := newTestAggregator(records, nil)

	first, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	second, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same inputs and instant produced different snapshots:\n%+v\n%+v", first, second)
	}
}

func TestAggregatePropagatesFetchErrors(t *testing.T) {
	agg := newTestAggregator(&fakeRecords{err: errors.New("db gone")}, nil)
	if _, err := agg.Aggregate(context.Background(), models.Village{ID: 1, Name: "Rampur"}, 6, testNow); err == nil {
		t.Fatal("expected error from failing record fetch")
	}
}

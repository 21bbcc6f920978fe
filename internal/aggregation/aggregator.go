package aggregation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/risk"
	"github.com/swasthya/go-outbreak-alerts/internal/symptoms"
)

// windowDaysPerMonth fixes the lookback month at 30 days. Not
// calendar-accurate; the approximation is intentional and shared with the
// trend builder.
const windowDaysPerMonth = 30

// Aggregator merges a village's health reports, clinic tallies and NGO
// surveys into one dashboard snapshot.
type Aggregator struct {
	records repository.RecordRepository
	alerts  repository.AlertRepository
	norm    *symptoms.Normalizer
}

func NewAggregator(records repository.RecordRepository, alerts repository.AlertRepository, norm *symptoms.Normalizer) *Aggregator {
	return &Aggregator{
		records: records,
		alerts:  alerts,
		norm:    norm,
	}
}

// counts is the intermediate merge of all three sources, before scoring.
type counts struct {
	healthReports int
	clinicCases   int
	surveyCases   int
	totalDeaths   int
	hospitalized  int
	symptoms      map[string]int
	severities    map[models.Severity]int
	monthly       map[string]int
	waterRisk     bool
	awarenessSeen bool
	latestAlert   string
}

// Aggregate computes the full snapshot for one village over the window
// [now - 30d*monthsBack, now]. The reference instant is an explicit
// parameter so runs are reproducible in tests. An empty window yields an
// all-zero snapshot, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, village models.Village, monthsBack int, now time.Time) (*models.VillageAggregate, error) {
	c, err := a.collect(ctx, village, monthsBack, now)
	if err != nil {
		return nil, err
	}

	// Total cases sums rows and tallies across all three sources. The same
	// real-world case may be counted more than once; that is the documented
	// behavior of this pipeline, not something to reconcile here.
	totalCases := c.healthReports + c.clinicCases + c.surveyCases

	pct, level := risk.ScoreVillage(risk.VillageInputs{
		SeverityCounts: c.severities,
		TotalCases:     totalCases,
		WaterRisk:      c.waterRisk,
		LatestAlert:    c.latestAlert,
	})

	return &models.VillageAggregate{
		VillageID:             village.ID,
		TotalCases:            totalCases,
		TotalDeaths:           c.totalDeaths,
		HospitalizedCases:     c.hospitalized,
		RiskLevel:             level,
		RiskPercentage:        pct,
		LatestAlert:           c.latestAlert,
		SymptomDistribution:   c.symptoms,
		SeverityDistribution:  severityShares(c.severities),
		MonthlyTrend:          risk.BuildTrend(now, monthsBack, c.monthly),
		AwarenessCampaignSeen: c.awarenessSeen,
		LastAggregatedAt:      now,
	}, nil
}

func (a *Aggregator) collect(ctx context.Context, village models.Village, monthsBack int, now time.Time) (*counts, error) {
	window := repository.Window{
		Start: now.AddDate(0, 0, -windowDaysPerMonth*monthsBack),
		End:   now,
	}

	c := &counts{
		symptoms:   make(map[string]int),
		severities: make(map[models.Severity]int),
		monthly:    make(map[string]int),
	}

	health, err := a.records.HealthRecords(ctx, village.ID, window)
	if err != nil {
		return nil, fmt.Errorf("fetching health reports for village %d: %w", village.ID, err)
	}
	c.healthReports = len(health)
	for _, hr := range health {
		for _, token := range a.norm.Parse(hr.Symptoms) {
			c.symptoms[token]++
		}
		if hr.Severity != "" {
			c.severities[hr.Severity]++
		}

		// Bucket by the reporting date; fall back to ingestion time when the
		// field worker left it blank.
		date := hr.ReportedOn
		if date.IsZero() {
			date = hr.CreatedAt
		}
		if !date.IsZero() {
			c.monthly[risk.MonthKey(date)]++
		}
	}

	clinics, err := a.records.ClinicRecords(ctx, village.ID, window)
	if err != nil {
		return nil, fmt.Errorf("fetching clinic reports for village %d: %w", village.ID, err)
	}
	for _, cr := range clinics {
		c.symptoms["typhoid"] += cr.TyphoidCases
		c.symptoms["fever"] += cr.FeverCases
		c.symptoms["diarrhea"] += cr.DiarrheaCases
		c.symptoms["cholera"] += cr.CholeraCases
		c.hospitalized += cr.HospitalizedCases
		c.totalDeaths += cr.DeathsReported
		c.clinicCases += cr.DiseaseTotal()
		if !cr.CreatedAt.IsZero() {
			c.monthly[risk.MonthKey(cr.CreatedAt)] += cr.DiseaseTotal()
		}
	}

	surveys, err := a.records.SurveyRecords(ctx, village.ID, window)
	if err != nil {
		return nil, fmt.Errorf("fetching ngo surveys for village %d: %w", village.ID, err)
	}
	for _, sr := range surveys {
		c.symptoms["typhoid"] += sr.TyphoidCases
		c.symptoms["fever"] += sr.FeverCases
		c.symptoms["diarrhea"] += sr.DiarrheaCases
		c.surveyCases += sr.TyphoidCases + sr.FeverCases + sr.DiarrheaCases
		if !sr.CleanDrinkingWater {
			c.waterRisk = true
		}
		if sr.AwarenessCampaigns {
			c.awarenessSeen = true
		}
	}

	latest, err := a.alerts.LatestAlertByVillageName(ctx, village.Name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// no alert yet, leave text empty
	case err != nil:
		return nil, fmt.Errorf("fetching latest alert for village %q: %w", village.Name, err)
	default:
		c.latestAlert = latest.Text
	}

	return c, nil
}

// severityShares converts severity counts into percentage shares, one
// decimal. The denominator floors at 1 so an empty map stays empty rather
// than dividing by zero.
func severityShares(counts map[models.Severity]int) map[models.Severity]float64 {
	total := 0
	for _, v := range counts {
		total += v
	}
	if total < 1 {
		total = 1
	}
	shares := make(map[models.Severity]float64, len(counts))
	for k, v := range counts {
		shares[k] = math.Round(float64(v)/float64(total)*100*10) / 10
	}
	return shares
}

package models

import "time"

type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// TrendPoint is one month of the fixed-length case trend. Points are kept in
// a slice, oldest first, so chart consumers get a deterministic order.
type TrendPoint struct {
	Month string `json:"month"` // "YYYY-MM"
	Count int    `json:"count"`
}

// VillageAggregate is the per-village dashboard snapshot. One row per
// village, recomputed wholesale on every aggregation run.
type VillageAggregate struct {
	VillageID         int64     `json:"village_id"`
	TotalCases        int       `json:"total_cases"`
	TotalDeaths       int       `json:"total_deaths"`
	HospitalizedCases int       `json:"hospitalized_cases"`
	RiskLevel         RiskLevel `json:"risk_level"`
	RiskPercentage    float64   `json:"risk_percentage"` // 0-100, one decimal
	LatestAlert       string    `json:"latest_alert"`

	// SymptomDistribution maps normalized symptom token -> count across all
	// three sources. SeverityDistribution maps severity label -> percentage
	// share of health reports.
	SymptomDistribution  map[string]int       `json:"symptom_distribution"`
	SeverityDistribution map[Severity]float64 `json:"severity_distribution"`
	MonthlyTrend         []TrendPoint         `json:"monthly_trend"`

	AwarenessCampaignSeen bool      `json:"awareness_campaign_seen"`
	LastAggregatedAt      time.Time `json:"last_aggregated_at"`
}

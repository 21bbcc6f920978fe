package models

import "time"

// RuleAlert is the raw output of one rule-engine run: either a newline-joined
// list of triggered rule lines or the fixed "situation normal" sentence.
// Immutable once created.
type RuleAlert struct {
	ID           string    `json:"id"`
	Village      string    `json:"village"`
	District     string    `json:"district"`
	State        string    `json:"state"`
	ClinicID     int64     `json:"clinic_id,omitempty"`
	ASHAWorkerID int64     `json:"asha_worker_id,omitempty"`
	NGOID        int64     `json:"ngo_id,omitempty"`
	Text         string    `json:"alert_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// AlertSummary is a generated narrative for one RuleAlert. Append-only: an
// alert may accumulate several summaries if regeneration is requested.
type AlertSummary struct {
	ID             string    `json:"id"`
	AlertID        string    `json:"alert_id"`
	RiskPercentage float64   `json:"risk_percentage"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Text           string    `json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
}

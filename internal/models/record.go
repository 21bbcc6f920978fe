package models

import "time"

type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// HealthRecord is a single per-patient field report submitted by an ASHA
// worker. Symptoms is free text and only becomes structured after
// normalization.
type HealthRecord struct {
	ID             int64
	VillageID      int64
	PatientName    string
	Age            int
	Gender         string
	Symptoms       string
	Severity       Severity
	ReportedOn     time.Time // date of reporting; may be zero, CreatedAt is the fallback
	WaterSource    string
	TreatmentGiven string
	ASHAWorkerID   int64
	CreatedAt      time.Time
}

// ClinicRecord carries counts pre-aggregated at the clinic.
type ClinicRecord struct {
	ID                int64
	VillageID         int64
	TyphoidCases      int
	FeverCases        int
	DiarrheaCases     int
	CholeraCases      int
	HospitalizedCases int
	DeathsReported    int
	ReportedOn        time.Time
	CreatedAt         time.Time
}

// DiseaseTotal sums the four per-disease columns of a clinic record.
func (c ClinicRecord) DiseaseTotal() int {
	return c.TyphoidCases + c.FeverCases + c.DiarrheaCases + c.CholeraCases
}

// SurveyRecord is an NGO environmental survey with per-disease tallies.
type SurveyRecord struct {
	ID                   int64
	VillageID            int64
	NGOID                int64
	CleanDrinkingWater   bool
	ToiletCoverage       int
	WasteDisposalSystem  bool
	FloodingWaterlogging bool
	AwarenessCampaigns   bool
	TyphoidCases         int
	FeverCases           int
	DiarrheaCases        int
	CreatedAt            time.Time
}

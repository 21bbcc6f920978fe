package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements VillageRepository, RecordRepository, AlertRepository
// and AggregateStore over a single SQLite database.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS villages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			district TEXT NOT NULL,
			state TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS health_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			village_id INTEGER NOT NULL,
			patient_name TEXT NOT NULL,
			age INTEGER NOT NULL,
			gender TEXT,
			symptoms TEXT NOT NULL,
			severity TEXT NOT NULL,
			reported_on DATETIME,
			water_source TEXT,
			treatment_given TEXT,
			asha_worker_id INTEGER,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (village_id) REFERENCES villages(id)
		);

		CREATE TABLE IF NOT EXISTS clinic_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			village_id INTEGER NOT NULL,
			typhoid_cases INTEGER NOT NULL DEFAULT 0,
			fever_cases INTEGER NOT NULL DEFAULT 0,
			diarrhea_cases INTEGER NOT NULL DEFAULT 0,
			cholera_cases INTEGER NOT NULL DEFAULT 0,
			hospitalized_cases INTEGER NOT NULL DEFAULT 0,
			deaths_reported INTEGER NOT NULL DEFAULT 0,
			reported_on DATETIME,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (village_id) REFERENCES villages(id)
		);

		CREATE TABLE IF NOT EXISTS ngo_surveys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			village_id INTEGER NOT NULL,
			ngo_id INTEGER,
			clean_drinking_water INTEGER NOT NULL DEFAULT 0,
			toilet_coverage INTEGER NOT NULL DEFAULT 0,
			waste_disposal_system INTEGER NOT NULL DEFAULT 0,
			flooding_waterlogging INTEGER NOT NULL DEFAULT 0,
			awareness_campaigns INTEGER NOT NULL DEFAULT 0,
			typhoid_cases INTEGER NOT NULL DEFAULT 0,
			fever_cases INTEGER NOT NULL DEFAULT 0,
			diarrhea_cases INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (village_id) REFERENCES villages(id)
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			village TEXT NOT NULL,
			district TEXT,
			state TEXT,
			clinic_id INTEGER,
			asha_worker_id INTEGER,
			ngo_id INTEGER,
			alert_text TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alert_summaries (
			id TEXT PRIMARY KEY,
			alert_id TEXT NOT NULL,
			risk_percentage REAL NOT NULL,
			risk_level TEXT NOT NULL,
			summary_text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (alert_id) REFERENCES alerts(id)
		);

		CREATE TABLE IF NOT EXISTS village_dashboards (
			village_id INTEGER PRIMARY KEY,
			total_cases INTEGER NOT NULL DEFAULT 0,
			total_deaths INTEGER NOT NULL DEFAULT 0,
			hospitalized_cases INTEGER NOT NULL DEFAULT 0,
			risk_level TEXT NOT NULL,
			risk_percentage REAL NOT NULL,
			latest_alert TEXT,
			symptom_distribution TEXT NOT NULL,
			severity_distribution TEXT NOT NULL,
			monthly_trend TEXT NOT NULL,
			awareness_campaign_seen INTEGER NOT NULL DEFAULT 0,
			last_aggregated_at DATETIME NOT NULL,
			FOREIGN KEY (village_id) REFERENCES villages(id)
		);

		CREATE INDEX IF NOT EXISTS idx_health_reports_village_created ON health_reports(village_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_clinic_reports_village_created ON clinic_reports(village_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_ngo_surveys_village_created ON ngo_surveys(village_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_alerts_village ON alerts(village);
		CREATE INDEX IF NOT EXISTS idx_alert_summaries_alert_id ON alert_summaries(alert_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

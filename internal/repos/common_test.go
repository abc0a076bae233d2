package repos

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/showtrail/agjournal-backend/internal/logger"
)

// The production schema leans on uuid_generate_v4() defaults, which sqlite
// cannot parse, so the test schema is spelled out by hand. The repos always
// set ids explicitly and never rely on the database default.
const testSchema = `
CREATE TABLE suggestion_template (
	id               TEXT PRIMARY KEY,
	title_template   TEXT NOT NULL,
	content_template TEXT NOT NULL,
	category         TEXT NOT NULL,
	difficulty_level TEXT NOT NULL DEFAULT 'beginner',
	estimated_minutes INTEGER NOT NULL DEFAULT 10,
	ffa_standards    TEXT,
	species          TEXT NOT NULL DEFAULT 'any',
	age_group        TEXT NOT NULL DEFAULT 'any',
	competency_level TEXT NOT NULL DEFAULT 'any',
	weather_pattern  TEXT NOT NULL DEFAULT 'any',
	usage_count      INTEGER NOT NULL DEFAULT 0,
	accepted_count   INTEGER NOT NULL DEFAULT 0,
	rating_count     INTEGER NOT NULL DEFAULT 0,
	rating_total     INTEGER NOT NULL DEFAULT 0,
	success_rate     REAL NOT NULL DEFAULT 0,
	average_rating   REAL NOT NULL DEFAULT 0,
	is_active        BOOLEAN NOT NULL DEFAULT true,
	created_at       DATETIME,
	updated_at       DATETIME
);
CREATE TABLE analytics_event (
	id                      TEXT PRIMARY KEY,
	user_id                 TEXT NOT NULL,
	template_id             TEXT,
	event_type              TEXT NOT NULL,
	session_id              TEXT,
	response_time_ms        INTEGER NOT NULL DEFAULT 0,
	user_rating             INTEGER,
	user_feedback_text      TEXT,
	user_modifications_text TEXT,
	final_content           TEXT,
	quality_score           REAL NOT NULL DEFAULT 0,
	age_group               TEXT,
	parent_consent_verified BOOLEAN NOT NULL DEFAULT false,
	trigger_context         TEXT,
	created_at              DATETIME
);
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	if err := db.Exec(testSchema).Error; err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

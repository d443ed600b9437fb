package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/mehy12/edumate/storage/database"
)

// PrepareDB opens the test database and migrates it. Tables are truncated when the test ends.
// Tests using it are skipped unless ENV=TEST.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := NewConfig()
	if conf.Env != "TEST" {
		t.Skip("database tests only run with ENV=TEST")
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("PrepareDB() failed to create database: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed to open database: %v", err)
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		t.Fatalf("PrepareDB() failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		if _, err := db.Exec(`TRUNCATE course_enrollments, activity_events CASCADE`); err != nil {
			t.Errorf("PrepareDB() failed to truncate tables: %v", err)
		}
		_ = db.Close()
	})
	return db
}

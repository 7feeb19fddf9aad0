package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema: roster tables plus the
// route-session records described by the persistence contract.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createKidsQuery := `
	CREATE TABLE IF NOT EXISTS kids (
		kid_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		school_id TEXT NOT NULL,
		birth_date TEXT,
		monday INTEGER NOT NULL DEFAULT 1,
		tuesday INTEGER NOT NULL DEFAULT 1,
		wednesday INTEGER NOT NULL DEFAULT 1,
		thursday INTEGER NOT NULL DEFAULT 1,
		friday INTEGER NOT NULL DEFAULT 1
	);
	`

	createStaffQuery := `
	CREATE TABLE IF NOT EXISTS staff (
		staff_id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	createSchoolsQuery := `
	CREATE TABLE IF NOT EXISTS schools (
		school_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		dismissal_time TEXT NOT NULL DEFAULT ''
	);
	`

	createVansQuery := `
	CREATE TABLE IF NOT EXISTS vans (
		van_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seats INTEGER NOT NULL,
		booster_seats INTEGER NOT NULL
	);
	`

	createSessionsQuery := `
	CREATE TABLE IF NOT EXISTS route_sessions (
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		absent_ids TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (date, kind)
	);
	`

	createRouteVansQuery := `
	CREATE TABLE IF NOT EXISTS route_vans (
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		van_id TEXT NOT NULL,
		driver_id TEXT NOT NULL DEFAULT '',
		helper_ids TEXT NOT NULL DEFAULT '[]',
		school_order TEXT NOT NULL DEFAULT '[]',
		eta_minutes INTEGER,
		PRIMARY KEY (date, kind, van_id)
	);
	`

	createRouteStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		van_id TEXT NOT NULL,
		kid_id TEXT NOT NULL,
		staff_id TEXT NOT NULL DEFAULT '',
		stop_index INTEGER NOT NULL,
		PRIMARY KEY (date, kind, van_id, kid_id)
	);
	`

	createStopIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_stops_session_van
	ON route_stops(date, kind, van_id, stop_index);
	`

	statements := []string{
		createKidsQuery,
		createStaffQuery,
		createSchoolsQuery,
		createVansQuery,
		createSessionsQuery,
		createRouteVansQuery,
		createRouteStopsQuery,
		createStopIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type KidSeed struct {
	KidID     string `json:"kid_id"`
	Name      string `json:"name"`
	SchoolID  string `json:"school_id"`
	BirthDate string `json:"birth_date"`
	Monday    bool   `json:"monday"`
	Tuesday   bool   `json:"tuesday"`
	Wednesday bool   `json:"wednesday"`
	Thursday  bool   `json:"thursday"`
	Friday    bool   `json:"friday"`
}

type StaffSeed struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
}

type SchoolSeed struct {
	SchoolID      string  `json:"school_id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	DismissalTime string  `json:"dismissal_time"`
}

type VanSeed struct {
	VanID        string `json:"van_id"`
	Name         string `json:"name"`
	Seats        int    `json:"seats"`
	BoosterSeats int    `json:"booster_seats"`
}

type RosterSeed struct {
	Kids    []KidSeed    `json:"kids"`
	Staff   []StaffSeed  `json:"staff"`
	Schools []SchoolSeed `json:"schools"`
	Vans    []VanSeed    `json:"vans"`
}

// Populate the roster tables from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed roster: read %q: %w", jsonPath, err)
	}

	var seed RosterSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed roster: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed roster: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, k := range seed.Kids {
		if strings.TrimSpace(k.KidID) == "" || strings.TrimSpace(k.Name) == "" {
			return fmt.Errorf("seed roster: kid at index %d: kid_id and name are required", i+1)
		}
		if strings.TrimSpace(k.SchoolID) == "" {
			return fmt.Errorf("seed roster: kid %q: school_id is required", k.KidID)
		}
		_, err := tx.Exec(`
		INSERT OR REPLACE INTO kids
			(kid_id, name, school_id, birth_date, monday, tuesday, wednesday, thursday, friday)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, k.KidID, k.Name, k.SchoolID, nullIfEmpty(k.BirthDate),
			k.Monday, k.Tuesday, k.Wednesday, k.Thursday, k.Friday)
		if err != nil {
			return fmt.Errorf("seed roster: insert kid %q: %w", k.KidID, err)
		}
	}

	for _, s := range seed.Staff {
		if _, err := tx.Exec(`
		INSERT OR REPLACE INTO staff (staff_id, name) VALUES (?, ?);
		`, s.StaffID, s.Name); err != nil {
			return fmt.Errorf("seed roster: insert staff %q: %w", s.StaffID, err)
		}
	}

	for _, s := range seed.Schools {
		if _, err := tx.Exec(`
		INSERT OR REPLACE INTO schools (school_id, name, lat, lng, dismissal_time)
		VALUES (?, ?, ?, ?, ?);
		`, s.SchoolID, s.Name, s.Lat, s.Lng, s.DismissalTime); err != nil {
			return fmt.Errorf("seed roster: insert school %q: %w", s.SchoolID, err)
		}
	}

	for _, v := range seed.Vans {
		if _, err := tx.Exec(`
		INSERT OR REPLACE INTO vans (van_id, name, seats, booster_seats)
		VALUES (?, ?, ?, ?);
		`, v.VanID, v.Name, v.Seats, v.BoosterSeats); err != nil {
			return fmt.Errorf("seed roster: insert van %q: %w", v.VanID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed roster: commit tx: %w", err)
	}

	return nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

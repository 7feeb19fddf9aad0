package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// Postgres-backed implementation of the RouteRepository port, for
// deployments where the session records live in a shared database while
// the roster stays local. Same record shapes and per-van commit semantics
// as the SQLite store.
type SQLRouteRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

func NewSQLRouteRepository(db *sql.DB, log *zap.Logger) *SQLRouteRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLRouteRepository{DB: db, Log: log}
}

// InitSessionSchema creates the route-session tables on Postgres.
func InitSessionSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init session schema: DB is nil")
	}

	statements := []string{`
	CREATE TABLE IF NOT EXISTS route_sessions (
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		absent_ids TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (date, kind)
	);
	`, `
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
	`, `
	CREATE TABLE IF NOT EXISTS route_stops (
		id BIGSERIAL PRIMARY KEY,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		van_id TEXT NOT NULL,
		kid_id TEXT NOT NULL,
		staff_id TEXT NOT NULL DEFAULT '',
		stop_index INTEGER NOT NULL,
		UNIQUE (date, kind, van_id, kid_id)
	);
	`}

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init session schema: exec statement #%d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SQLRouteRepository) SaveRoute(ctx context.Context, rec ports.RouteRecord) (ports.SaveReport, error) {
	if s.DB == nil {
		return ports.SaveReport{}, errors.New("sql route repository: DB is nil")
	}
	if rec.Date == "" {
		return ports.SaveReport{}, errors.New("save route: date must not be empty")
	}

	absents, err := json.Marshal(emptyIfNil(rec.AbsentIDs))
	if err != nil {
		return ports.SaveReport{}, fmt.Errorf("save route: marshal absent ids: %w", err)
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_sessions (date, kind, status, absent_ids)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (date, kind) DO UPDATE
	SET status = EXCLUDED.status,
		absent_ids = EXCLUDED.absent_ids;
	`, rec.Date, sessionKind, rec.Status, string(absents)); err != nil {
		return ports.SaveReport{}, fmt.Errorf("save route: upsert session %s: %w", rec.Date, err)
	}

	current := make([]string, 0, len(rec.Vans))
	for _, vr := range rec.Vans {
		current = append(current, vr.VanID)
	}
	if _, err := s.DB.ExecContext(ctx, `
	DELETE FROM route_vans
	WHERE date = $1 AND kind = $2 AND NOT (van_id = ANY($3::text[]));
	`, rec.Date, sessionKind, current); err != nil {
		return ports.SaveReport{}, fmt.Errorf("save route: delete stale vans: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, `
	DELETE FROM route_stops
	WHERE date = $1 AND kind = $2 AND NOT (van_id = ANY($3::text[]));
	`, rec.Date, sessionKind, current); err != nil {
		return ports.SaveReport{}, fmt.Errorf("save route: delete stale stops: %w", err)
	}

	var report ports.SaveReport
	var firstErr error
	for _, vr := range rec.Vans {
		if err := s.saveVan(ctx, rec.Date, vr); err != nil {
			report.FailedVans = append(report.FailedVans, vr.VanID)
			if firstErr == nil {
				firstErr = err
			}
			s.Log.Warn("van save failed",
				zap.String("date", rec.Date),
				zap.String("van_id", vr.VanID),
				zap.Error(err))
			continue
		}
		report.SavedVans = append(report.SavedVans, vr.VanID)
	}

	return report, firstErr
}

func (s *SQLRouteRepository) saveVan(ctx context.Context, date string, vr ports.VanRecord) error {
	helperIDs, err := json.Marshal(emptyIfNil(vr.HelperIDs))
	if err != nil {
		return fmt.Errorf("marshal helper ids: %w", err)
	}
	schoolOrder, err := json.Marshal(emptyIfNil(vr.SchoolOrder))
	if err != nil {
		return fmt.Errorf("marshal school order: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO route_vans (date, kind, van_id, driver_id, helper_ids, school_order, eta_minutes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (date, kind, van_id) DO UPDATE
	SET driver_id = EXCLUDED.driver_id,
		helper_ids = EXCLUDED.helper_ids,
		school_order = EXCLUDED.school_order,
		eta_minutes = EXCLUDED.eta_minutes;
	`, date, sessionKind, vr.VanID, vr.DriverID, string(helperIDs), string(schoolOrder), vr.ETAMinutes); err != nil {
		return fmt.Errorf("upsert van record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM route_stops WHERE date = $1 AND kind = $2 AND van_id = $3;
	`, date, sessionKind, vr.VanID); err != nil {
		return fmt.Errorf("clear stop rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stops (date, kind, van_id, kid_id, staff_id, stop_index)
	VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("prepare stop insert: %w", err)
	}
	defer stmt.Close()

	for _, stop := range vr.Stops {
		if _, err := stmt.ExecContext(ctx, date, sessionKind, vr.VanID, stop.KidID, stop.StaffID, stop.StopIndex); err != nil {
			return fmt.Errorf("insert stop kid=%q: %w", stop.KidID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLRouteRepository) LoadRoute(ctx context.Context, date string) (ports.RouteRecord, bool, error) {
	if s.DB == nil {
		return ports.RouteRecord{}, false, errors.New("sql route repository: DB is nil")
	}

	rec := ports.RouteRecord{Date: date}

	var absents string
	err := s.DB.QueryRowContext(ctx, `
	SELECT status, absent_ids FROM route_sessions WHERE date = $1 AND kind = $2;
	`, date, sessionKind).Scan(&rec.Status, &absents)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteRecord{}, false, nil
	}
	if err != nil {
		return ports.RouteRecord{}, false, fmt.Errorf("load route: query session %s: %w", date, err)
	}
	if err := json.Unmarshal([]byte(absents), &rec.AbsentIDs); err != nil {
		return ports.RouteRecord{}, false, fmt.Errorf("load route: parse absent ids: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT van_id, driver_id, helper_ids, school_order, eta_minutes
	FROM route_vans
	WHERE date = $1 AND kind = $2
	ORDER BY van_id;
	`, date, sessionKind)
	if err != nil {
		return ports.RouteRecord{}, false, fmt.Errorf("load route: query van records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			vr          ports.VanRecord
			helperIDs   string
			schoolOrder string
			eta         sql.NullInt64
		)
		if err := rows.Scan(&vr.VanID, &vr.DriverID, &helperIDs, &schoolOrder, &eta); err != nil {
			return ports.RouteRecord{}, false, fmt.Errorf("load route: scan van record: %w", err)
		}
		if err := json.Unmarshal([]byte(helperIDs), &vr.HelperIDs); err != nil {
			return ports.RouteRecord{}, false, fmt.Errorf("load route: van %q: parse helper ids: %w", vr.VanID, err)
		}
		if err := json.Unmarshal([]byte(schoolOrder), &vr.SchoolOrder); err != nil {
			return ports.RouteRecord{}, false, fmt.Errorf("load route: van %q: parse school order: %w", vr.VanID, err)
		}
		if eta.Valid {
			m := int(eta.Int64)
			vr.ETAMinutes = &m
		}
		rec.Vans = append(rec.Vans, vr)
	}
	if err := rows.Err(); err != nil {
		return ports.RouteRecord{}, false, fmt.Errorf("load route: row iteration: %w", err)
	}

	for i := range rec.Vans {
		stops, err := s.loadStops(ctx, date, rec.Vans[i].VanID)
		if err != nil {
			return ports.RouteRecord{}, false, err
		}
		rec.Vans[i].Stops = stops
	}

	return rec, true, nil
}

func (s *SQLRouteRepository) loadStops(ctx context.Context, date, vanID string) ([]ports.StopRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT kid_id, staff_id, stop_index
	FROM route_stops
	WHERE date = $1 AND kind = $2 AND van_id = $3
	ORDER BY stop_index, id;
	`, date, sessionKind, vanID)
	if err != nil {
		return nil, fmt.Errorf("load route: query stops for van %q: %w", vanID, err)
	}
	defer rows.Close()

	var stops []ports.StopRecord
	for rows.Next() {
		var stop ports.StopRecord
		if err := rows.Scan(&stop.KidID, &stop.StaffID, &stop.StopIndex); err != nil {
			return nil, fmt.Errorf("load route: scan stop row: %w", err)
		}
		stops = append(stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load route: stop row iteration: %w", err)
	}

	return stops, nil
}

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

// Route sessions are keyed by (date, kind); only pickup routes exist today.
const sessionKind = "pickup"

// SQLite-backed implementation of the RouteRepository port.
//
// Each van record is committed in its own transaction so one van's failure
// never rolls back another's save; the returned report names the vans that
// did not make it.
type SqliteRouteRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

func NewSqliteRouteRepository(db *sql.DB, log *zap.Logger) *SqliteRouteRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SqliteRouteRepository{DB: db, Log: log}
}

func (s *SqliteRouteRepository) SaveRoute(ctx context.Context, rec ports.RouteRecord) (ports.SaveReport, error) {
	if s.DB == nil {
		return ports.SaveReport{}, errors.New("sqlite route repository: DB is nil")
	}
	if rec.Date == "" {
		return ports.SaveReport{}, errors.New("save route: date must not be empty")
	}

	absents, err := json.Marshal(emptyIfNil(rec.AbsentIDs))
	if err != nil {
		return ports.SaveReport{}, fmt.Errorf("save route: marshal absent ids: %w", err)
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO route_sessions (date, kind, status, absent_ids)
	VALUES (?, ?, ?, ?);
	`, rec.Date, sessionKind, rec.Status, string(absents)); err != nil {
		return ports.SaveReport{}, fmt.Errorf("save route: upsert session %s: %w", rec.Date, err)
	}

	// Vans emptied since the last save lose their record entirely.
	if err := s.deleteStaleVans(ctx, rec); err != nil {
		return ports.SaveReport{}, err
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

func (s *SqliteRouteRepository) deleteStaleVans(ctx context.Context, rec ports.RouteRecord) error {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT van_id FROM route_vans WHERE date = ? AND kind = ?;
	`, rec.Date, sessionKind)
	if err != nil {
		return fmt.Errorf("save route: list persisted vans: %w", err)
	}
	defer rows.Close()

	current := make(map[string]struct{}, len(rec.Vans))
	for _, vr := range rec.Vans {
		current[vr.VanID] = struct{}{}
	}

	var stale []string
	for rows.Next() {
		var vanID string
		if err := rows.Scan(&vanID); err != nil {
			return fmt.Errorf("save route: scan persisted van: %w", err)
		}
		if _, ok := current[vanID]; !ok {
			stale = append(stale, vanID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("save route: row iteration: %w", err)
	}

	for _, vanID := range stale {
		if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM route_vans WHERE date = ? AND kind = ? AND van_id = ?;
		`, rec.Date, sessionKind, vanID); err != nil {
			return fmt.Errorf("save route: delete stale van %q: %w", vanID, err)
		}
		if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM route_stops WHERE date = ? AND kind = ? AND van_id = ?;
		`, rec.Date, sessionKind, vanID); err != nil {
			return fmt.Errorf("save route: delete stale stops for %q: %w", vanID, err)
		}
	}

	return nil
}

// saveVan upserts one van record and full-replaces its stop rows in a
// single transaction.
func (s *SqliteRouteRepository) saveVan(ctx context.Context, date string, vr ports.VanRecord) error {
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
	INSERT OR REPLACE INTO route_vans
		(date, kind, van_id, driver_id, helper_ids, school_order, eta_minutes)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, date, sessionKind, vr.VanID, vr.DriverID, string(helperIDs), string(schoolOrder), vr.ETAMinutes); err != nil {
		return fmt.Errorf("upsert van record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM route_stops WHERE date = ? AND kind = ? AND van_id = ?;
	`, date, sessionKind, vr.VanID); err != nil {
		return fmt.Errorf("clear stop rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stops (date, kind, van_id, kid_id, staff_id, stop_index)
	VALUES (?, ?, ?, ?, ?, ?);
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

func (s *SqliteRouteRepository) LoadRoute(ctx context.Context, date string) (ports.RouteRecord, bool, error) {
	if s.DB == nil {
		return ports.RouteRecord{}, false, errors.New("sqlite route repository: DB is nil")
	}

	rec := ports.RouteRecord{Date: date}

	var absents string
	err := s.DB.QueryRowContext(ctx, `
	SELECT status, absent_ids FROM route_sessions WHERE date = ? AND kind = ?;
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
	WHERE date = ? AND kind = ?
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

func (s *SqliteRouteRepository) loadStops(ctx context.Context, date, vanID string) ([]ports.StopRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT kid_id, staff_id, stop_index
	FROM route_stops
	WHERE date = ? AND kind = ? AND van_id = ?
	ORDER BY stop_index, rowid;
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

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

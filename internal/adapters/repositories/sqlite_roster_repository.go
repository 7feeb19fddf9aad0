package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// SQLite-backed implementation of the RosterRepository port. The planning
// core treats every record returned here as read-only.
type SqliteRosterRepository struct{ DB *sql.DB }

func NewSqliteRosterRepository(db *sql.DB) *SqliteRosterRepository {
	return &SqliteRosterRepository{DB: db}
}

func (s *SqliteRosterRepository) ListKids(ctx context.Context) ([]domain.Kid, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite roster repository: DB is nil")
	}

	query := `
	SELECT kid_id, name, school_id, birth_date,
		monday, tuesday, wednesday, thursday, friday
	FROM kids
	ORDER BY name, kid_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list kids: query kids table: %w", err)
	}
	defer rows.Close()

	kids := make([]domain.Kid, 0, 64)
	for rows.Next() {
		var (
			kid                     domain.Kid
			birth                   sql.NullString
			mon, tue, wed, thu, fri bool
		)
		if err := rows.Scan(&kid.KidID, &kid.Name, &kid.SchoolID, &birth,
			&mon, &tue, &wed, &thu, &fri); err != nil {
			return nil, fmt.Errorf("list kids: scan row: %w", err)
		}
		if birth.Valid {
			t, err := time.Parse("2006-01-02", birth.String)
			if err != nil {
				return nil, fmt.Errorf("list kids: kid %q: parse birth_date %q: %w", kid.KidID, birth.String, err)
			}
			kid.BirthDate = &t
		}
		kid.Attendance[time.Monday] = mon
		kid.Attendance[time.Tuesday] = tue
		kid.Attendance[time.Wednesday] = wed
		kid.Attendance[time.Thursday] = thu
		kid.Attendance[time.Friday] = fri
		kids = append(kids, kid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list kids: row iteration: %w", err)
	}

	return kids, nil
}

func (s *SqliteRosterRepository) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite roster repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT staff_id, name FROM staff ORDER BY name, staff_id;`)
	if err != nil {
		return nil, fmt.Errorf("list staff: query staff table: %w", err)
	}
	defer rows.Close()

	staff := make([]domain.Staff, 0, 16)
	for rows.Next() {
		var st domain.Staff
		if err := rows.Scan(&st.StaffID, &st.Name); err != nil {
			return nil, fmt.Errorf("list staff: scan row: %w", err)
		}
		staff = append(staff, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list staff: row iteration: %w", err)
	}

	return staff, nil
}

func (s *SqliteRosterRepository) ListSchools(ctx context.Context) ([]domain.School, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite roster repository: DB is nil")
	}

	query := `SELECT school_id, name, lat, lng, dismissal_time FROM schools ORDER BY name, school_id;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schools: query schools table: %w", err)
	}
	defer rows.Close()

	schools := make([]domain.School, 0, 16)
	for rows.Next() {
		var sc domain.School
		if err := rows.Scan(&sc.SchoolID, &sc.Name, &sc.Coords.Lat, &sc.Coords.Lng, &sc.DismissalTime); err != nil {
			return nil, fmt.Errorf("list schools: scan row: %w", err)
		}
		schools = append(schools, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schools: row iteration: %w", err)
	}

	return schools, nil
}

func (s *SqliteRosterRepository) ListVans(ctx context.Context) ([]domain.Van, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite roster repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT van_id, name, seats, booster_seats FROM vans ORDER BY name, van_id;`)
	if err != nil {
		return nil, fmt.Errorf("list vans: query vans table: %w", err)
	}
	defer rows.Close()

	vans := make([]domain.Van, 0, 8)
	for rows.Next() {
		var v domain.Van
		if err := rows.Scan(&v.VanID, &v.Name, &v.Seats, &v.BoosterSeats); err != nil {
			return nil, fmt.Errorf("list vans: scan row: %w", err)
		}
		vans = append(vans, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vans: row iteration: %w", err)
	}

	return vans, nil
}

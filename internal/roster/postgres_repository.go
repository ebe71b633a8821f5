package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of the duty, trip and
// unit repositories.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL roster repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetDuty retrieves a duty and its trip references by ID.
func (r *PostgresRepository) GetDuty(ctx context.Context, id string) (*Duty, error) {
	duties, err := r.FindDuties(ctx, DutyFilter{IDs: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(duties) == 0 {
		return nil, ErrDutyNotFound
	}
	return duties[0], nil
}

// FindDuties retrieves the duties matching filter, ordered by ID.
func (r *PostgresRepository) FindDuties(ctx context.Context, filter DutyFilter) ([]*Duty, error) {
	query := `
		SELECT
			id, COALESCE(service, ''),
			COALESCE(start_time, ''), COALESCE(end_time, ''),
			COALESCE(home_location, '')
		FROM shifts
		WHERE ($1 = '' OR service = $1)
		  AND ($2::text[] IS NULL OR id = ANY($2))
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, filter.ServiceClass, nilIfEmpty(filter.IDs))
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	var duties []*Duty
	byID := make(map[string]*Duty)
	for rows.Next() {
		var d Duty
		if err := rows.Scan(&d.ID, &d.ServiceClass, &d.Start, &d.End, &d.HomeLocation); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		duties = append(duties, &d)
		byID[d.ID] = &d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(duties) == 0 {
		return duties, nil
	}

	ids := make([]string, 0, len(duties))
	for _, d := range duties {
		ids = append(ids, d.ID)
	}

	refQuery := `
		SELECT shift_id, code, COALESCE(cycle_id, ''), COALESCE(annotation, '')
		FROM shift_circulations
		WHERE shift_id = ANY($1)
		ORDER BY shift_id, position
	`

	refRows, err := r.pool.Query(ctx, refQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("query shift circulations: %w", err)
	}
	defer refRows.Close()

	for refRows.Next() {
		var dutyID, code, cycle, annotation string
		if err := refRows.Scan(&dutyID, &code, &cycle, &annotation); err != nil {
			return nil, fmt.Errorf("scan shift circulation: %w", err)
		}
		if d, ok := byID[dutyID]; ok {
			d.Trips = append(d.Trips, NewTripReference(code, cycle, annotation))
		}
	}

	return duties, refRows.Err()
}

// GetTrip retrieves a trip by code.
func (r *PostgresRepository) GetTrip(ctx context.Context, code string) (*Trip, error) {
	trips, err := r.FindTrips(ctx, TripFilter{Codes: []string{code}})
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return nil, ErrTripNotFound
	}
	return trips[0], nil
}

// FindTrips retrieves the trips matching filter, ordered by code.
func (r *PostgresRepository) FindTrips(ctx context.Context, filter TripFilter) ([]*Trip, error) {
	query := `
		SELECT
			code, COALESCE(line, ''),
			COALESCE(origin, ''), COALESCE(origin_platform, ''), COALESCE(departure, ''),
			COALESCE(destination, ''), COALESCE(destination_platform, ''), COALESCE(arrival, ''),
			COALESCE(cycle_id, ''), COALESCE(stops, '[]'::jsonb)
		FROM circulations
		WHERE ($1 = '' OR line = $1)
		  AND ($2::text[] IS NULL OR code = ANY($2))
		ORDER BY code
	`

	rows, err := r.pool.Query(ctx, query, filter.Line, nilIfEmpty(filter.Codes))
	if err != nil {
		return nil, fmt.Errorf("query circulations: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		var t Trip
		var stops []byte
		err := rows.Scan(
			&t.Code,
			&t.Line,
			&t.Origin,
			&t.OriginPlatform,
			&t.Departure,
			&t.Destination,
			&t.DestinationPlatform,
			&t.Arrival,
			&t.CycleID,
			&stops,
		)
		if err != nil {
			return nil, fmt.Errorf("scan circulation: %w", err)
		}
		if err := json.Unmarshal(stops, &t.Stops); err != nil {
			return nil, fmt.Errorf("decode stops of %s: %w", t.Code, err)
		}
		trips = append(trips, &t)
	}

	return trips, rows.Err()
}

// GetUnitForCycle returns the unit serving a cycle.
func (r *PostgresRepository) GetUnitForCycle(ctx context.Context, cycleID string) (string, error) {
	var unit string
	err := r.pool.QueryRow(ctx, `SELECT unit_id FROM cycle_assignments WHERE cycle_id = $1`, cycleID).Scan(&unit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCycleNotAssigned
		}
		return "", err
	}
	return unit, nil
}

// GetUnitStatus returns the maintenance flags of a unit.
func (r *PostgresRepository) GetUnitStatus(ctx context.Context, unitID string) (*UnitStatus, error) {
	query := `
		SELECT unit_id, out_of_service, needs_photos, needs_paperwork, needs_cleaning
		FROM unit_status
		WHERE unit_id = $1
	`

	var s UnitStatus
	err := r.pool.QueryRow(ctx, query, unitID).Scan(
		&s.UnitID,
		&s.OutOfService,
		&s.NeedsPhotos,
		&s.NeedsPaperwork,
		&s.NeedsCleaning,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListAssignments returns every cycle -> unit pair.
func (r *PostgresRepository) ListAssignments(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT cycle_id, unit_id FROM cycle_assignments`)
	if err != nil {
		return nil, fmt.Errorf("query cycle assignments: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var cycle, unit string
		if err := rows.Scan(&cycle, &unit); err != nil {
			return nil, fmt.Errorf("scan cycle assignment: %w", err)
		}
		result[cycle] = unit
	}
	return result, rows.Err()
}

// ListUnitStatuses returns every unit status row.
func (r *PostgresRepository) ListUnitStatuses(ctx context.Context) (map[string]UnitStatus, error) {
	query := `
		SELECT unit_id, out_of_service, needs_photos, needs_paperwork, needs_cleaning
		FROM unit_status
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query unit status: %w", err)
	}
	defer rows.Close()

	result := make(map[string]UnitStatus)
	for rows.Next() {
		var s UnitStatus
		if err := rows.Scan(&s.UnitID, &s.OutOfService, &s.NeedsPhotos, &s.NeedsPaperwork, &s.NeedsCleaning); err != nil {
			return nil, fmt.Errorf("scan unit status: %w", err)
		}
		result[s.UnitID] = s
	}
	return result, rows.Err()
}

func nilIfEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

// Ensure PostgresRepository implements the repository interfaces.
var (
	_ DutyRepository = (*PostgresRepository)(nil)
	_ TripRepository = (*PostgresRepository)(nil)
	_ UnitRepository = (*PostgresRepository)(nil)
)

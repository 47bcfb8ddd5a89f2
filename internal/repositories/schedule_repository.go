package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"

	"github.com/lib/pq"
)

// ScheduleRepository defines database operations for time tracking, the
// timesheet employee roster and planned work schedules.
type ScheduleRepository interface {
	UpsertTimeEntry(executor SQLExecutor, entry *models.TimeEntry) error
	UpdateTimeEntryByID(executor SQLExecutor, id int64, hours float64, comment string) (*models.TimeEntry, error)
	DeleteTimeEntry(executor SQLExecutor, id int64) error
	GetRecentTimeEntries(limit int) ([]models.TimeEntry, error)
	GetMonthlyTimesheet(userID *int64, startDate, endDate string) ([]models.UserTimesheet, error)

	GetTimesheetEmployees() ([]models.TimesheetEmployee, error)
	AddTimesheetEmployee(executor SQLExecutor, employee *models.TimesheetEmployee) error
	DeleteTimesheetEmployee(executor SQLExecutor, id int64) error

	UpsertWorkScheduleEntry(executor SQLExecutor, entry *models.WorkScheduleEntry) error
	GetWorkSchedule(userID *int64, startDate, endDate string) ([]models.WorkScheduleEntry, error)
	DeleteWorkScheduleEntry(executor SQLExecutor, id int64) error
}

type scheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// UpsertTimeEntry writes hours for (user_id, work_date). A second write
// for the same key overwrites hours and comment instead of duplicating.
func (r *scheduleRepository) UpsertTimeEntry(executor SQLExecutor, entry *models.TimeEntry) error {
	query := `INSERT INTO time_tracking (user_id, work_date, hours, comment, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          ON CONFLICT (user_id, work_date)
	          DO UPDATE SET hours = EXCLUDED.hours, comment = EXCLUDED.comment, updated_at = NOW()
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		entry.UserID, entry.WorkDate, entry.Hours, entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: user %d does not exist", ErrNotFound, entry.UserID)
		}
		return fmt.Errorf("%w: upserting time entry: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *scheduleRepository) UpdateTimeEntryByID(executor SQLExecutor, id int64, hours float64, comment string) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{}
	query := `UPDATE time_tracking
	          SET hours = $1, comment = $2, updated_at = NOW()
	          WHERE id = $3
	          RETURNING id, user_id, work_date::text, hours, comment, created_at, updated_at`
	err := executor.QueryRow(query, hours, comment, id).Scan(
		&entry.ID, &entry.UserID, &entry.WorkDate, &entry.Hours, &entry.Comment,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating time entry %d: %v", ErrDatabaseError, id, err)
	}
	return entry, nil
}

func (r *scheduleRepository) DeleteTimeEntry(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM time_tracking WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting time entry %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) GetRecentTimeEntries(limit int) ([]models.TimeEntry, error) {
	entries := []models.TimeEntry{}
	rows, err := r.db.Query(
		`SELECT tt.id, tt.user_id, tt.work_date::text, tt.hours, tt.comment, tt.created_at, tt.updated_at,
		        u.full_name, u.role, u.fired_at
		 FROM time_tracking tt
		 JOIN users u ON tt.user_id = u.id
		 WHERE u.role IN ('worker', 'supervisor')
		 ORDER BY tt.work_date DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: getting recent time entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.TimeEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.WorkDate, &entry.Hours, &entry.Comment,
			&entry.CreatedAt, &entry.UpdatedAt,
			&entry.FullName, &entry.Role, &entry.FiredAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning time entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetMonthlyTimesheet returns workers and supervisors with their day cells
// in [startDate, endDate). Users without entries still appear with an
// empty day map. When userID is given the roster is that single user,
// active or not.
func (r *scheduleRepository) GetMonthlyTimesheet(userID *int64, startDate, endDate string) ([]models.UserTimesheet, error) {
	var rows *sql.Rows
	var err error
	if userID != nil {
		rows, err = r.db.Query(
			`SELECT id, full_name, fired_at FROM users
			 WHERE id = $1 AND role IN ('worker', 'supervisor')`, *userID)
	} else {
		rows, err = r.db.Query(
			`SELECT id, full_name, fired_at FROM users
			 WHERE role IN ('worker', 'supervisor') AND status = 'active'
			 ORDER BY full_name`)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting timesheet users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	timesheets := []models.UserTimesheet{}
	index := map[int64]int{}
	ids := []int64{}
	for rows.Next() {
		var sheet models.UserTimesheet
		if err := rows.Scan(&sheet.UserID, &sheet.FullName, &sheet.FiredAt); err != nil {
			return nil, fmt.Errorf("%w: scanning timesheet user: %v", ErrDatabaseError, err)
		}
		sheet.Days = map[string]models.TimesheetDay{}
		index[sheet.UserID] = len(timesheets)
		ids = append(ids, sheet.UserID)
		timesheets = append(timesheets, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating timesheet users: %v", ErrDatabaseError, err)
	}
	if len(timesheets) == 0 {
		return timesheets, nil
	}

	entryRows, err := r.db.Query(
		`SELECT user_id, work_date::text, hours, comment, id
		 FROM time_tracking
		 WHERE user_id = ANY($1)
		   AND work_date >= $2::date
		   AND work_date < $3::date
		 ORDER BY work_date`,
		pq.Array(ids), startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: getting timesheet entries: %v", ErrDatabaseError, err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var uid, recordID int64
		var workDate, comment string
		var hours float64
		if err := entryRows.Scan(&uid, &workDate, &hours, &comment, &recordID); err != nil {
			return nil, fmt.Errorf("%w: scanning timesheet entry: %v", ErrDatabaseError, err)
		}
		if i, ok := index[uid]; ok {
			timesheets[i].Days[workDate] = models.TimesheetDay{Hours: hours, Comment: comment, RecordID: recordID}
		}
	}
	return timesheets, entryRows.Err()
}

// --- Timesheet Employee Roster ---

func (r *scheduleRepository) GetTimesheetEmployees() ([]models.TimesheetEmployee, error) {
	employees := []models.TimesheetEmployee{}
	rows, err := r.db.Query(`SELECT id, full_name, created_at FROM timesheet_employees ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting timesheet employees: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var employee models.TimesheetEmployee
		if err := rows.Scan(&employee.ID, &employee.FullName, &employee.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning timesheet employee: %v", ErrDatabaseError, err)
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (r *scheduleRepository) AddTimesheetEmployee(executor SQLExecutor, employee *models.TimesheetEmployee) error {
	query := `INSERT INTO timesheet_employees (full_name, created_at)
	          VALUES ($1, NOW())
	          RETURNING id, created_at`
	if err := executor.QueryRow(query, employee.FullName).Scan(&employee.ID, &employee.CreatedAt); err != nil {
		return fmt.Errorf("%w: adding timesheet employee: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *scheduleRepository) DeleteTimesheetEmployee(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM timesheet_employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting timesheet employee %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Work Schedule ---

func (r *scheduleRepository) UpsertWorkScheduleEntry(executor SQLExecutor, entry *models.WorkScheduleEntry) error {
	query := `INSERT INTO work_schedule (user_id, work_date, shift_start, shift_end, is_day_off, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          ON CONFLICT (user_id, work_date)
	          DO UPDATE SET shift_start = EXCLUDED.shift_start, shift_end = EXCLUDED.shift_end,
	                        is_day_off = EXCLUDED.is_day_off, updated_at = NOW()
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		entry.UserID, entry.WorkDate, entry.ShiftStart, entry.ShiftEnd, entry.IsDayOff,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: user %d does not exist", ErrNotFound, entry.UserID)
		}
		return fmt.Errorf("%w: upserting work schedule entry: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *scheduleRepository) GetWorkSchedule(userID *int64, startDate, endDate string) ([]models.WorkScheduleEntry, error) {
	query := `SELECT id, user_id, work_date::text, shift_start, shift_end, is_day_off, created_at, updated_at
	          FROM work_schedule
	          WHERE work_date >= $1::date AND work_date < $2::date`
	args := []interface{}{startDate, endDate}
	if userID != nil {
		query += ` AND user_id = $3`
		args = append(args, *userID)
	}
	query += ` ORDER BY work_date, user_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting work schedule: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.WorkScheduleEntry{}
	for rows.Next() {
		var entry models.WorkScheduleEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.WorkDate, &entry.ShiftStart, &entry.ShiftEnd,
			&entry.IsDayOff, &entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning work schedule entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *scheduleRepository) DeleteWorkScheduleEntry(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM work_schedule WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting work schedule entry %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

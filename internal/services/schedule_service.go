package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

var (
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrBadDateFormat     = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrBadMonth          = errors.New("invalid month, expected 1-12")
)

// UpsertTimeEntryRequest records hours for one user on one date. Repeated
// writes for the same (user, date) overwrite hours and comment.
type UpsertTimeEntryRequest struct {
	UserID   int64   `json:"user_id" binding:"required"`
	WorkDate string  `json:"work_date" binding:"required"`
	Hours    float64 `json:"hours"`
	Comment  string  `json:"comment"`
}

type ScheduleService interface {
	UpsertTimeEntry(req UpsertTimeEntryRequest) (*models.TimeEntry, error)
	UpdateTimeEntry(id int64, hours float64, comment string) (*models.TimeEntry, error)
	DeleteTimeEntry(id int64) error
	GetRecentTimeEntries(limit int) ([]models.TimeEntry, error)
	GetMonthlyTimesheet(userID *int64, year, month int) ([]models.UserTimesheet, error)

	GetTimesheetEmployees() ([]models.TimesheetEmployee, error)
	AddTimesheetEmployee(fullName string) (*models.TimesheetEmployee, error)
	DeleteTimesheetEmployee(id int64) error

	UpsertWorkScheduleEntry(entry *models.WorkScheduleEntry) error
	GetWorkSchedule(userID *int64, startDate, endDate string) ([]models.WorkScheduleEntry, error)
	DeleteWorkScheduleEntry(id int64) error
}

type scheduleService struct {
	scheduleRepo repositories.ScheduleRepository
	db           *sql.DB
}

// NewScheduleService creates a new instance of ScheduleService.
func NewScheduleService(sr repositories.ScheduleRepository, db *sql.DB) ScheduleService {
	return &scheduleService{scheduleRepo: sr, db: db}
}

func (s *scheduleService) UpsertTimeEntry(req UpsertTimeEntryRequest) (*models.TimeEntry, error) {
	if req.UserID == 0 || req.WorkDate == "" {
		return nil, fmt.Errorf("%w: user_id and work_date are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", req.WorkDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, ErrBadDateFormat)
	}

	entry := &models.TimeEntry{
		UserID:   req.UserID,
		WorkDate: req.WorkDate,
		Hours:    req.Hours,
		Comment:  req.Comment,
	}
	if err := s.scheduleRepo.UpsertTimeEntry(s.db, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *scheduleService) UpdateTimeEntry(id int64, hours float64, comment string) (*models.TimeEntry, error) {
	entry, err := s.scheduleRepo.UpdateTimeEntryByID(s.db, id, hours, comment)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrTimeEntryNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

func (s *scheduleService) DeleteTimeEntry(id int64) error {
	if err := s.scheduleRepo.DeleteTimeEntry(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrTimeEntryNotFound, id)
		}
		return err
	}
	return nil
}

func (s *scheduleService) GetRecentTimeEntries(limit int) ([]models.TimeEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.scheduleRepo.GetRecentTimeEntries(limit)
}

// GetMonthlyTimesheet returns per-user day cells for [month start, next
// month start).
func (s *scheduleService) GetMonthlyTimesheet(userID *int64, year, month int) ([]models.UserTimesheet, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, ErrBadMonth)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.scheduleRepo.GetMonthlyTimesheet(userID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (s *scheduleService) GetTimesheetEmployees() ([]models.TimesheetEmployee, error) {
	return s.scheduleRepo.GetTimesheetEmployees()
}

func (s *scheduleService) AddTimesheetEmployee(fullName string) (*models.TimesheetEmployee, error) {
	if fullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	employee := &models.TimesheetEmployee{FullName: fullName}
	if err := s.scheduleRepo.AddTimesheetEmployee(s.db, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *scheduleService) DeleteTimesheetEmployee(id int64) error {
	if err := s.scheduleRepo.DeleteTimesheetEmployee(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: employee ID %d", ErrTimeEntryNotFound, id)
		}
		return err
	}
	return nil
}

func (s *scheduleService) UpsertWorkScheduleEntry(entry *models.WorkScheduleEntry) error {
	if entry.UserID == 0 || entry.WorkDate == "" {
		return fmt.Errorf("%w: user_id and work_date are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", entry.WorkDate); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, ErrBadDateFormat)
	}
	return s.scheduleRepo.UpsertWorkScheduleEntry(s.db, entry)
}

func (s *scheduleService) GetWorkSchedule(userID *int64, startDate, endDate string) ([]models.WorkScheduleEntry, error) {
	for _, date := range []string{startDate, endDate} {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, ErrBadDateFormat)
		}
	}
	return s.scheduleRepo.GetWorkSchedule(userID, startDate, endDate)
}

func (s *scheduleService) DeleteWorkScheduleEntry(id int64) error {
	if err := s.scheduleRepo.DeleteWorkScheduleEntry(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: schedule entry ID %d", ErrTimeEntryNotFound, id)
		}
		return err
	}
	return nil
}

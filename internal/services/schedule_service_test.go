package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"prodtrack_backend/internal/repositories"
)

func newScheduleTestService(t *testing.T) (ScheduleService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewScheduleService(repositories.NewScheduleRepository(db), db)
	return svc, mock, func() { db.Close() }
}

func TestUpsertTimeEntry(t *testing.T) {
	svc, mock, cleanup := newScheduleTestService(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO time_tracking`).
		WithArgs(int64(3), "2026-08-14", 8.0, "overtime").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), time.Now(), time.Now()))

	entry, err := svc.UpsertTimeEntry(UpsertTimeEntryRequest{
		UserID:   3,
		WorkDate: "2026-08-14",
		Hours:    8,
		Comment:  "overtime",
	})
	if err != nil {
		t.Fatalf("UpsertTimeEntry: %v", err)
	}
	if entry.ID != 1 {
		t.Errorf("entry ID = %d, want 1", entry.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertTimeEntryBadDate(t *testing.T) {
	svc, _, cleanup := newScheduleTestService(t)
	defer cleanup()

	_, err := svc.UpsertTimeEntry(UpsertTimeEntryRequest{UserID: 3, WorkDate: "14.08.2026"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestGetMonthlyTimesheetWindow(t *testing.T) {
	svc, mock, cleanup := newScheduleTestService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, full_name, fired_at FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "fired_at"}).
			AddRow(int64(3), "Worker One", nil))
	mock.ExpectQuery(`SELECT user_id, work_date::text, hours, comment, id`).
		WithArgs(pq.Array([]int64{3}), "2026-12-01", "2027-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "work_date", "hours", "comment", "id"}).
			AddRow(int64(3), "2026-12-05", 7.5, "", int64(9)))

	sheets, err := svc.GetMonthlyTimesheet(nil, 2026, 12)
	if err != nil {
		t.Fatalf("GetMonthlyTimesheet: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("sheets = %d, want 1", len(sheets))
	}
	day, ok := sheets[0].Days["2026-12-05"]
	if !ok || day.Hours != 7.5 || day.RecordID != 9 {
		t.Errorf("day cell = %+v, ok = %v", day, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetMonthlyTimesheetBadMonth(t *testing.T) {
	svc, _, cleanup := newScheduleTestService(t)
	defer cleanup()

	if _, err := svc.GetMonthlyTimesheet(nil, 2026, 13); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := svc.GetMonthlyTimesheet(nil, 2026, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestGetRecentTimeEntriesClampsLimit(t *testing.T) {
	svc, mock, cleanup := newScheduleTestService(t)
	defer cleanup()

	cols := []string{"id", "user_id", "work_date", "hours", "comment", "created_at", "updated_at"}
	for _, limit := range []int{-5, 0, 501} {
		mock.ExpectQuery(`SELECT .+ FROM time_tracking`).
			WithArgs(100).
			WillReturnRows(sqlmock.NewRows(cols))
		if _, err := svc.GetRecentTimeEntries(limit); err != nil {
			t.Fatalf("GetRecentTimeEntries(%d): %v", limit, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetWorkScheduleValidatesDates(t *testing.T) {
	svc, _, cleanup := newScheduleTestService(t)
	defer cleanup()

	if _, err := svc.GetWorkSchedule(nil, "2026-08-01", "bad"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

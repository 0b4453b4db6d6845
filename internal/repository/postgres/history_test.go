package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/planner-ranker/internal/domain"
)

func TestSaveBatchInsertsAllRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	records := []domain.HistoricalRecord{
		{PlanID: "Plan_1", Publisher: "Publisher_1", Date: day, Revenue: 700, DistributionCount: 2000, Clicks: 100, Subcategory: "Finance"},
		{PlanID: "Plan_2", Publisher: "Publisher_2", Date: day, Revenue: 350, DistributionCount: 1000, Clicks: 40},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO plan_history")
	prep.ExpectExec().
		WithArgs("Plan_1", "Publisher_1", day, 700.0, 2000, 100, "Finance").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("Plan_2", "Publisher_2", day, 350.0, 1000, 40, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewHistoryRepo(db)
	if err := repo.SaveBatch(context.Background(), records); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSaveBatchEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewHistoryRepo(db)
	if err := repo.SaveBatch(context.Background(), nil); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSaveBatchRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO plan_history")
	prep.ExpectExec().
		WithArgs("Plan_1", "Publisher_1", day, 700.0, 2000, 100, "").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewHistoryRepo(db)
	err = repo.SaveBatch(context.Background(), []domain.HistoricalRecord{
		{PlanID: "Plan_1", Publisher: "Publisher_1", Date: day, Revenue: 700, DistributionCount: 2000, Clicks: 100},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestLoadWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	since := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"plan_id", "publisher", "record_date", "revenue",
		"distribution_count", "clicks", "subcategory",
	}).
		AddRow("Plan_1", "Publisher_1", since, 700.0, 2000, 100, "Finance").
		AddRow("Plan_1", "Publisher_2", until, 350.0, 1000, 50, "Finance")

	mock.ExpectQuery("SELECT plan_id, COALESCE\\(publisher,''\\), record_date").
		WithArgs(since, until).
		WillReturnRows(rows)

	repo := NewHistoryRepo(db)
	records, err := repo.LoadWindow(context.Background(), since, until)
	if err != nil {
		t.Fatalf("LoadWindow: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].PlanID != "Plan_1" || records[0].Revenue != 700 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Publisher != "Publisher_2" || records[1].Clicks != 50 {
		t.Errorf("second record = %+v", records[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestLoadPlanWindowNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	since := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT plan_id, COALESCE\\(publisher,''\\), record_date").
		WithArgs("Plan_X", since, until).
		WillReturnRows(sqlmock.NewRows([]string{
			"plan_id", "publisher", "record_date", "revenue",
			"distribution_count", "clicks", "subcategory",
		}))

	repo := NewHistoryRepo(db)
	_, err = repo.LoadPlanWindow(context.Background(), "Plan_X", since, until)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLatestDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	latest := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT MAX\\(record_date\\)").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(latest))

	repo := NewHistoryRepo(db)
	got, err := repo.LatestDate(context.Background())
	if err != nil {
		t.Fatalf("LatestDate: %v", err)
	}
	if !got.Equal(latest) {
		t.Errorf("LatestDate = %v, want %v", got, latest)
	}
}

func TestLatestDateEmptyTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT MAX\\(record_date\\)").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	repo := NewHistoryRepo(db)
	if _, err := repo.LatestDate(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/mindtrack/internal/app"
	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/storage/sqlite"
)

var errIDSource = errors.New("entropy source unavailable")

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	app      *app.Context
	store    *sqlite.Store
	checkins *CheckinService
	tasks    *MicroTaskService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.sqlite"), sqlite.Options{MaxOpenConns: 4})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	seq := 0
	a := &app.Context{
		Store: store,
		Now:   func() time.Time { return testNow },
		NewID: func() (string, error) {
			seq++
			return fmt.Sprintf("00000000-0000-4000-8000-%012d", seq), nil
		},
	}

	return &testEnv{
		app:      a,
		store:    store,
		checkins: NewCheckinService(a),
		tasks:    NewMicroTaskService(a),
	}
}

func strPtr(s string) *string { return &s }

func assertKind(t *testing.T, err error, kind apperr.Kind) *apperr.AppError {
	t.Helper()
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.AppError, got %T (%v)", err, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, appErr.Kind, err)
	}
	return appErr
}

func (e *testEnv) record(t *testing.T, date string) *models.CheckinResponse {
	t.Helper()
	resp, err := e.checkins.RecordCheckin(context.Background(), models.CreateCheckinPayload{Date: date, MoodLevel: 3})
	if err != nil {
		t.Fatalf("RecordCheckin(%s) failed: %v", date, err)
	}
	return resp
}

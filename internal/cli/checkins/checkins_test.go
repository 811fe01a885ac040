package checkins

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/config"
	"github.com/julianstephens/mindtrack/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{DataDir: t.TempDir(), DatabaseFile: "test.sqlite", Locale: "en"}
	store := sqlite.NewStore(filepath.Join(cfg.DataDir, cfg.DatabaseFile), sqlite.Options{})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), cfg, store, strings.NewReader(""), &out)
	ctx.App.Now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	return ctx, &out
}

func TestCheckinRecordAndGet(t *testing.T) {
	ctx, out := setupTestContext(t)

	record := &CheckinRecordCmd{Mood: 4, Note: "sunny", Tag: []string{"rested"}, Todo: []string{"call mom"}}
	if err := record.Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !strings.Contains(out.String(), "2025-01-15  mood 4/5") {
		t.Errorf("expected today's date to be used, got: %s", out.String())
	}

	out.Reset()
	if err := (&CheckinGetCmd{}).Run(ctx); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for _, want := range []string{"sunny", "rested", "call mom"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output: %s", want, out.String())
		}
	}

	out.Reset()
	if err := (&CheckinGetCmd{Date: "2025-01-01"}).Run(ctx); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(out.String(), "No check-in recorded for 2025-01-01") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestCheckinRecordRejectsFuture(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&CheckinRecordCmd{Mood: 3, Date: "2025-01-16"}).Run(ctx); err == nil {
		t.Fatal("expected a future date to be rejected")
	}
}

func TestCheckinListAndDelete(t *testing.T) {
	ctx, out := setupTestContext(t)

	for _, date := range []string{"2025-01-13", "2025-01-14"} {
		if err := (&CheckinRecordCmd{Mood: 2, Date: date}).Run(ctx); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	out.Reset()
	if err := (&CheckinListCmd{From: "2025-01-14"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(out.String(), "2025-01-13") || !strings.Contains(out.String(), "2025-01-14") {
		t.Errorf("unexpected list output: %s", out.String())
	}

	resp, err := ctx.Checkins.GetCheckinByDate(ctx.Ctx, "2025-01-14")
	if err != nil || resp == nil {
		t.Fatalf("GetCheckinByDate failed: %v", err)
	}

	out.Reset()
	if err := (&CheckinDeleteCmd{ID: resp.ExternalID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted check-in "+resp.ExternalID) {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&CheckinListCmd{From: "2025-01-14"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No check-ins found.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

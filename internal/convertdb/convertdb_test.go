package convertdb

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndQueryRuns(t *testing.T) {
	db := openTestDB(t)

	ok := Run{
		InputPath:    "capture.lvx",
		OutputPath:   "capture.pcd",
		Format:       "binary",
		Status:       "ok",
		PointCount:   12345,
		BytesWritten: 197987,
		Warnings:     []string{"frame 3: stray bytes", "frame 7: overrun"},
	}
	id, err := db.RecordRun(ok)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated run id")
	}

	failed := Run{
		ID:         "run-2",
		InputPath:  "broken.lvx",
		OutputPath: "broken.pcd",
		Format:     "ascii",
		Status:     "failed",
		Error:      "truncated input",
	}
	if _, err := db.RecordRun(failed); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	var got *Run
	for i := range runs {
		if runs[i].ID == id {
			got = &runs[i]
		}
	}
	if got == nil {
		t.Fatalf("recorded run %s not returned", id)
	}

	want := ok
	want.ID = id
	ignore := cmpopts.IgnoreFields(Run{}, "FinishedAt")
	if diff := cmp.Diff(want, *got, ignore); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
	if got.FinishedAt.IsZero() {
		t.Error("FinishedAt should be populated")
	}
}

func TestRecentRunsLimit(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := db.RecordRun(Run{
			InputPath:  "a.lvx",
			OutputPath: "a.pcd",
			Format:     "binary",
			Status:     "ok",
		}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.RecentRuns(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Errorf("got %d runs, want 3", len(runs))
	}
}

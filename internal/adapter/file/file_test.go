package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bulktracker/internal/adapter/file"
	"bulktracker/internal/domain"
)

func TestReadAll_MissingFile(t *testing.T) {
	b := file.New(filepath.Join(t.TempDir(), "data.csv"))
	rows, err := b.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("missing file should read as empty, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	b := file.New(path)
	ctx := context.Background()

	want := []domain.Row{
		{Date: "2024-01-01", Weight: "80", SMM: "35"},
		{Date: "2024-01-02", Weight: "80.4", SMM: "35.1"},
	}
	if err := b.WriteAll(ctx, want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: %+v != %+v", i, got[i], want[i])
		}
	}

	// No stray temp files after the atomic rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only data.csv in dir, found %d entries", len(entries))
	}
}

func TestAppend(t *testing.T) {
	b := file.New(filepath.Join(t.TempDir(), "data.csv"))
	ctx := context.Background()

	if err := b.Append(ctx, domain.Row{Date: "2024-01-01", Weight: "80", SMM: "35"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(ctx, domain.Row{Date: "2024-01-02", Weight: "80.4", SMM: "35.1"}); err != nil {
		t.Fatal(err)
	}

	rows, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Date != "2024-01-02" {
		t.Errorf("append order wrong: %+v", rows)
	}
}

func TestReadAll_MalformedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("when,kg,muscle\n2024-01-01,80,35\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := file.New(path).ReadAll(context.Background())
	if !errors.Is(err, domain.ErrMalformedSchema) {
		t.Fatalf("err = %v, want ErrMalformedSchema", err)
	}
}

func TestAppend_StartsOverOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("nonsense\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := file.New(path)
	ctx := context.Background()
	if err := b.Append(ctx, domain.Row{Date: "2024-01-01", Weight: "80", SMM: "35"}); err != nil {
		t.Fatalf("append over malformed file: %v", err)
	}
	rows, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Date != "2024-01-01" {
		t.Errorf("got %+v, want just the appended row", rows)
	}
}

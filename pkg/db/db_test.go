package db

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestInsertURL_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	id1, err := db.InsertURL("https://example.org/page")
	if err != nil {
		t.Fatalf("InsertURL() error = %v", err)
	}
	id2, err := db.InsertURL("https://example.org/page")
	if err != nil {
		t.Fatalf("InsertURL() second call error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("InsertURL() returned %d then %d, want same id", id1, id2)
	}
}

func TestPutGetPage_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	html := []byte("<html><body>cached</body></html>")
	if err := db.PutPage("https://example.org/p", html); err != nil {
		t.Fatalf("PutPage() error = %v", err)
	}

	got, fresh, err := db.GetPage("https://example.org/p", time.Hour)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if !fresh {
		t.Fatal("GetPage() fresh = false, want true")
	}
	if string(got) != string(html) {
		t.Errorf("GetPage() = %q, want %q", got, html)
	}
}

func TestGetPage_Miss(t *testing.T) {
	db := setupTestDB(t)

	_, fresh, err := db.GetPage("https://example.org/unknown", time.Hour)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if fresh {
		t.Error("GetPage() fresh = true for unknown URL, want false")
	}
}

func TestGetPage_Stale(t *testing.T) {
	db := setupTestDB(t)

	if err := db.PutPage("https://example.org/old", []byte("x")); err != nil {
		t.Fatalf("PutPage() error = %v", err)
	}
	time.Sleep(1100 * time.Millisecond)

	_, fresh, err := db.GetPage("https://example.org/old", time.Second)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if fresh {
		t.Error("GetPage() fresh = true for stale entry, want false")
	}
}

func TestPutPage_Replaces(t *testing.T) {
	db := setupTestDB(t)

	if err := db.PutPage("https://example.org/p", []byte("one")); err != nil {
		t.Fatalf("PutPage() error = %v", err)
	}
	if err := db.PutPage("https://example.org/p", []byte("two")); err != nil {
		t.Fatalf("PutPage() replace error = %v", err)
	}

	got, _, err := db.GetPage("https://example.org/p", time.Hour)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if string(got) != "two" {
		t.Errorf("GetPage() = %q, want the replacement", got)
	}
}

func TestRecordAccess(t *testing.T) {
	db := setupTestDB(t)

	if err := db.RecordAccess("https://example.org/p", 200, "", true); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}
	if err := db.RecordAccess("https://example.org/p", 404, "fetch_error", false); err != nil {
		t.Fatalf("RecordAccess() failed attempt error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM accesses").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 2 {
		t.Errorf("accesses count = %d, want 2", count)
	}
}

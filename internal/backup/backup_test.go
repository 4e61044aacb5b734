package backup

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

func setupTestDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.json")
	writeDocument(t, path, models.DefaultDocument())
	return path
}

func writeDocument(t *testing.T, path string, doc models.Document) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode document: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
}

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitgrid.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE documents (name TEXT PRIMARY KEY, body TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO documents (name, body) VALUES ('habits.json', '{"habits":[]}')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

// steppedClock returns a clock advancing one minute per call
func steppedClock() func() time.Time {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"/data/habits.json", KindDocument},
		{"/data/habitgrid.db", KindSQLite},
		{"/data/habitgrid.SQLITE", KindSQLite},
		{"/data/habits", KindDocument},
	}
	for _, tt := range tests {
		if got := KindOf(tt.path); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCreateDocumentBackup(t *testing.T) {
	docPath := setupTestDocument(t)
	mgr := NewManager(docPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(backupPath), constants.BackupFilePrefix) || filepath.Ext(backupPath) != ".json" {
		t.Errorf("unexpected backup name %s", filepath.Base(backupPath))
	}
	if filepath.Dir(backupPath) != mgr.BackupDir() {
		t.Errorf("backup written outside %s", mgr.BackupDir())
	}

	if err := verifyDocument(backupPath); err != nil {
		t.Errorf("backup is not a valid document: %v", err)
	}
}

func TestCreateBackupRejectsCorruptDocument(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "habits.json")
	if err := os.WriteFile(docPath, []byte("{oops"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager(docPath).CreateBackup(); err == nil {
		t.Error("CreateBackup should refuse a corrupt document")
	}
}

func TestCreateBackupMissingSource(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "habits.json"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("CreateBackup should fail when the source does not exist")
	}
}

func TestCreateDatabaseBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if mgr.Kind() != KindSQLite {
		t.Fatalf("Kind() = %v, want sqlite", mgr.Kind())
	}

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		t.Fatalf("failed to query backup database: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row in backup, got %d", count)
	}
}

func TestBackupRotation(t *testing.T) {
	mgr := NewManager(setupTestDocument(t))
	mgr.now = steppedClock()

	numBackups := constants.MaxBackups + 5
	for i := 0; i < numBackups; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}

	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted correctly: backup %d is newer than backup %d", i, i-1)
		}
	}
}

func TestSameMinuteBackupsGetDistinctNames(t *testing.T) {
	mgr := NewManager(setupTestDocument(t))
	fixed := time.Date(2024, 6, 1, 8, 0, 30, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 4 {
		t.Errorf("expected 4 backups, got %d", len(backups))
	}
}

func TestListBackups(t *testing.T) {
	mgr := NewManager(setupTestDocument(t))
	mgr.now = steppedClock()

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}
	// unrelated files are ignored
	if err := os.WriteFile(filepath.Join(mgr.BackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mgr.BackupDir(), constants.BackupFilePrefix+"garbage.json"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
	for _, backup := range backups {
		if backup.Size == 0 {
			t.Error("backup size is 0")
		}
		if backup.Timestamp.IsZero() {
			t.Error("backup timestamp is zero")
		}
	}
}

func TestRestoreDocumentBackup(t *testing.T) {
	docPath := setupTestDocument(t)
	mgr := NewManager(docPath)
	mgr.now = steppedClock()

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	modified := models.DefaultDocument()
	modified.Habits = modified.Habits[:1]
	writeDocument(t, docPath, modified)

	safety, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if safety == "" {
		t.Error("expected a safety backup of the replaced document")
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	var restored models.Document
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("restored document does not decode: %v", err)
	}
	if len(restored.Habits) != 3 {
		t.Errorf("expected 3 habits after restore, got %d", len(restored.Habits))
	}

	data, err = os.ReadFile(safety)
	if err != nil {
		t.Fatal(err)
	}
	var saved models.Document
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if len(saved.Habits) != 1 {
		t.Errorf("safety backup should hold the replaced document, got %d habits", len(saved.Habits))
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	docPath := setupTestDocument(t)
	mgr := NewManager(docPath)

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bad); err == nil {
		t.Error("RestoreBackup should reject an invalid backup")
	}
	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("RestoreBackup should reject a missing backup")
	}

	if err := verifyDocument(docPath); err != nil {
		t.Errorf("source document was damaged: %v", err)
	}
}

func TestRestoreDatabaseBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppedClock()

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`DELETE FROM documents`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after restore, got %d", count)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"20240601-0805", true},
		{"20240601-080530", true},
		{"20240601-080530-2", true},
		{"garbage", false},
		{"20240601", false},
	}
	for _, tt := range tests {
		if _, ok := parseTimestamp(tt.in); ok != tt.ok {
			t.Errorf("parseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

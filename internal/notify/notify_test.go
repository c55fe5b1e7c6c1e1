package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homeguardian-core/internal/infrastructure/database"
	"github.com/nerrad567/homeguardian-core/migrations"
)

var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	n := New("guest1", "Motion detected", "guest@example.com", false, testNow)
	id, ok := strings.CutPrefix(n.ID, "ntf-")
	if !ok {
		t.Errorf("ID = %q, want ntf- prefix", n.ID)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("ID = %q, want ntf-<uuid>: %v", n.ID, err)
	}
	if n.Emergency {
		t.Error("Emergency = true for user notification")
	}
	if n.Deliverable() {
		t.Error("Deliverable() = true for disabled notification")
	}
	if other := New("guest1", "x", "", true, testNow); other.ID == n.ID {
		t.Error("two notifications share an ID")
	}
}

func TestNewIDsUnique(t *testing.T) {
	const n = 100000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := New("guest1", "Motion detected", "", true, testNow).ID
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID %q after %d notifications", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestNewEmergency(t *testing.T) {
	n := NewEmergency("Fire in kitchen", "112", testNow)
	if n.Message != "[EMERGENCY] Fire in kitchen" {
		t.Errorf("Message = %q", n.Message)
	}
	if n.Recipient != "" {
		t.Errorf("Recipient = %q, want empty", n.Recipient)
	}
	if !n.Enabled || !n.Emergency || !n.Deliverable() {
		t.Errorf("emergency flags enabled=%v emergency=%v deliverable=%v", n.Enabled, n.Emergency, n.Deliverable())
	}
}

func TestIsBlank(t *testing.T) {
	tests := map[string]bool{"": true, "  \t": true, "hi": false, " hi ": false}
	for in, want := range tests {
		if got := IsBlank(in); got != want {
			t.Errorf("IsBlank(%q) = %v, want %v", in, got, want)
		}
	}
}

type recordingDispatcher struct{ got []Notification }

func (r *recordingDispatcher) Dispatch(n Notification) { r.got = append(r.got, n) }

func TestDispatchersFanOut(t *testing.T) {
	a, b := &recordingDispatcher{}, &recordingDispatcher{}
	ds := Dispatchers{a, nil, b}
	ds.Dispatch(New("u", "m", "", true, testNow))
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("dispatch counts = %d/%d, want 1/1", len(a.got), len(b.got))
	}
}

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestSQLiteRepository(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := New("guest1", "Motion detected", "guest@example.com", true, testNow)
	emergency := NewEmergency("Intrusion detected", "112", testNow.Add(time.Second))
	for _, n := range []Notification{user, emergency} {
		if err := repo.Save(ctx, n); err != nil {
			t.Fatalf("Save(%s) error = %v", n.ID, err)
		}
	}

	got, err := repo.ListByRecipient(ctx, "guest1", 0)
	if err != nil {
		t.Fatalf("ListByRecipient() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != user.ID || !got[0].Enabled {
		t.Errorf("ListByRecipient(guest1) = %+v", got)
	}

	system, err := repo.ListByRecipient(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListByRecipient(\"\") error = %v", err)
	}
	if len(system) != 1 || !system[0].Emergency {
		t.Errorf("ListByRecipient(\"\") = %+v, want the emergency", system)
	}

	if err := repo.UpdateContact(ctx, user.ID, "new@example.com"); err != nil {
		t.Fatalf("UpdateContact() error = %v", err)
	}
	got, _ = repo.ListByRecipient(ctx, "guest1", 0)
	if got[0].ContactAddress != "new@example.com" {
		t.Errorf("ContactAddress = %q, want new@example.com", got[0].ContactAddress)
	}

	if err := repo.UpdateContact(ctx, "ntf-missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateContact(missing) error = %v, want ErrNotFound", err)
	}
}

func TestArchiver(t *testing.T) {
	repo := openTestRepo(t)
	a := NewArchiver(repo)

	n := New("guest1", "Door unlocked", "old@example.com", true, testNow)
	a.Store(n)
	a.ContactChanged(n.ID, "new@example.com")
	a.ContactChanged("ntf-unknown", "ignored")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Run(ctx)

	got, err := repo.ListByRecipient(context.Background(), "guest1", 0)
	if err != nil {
		t.Fatalf("ListByRecipient() error = %v", err)
	}
	if len(got) != 1 || got[0].ContactAddress != "new@example.com" {
		t.Errorf("archived = %+v, want one with updated contact", got)
	}
}

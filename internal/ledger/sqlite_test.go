package ledger_test

import (
	"database/sql"
	"testing"
	"time"

	"intake-go/internal/intake"
	"intake-go/internal/ledger"
	"intake-go/internal/ledger/migrations"
	"intake-go/internal/model"
	"intake-go/internal/testutil"
)

// newTestLedger creates an in-memory ledger and also returns the raw
// connection for assertions that go behind the API.
func newTestLedger(t *testing.T, clock intake.Clock) (*ledger.SQLiteLedger, *sql.DB) {
	t.Helper()

	db, err := ledger.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("OpenConnection() error = %v", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		t.Fatalf("MigrateUp() error = %v", err)
	}

	led := ledger.NewSQLiteLedgerFromDB(db, clock)
	t.Cleanup(func() { led.Close() })
	return led, db
}

func sampleRecord(identity string) *model.EvidenceRecord {
	return &model.EvidenceRecord{
		Identity:       identity,
		OriginalPath:   "/evidence/msg.eml",
		Filename:       "msg.eml",
		FileHash:       testutil.SHA256Hex([]byte(identity)),
		FileSize:       1234,
		ContentType:    model.DocumentTypeEmail,
		CreatedAt:      time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		ModifiedAt:     time.Date(2025, 1, 12, 9, 30, 0, 0, time.UTC),
		RelevanceScore: 9,
		DocumentType:   model.DocumentTypeEmail,
		EmailFrom:      "mschatz@firmmail.com",
		EmailTo:        "client@example.com",
		EmailSubject:   "Retainer agreement",
		EmailDate:      "Mon, 13 Jan 2025 09:15:00 -0600",
	}
}

func TestSQLiteLedger_Upsert(t *testing.T) {
	t.Run("insert and read back", func(t *testing.T) {
		clock := testutil.FixedClock()
		led, _ := newTestLedger(t, clock)

		if err := led.Upsert(sampleRecord("CH-001")); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		got, err := led.GetByIdentity("CH-001")
		if err != nil {
			t.Fatalf("GetByIdentity() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetByIdentity() = nil, want record")
		}
		if got.Filename != "msg.eml" {
			t.Errorf("Filename = %q, want %q", got.Filename, "msg.eml")
		}
		if got.RelevanceScore != 9 {
			t.Errorf("RelevanceScore = %d, want 9", got.RelevanceScore)
		}
		if got.EmailSubject != "Retainer agreement" {
			t.Errorf("EmailSubject = %q, want %q", got.EmailSubject, "Retainer agreement")
		}
		if !got.IngestedAt.Equal(clock.Now().UTC()) {
			t.Errorf("IngestedAt = %v, want %v", got.IngestedAt, clock.Now().UTC())
		}
	})

	t.Run("missing identity returns nil", func(t *testing.T) {
		led, _ := newTestLedger(t, testutil.FixedClock())

		got, err := led.GetByIdentity("CH-NOPE")
		if err != nil {
			t.Fatalf("GetByIdentity() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetByIdentity() = %+v, want nil", got)
		}
	})

	t.Run("re-upsert updates mutable fields and preserves ingested_at", func(t *testing.T) {
		clock := testutil.FixedClock()
		led, _ := newTestLedger(t, clock)

		if err := led.Upsert(sampleRecord("CH-001")); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		firstIngested := clock.Now().UTC()

		clock.Advance(48 * time.Hour)

		moved := sampleRecord("CH-001")
		moved.OriginalPath = "/evidence/moved/msg.eml"
		moved.RelevanceScore = 10
		if err := led.Upsert(moved); err != nil {
			t.Fatalf("Upsert() second error = %v", err)
		}

		got, err := led.GetByIdentity("CH-001")
		if err != nil {
			t.Fatalf("GetByIdentity() error = %v", err)
		}
		if got.OriginalPath != "/evidence/moved/msg.eml" {
			t.Errorf("OriginalPath = %q, want updated path", got.OriginalPath)
		}
		if got.RelevanceScore != 10 {
			t.Errorf("RelevanceScore = %d, want 10", got.RelevanceScore)
		}
		if !got.IngestedAt.Equal(firstIngested) {
			t.Errorf("IngestedAt = %v, want preserved first value %v", got.IngestedAt, firstIngested)
		}

		// Still a single row.
		records, err := led.QueryByMinScore(0)
		if err != nil {
			t.Fatalf("QueryByMinScore() error = %v", err)
		}
		if len(records) != 1 {
			t.Errorf("row count = %d, want 1", len(records))
		}
	})

	t.Run("re-upsert never touches curation fields", func(t *testing.T) {
		led, db := newTestLedger(t, testutil.FixedClock())

		if err := led.Upsert(sampleRecord("CH-001")); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		// Downstream review tooling annotates the record.
		_, err := db.Exec(`UPDATE evidence_ledger
			SET tags = 'reviewed', summary = 'key exhibit', legal_privilege = 'none', evidence_category = 'FINANCIAL'
			WHERE chitty_id = 'CH-001'`)
		if err != nil {
			t.Fatalf("annotating record: %v", err)
		}

		if err := led.Upsert(sampleRecord("CH-001")); err != nil {
			t.Fatalf("Upsert() after annotation error = %v", err)
		}

		got, err := led.GetByIdentity("CH-001")
		if err != nil {
			t.Fatalf("GetByIdentity() error = %v", err)
		}
		if got.Tags != "reviewed" {
			t.Errorf("Tags = %q, want %q", got.Tags, "reviewed")
		}
		if got.Summary != "key exhibit" {
			t.Errorf("Summary = %q, want %q", got.Summary, "key exhibit")
		}
		if got.EvidenceCategory != "FINANCIAL" {
			t.Errorf("EvidenceCategory = %q, want %q", got.EvidenceCategory, "FINANCIAL")
		}
	})
}

func TestSQLiteLedger_QueryByMinScore(t *testing.T) {
	clock := testutil.FixedClock()
	led, _ := newTestLedger(t, clock)

	scores := map[string]int{"CH-A": 3, "CH-B": 7, "CH-C": 10, "CH-D": 7}
	for _, id := range []string{"CH-A", "CH-B", "CH-C", "CH-D"} {
		rec := sampleRecord(id)
		rec.RelevanceScore = scores[id]
		if err := led.Upsert(rec); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
		clock.Advance(time.Minute)
	}

	records, err := led.QueryByMinScore(5)
	if err != nil {
		t.Fatalf("QueryByMinScore() error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	// Descending score, then ascending ingestion time for the tie.
	wantOrder := []string{"CH-C", "CH-B", "CH-D"}
	for i, want := range wantOrder {
		if records[i].Identity != want {
			t.Errorf("records[%d] = %s, want %s", i, records[i].Identity, want)
		}
	}
}

func TestSQLiteLedger_Timeline(t *testing.T) {
	t.Run("add and list events", func(t *testing.T) {
		led, _ := newTestLedger(t, testutil.FixedClock())

		first, err := led.AddTimelineEvent(&model.TimelineEvent{
			Date:        "2025-01-13",
			EventType:   "FILING",
			Description: "Complaint filed",
		})
		if err != nil {
			t.Fatalf("AddTimelineEvent() error = %v", err)
		}
		if first.ID == 0 {
			t.Error("AddTimelineEvent() returned zero ID")
		}

		if _, err := led.AddTimelineEvent(&model.TimelineEvent{
			Date:        "2025-02-01",
			EventType:   "HEARING",
			Description: "Status hearing",
		}); err != nil {
			t.Fatalf("AddTimelineEvent() second error = %v", err)
		}

		events, err := led.ListTimelineEvents(10)
		if err != nil {
			t.Fatalf("ListTimelineEvents() error = %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("got %d events, want 2", len(events))
		}
		// Oldest first.
		if events[0].EventType != "FILING" || events[1].EventType != "HEARING" {
			t.Errorf("events out of order: %s, %s", events[0].EventType, events[1].EventType)
		}
	})

	t.Run("event may reference an existing evidence record", func(t *testing.T) {
		led, _ := newTestLedger(t, testutil.FixedClock())

		if err := led.Upsert(sampleRecord("CH-001")); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		event, err := led.AddTimelineEvent(&model.TimelineEvent{
			Date:        "2025-01-13",
			EventType:   "EVIDENCE",
			Description: "Email recovered",
			EvidenceID:  "CH-001",
		})
		if err != nil {
			t.Fatalf("AddTimelineEvent() error = %v", err)
		}

		events, err := led.ListTimelineEvents(10)
		if err != nil {
			t.Fatalf("ListTimelineEvents() error = %v", err)
		}
		if events[0].ID != event.ID || events[0].EvidenceID != "CH-001" {
			t.Errorf("listed event = %+v, want EvidenceID CH-001", events[0])
		}
	})

	t.Run("event referencing a missing record is rejected", func(t *testing.T) {
		led, _ := newTestLedger(t, testutil.FixedClock())

		_, err := led.AddTimelineEvent(&model.TimelineEvent{
			Date:        "2025-01-13",
			EventType:   "EVIDENCE",
			Description: "Dangling reference",
			EvidenceID:  "CH-GHOST",
		})
		if err == nil {
			t.Fatal("AddTimelineEvent() error = nil, want foreign key violation")
		}
	})

	t.Run("limit caps the listing", func(t *testing.T) {
		led, _ := newTestLedger(t, testutil.FixedClock())

		for i := 0; i < 5; i++ {
			if _, err := led.AddTimelineEvent(&model.TimelineEvent{
				Date:        "2025-01-13",
				EventType:   "NOTE",
				Description: "entry",
			}); err != nil {
				t.Fatalf("AddTimelineEvent() error = %v", err)
			}
		}

		events, err := led.ListTimelineEvents(3)
		if err != nil {
			t.Fatalf("ListTimelineEvents() error = %v", err)
		}
		if len(events) != 3 {
			t.Errorf("got %d events, want 3", len(events))
		}
	})
}

func TestSQLiteLedger_ScanOperations(t *testing.T) {
	clock := testutil.FixedClock()
	led, _ := newTestLedger(t, clock)

	op, err := led.CreateScanOperation("Scan", "/evidence")
	if err != nil {
		t.Fatalf("CreateScanOperation() error = %v", err)
	}
	if op.ID == 0 {
		t.Error("CreateScanOperation() returned zero ID")
	}

	ops, err := led.ListScanOperations(10)
	if err != nil {
		t.Fatalf("ListScanOperations() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}
	if ops[0].FinishedAt != nil {
		t.Errorf("FinishedAt = %v before finish, want nil", ops[0].FinishedAt)
	}

	clock.Advance(30 * time.Second)
	if err := led.FinishScanOperation(op.ID, "error"); err != nil {
		t.Fatalf("FinishScanOperation() error = %v", err)
	}

	ops, err = led.ListScanOperations(10)
	if err != nil {
		t.Fatalf("ListScanOperations() error = %v", err)
	}
	if ops[0].FinishedAt == nil {
		t.Fatal("FinishedAt = nil after finish")
	}
	if ops[0].Status != "error" {
		t.Errorf("Status = %q, want %q", ops[0].Status, "error")
	}

	// Newest first.
	if _, err := led.CreateScanOperation("GenerateReport", ""); err != nil {
		t.Fatalf("CreateScanOperation() second error = %v", err)
	}
	ops, err = led.ListScanOperations(10)
	if err != nil {
		t.Fatalf("ListScanOperations() error = %v", err)
	}
	if ops[0].Operation != "GenerateReport" {
		t.Errorf("ops[0] = %s, want newest first", ops[0].Operation)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gardentracker/internal/dateutil"
	"gardentracker/internal/notify"
	"gardentracker/internal/store"
)

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

type notifyCall struct {
	date, gardener, notes string
}

func (f *fakeNotifier) Notify(ctx context.Context, date, gardener, notes string) error {
	f.calls = append(f.calls, notifyCall{date, gardener, notes})
	return f.err
}

func fixedClock() time.Time {
	return time.Date(2025, time.July, 8, 14, 30, 0, 0, time.UTC)
}

// newTestService takes the notifier as the interface so a bare nil stays a
// nil interface, exactly like production wiring with notifications disabled.
func newTestService(n notify.Notifier) (*RecordService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewRecordService(st, n, fixedClock), st
}

func TestAddRecord_AppendsAndStampsTimestamp(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	if err := svc.AddRecord(ctx, "2025-07-06", "Nina", false, "soil still damp"); err != nil {
		t.Fatal(err)
	}

	rows, _ := st.ReadAll(ctx)
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(rows))
	}
	want := []any{"2025-07-06", "Nina", false, "soil still damp", "2025-07-08T14:30:00Z"}
	for i, v := range want {
		if rows[0][i] != v {
			t.Errorf("cell %d = %v, want %v", i, rows[0][i], v)
		}
	}
}

func TestAddRecord_OverwritesExistingDate(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	if err := svc.AddRecord(ctx, "2025-07-06", "Nina", false, ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddRecord(ctx, "2025-07-06", "Gord", true, "evening watering"); err != nil {
		t.Fatal(err)
	}

	if st.Len() != 1 {
		t.Fatalf("row count = %d, want 1 after overwrite", st.Len())
	}
	records, err := svc.WeekRecords(ctx, "2025-07-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	r := records[0]
	if r.Gardener != "Gord" || !r.Watered || r.Notes != "evening watering" {
		t.Errorf("overwrite kept stale values: %+v", r)
	}
}

func TestAddRecord_OverwriteMatchesNativeTimeCell(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	// A row whose date cell is a parsed time value with a non-UTC offset must
	// count as the same calendar day as the incoming string.
	loc := time.FixedZone("PDT", -7*3600)
	_ = st.Append(ctx, []any{time.Date(2025, time.July, 6, 22, 0, 0, 0, loc), "Nina", false, "", ""})

	if err := svc.AddRecord(ctx, "2025-07-06", "Gord", true, ""); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 1 {
		t.Fatalf("row count = %d, want 1 (native time row should be overwritten)", st.Len())
	}
}

func TestAddRecord_RejectsBadDate(t *testing.T) {
	svc, st := newTestService(nil)

	err := svc.AddRecord(context.Background(), "yesterday-ish", "Nina", true, "")
	var pe *dateutil.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *ParseError", err)
	}
	if st.Len() != 0 {
		t.Error("rejected add must not write a row")
	}
}

func TestAddRecord_WateredNotifies(t *testing.T) {
	n := &fakeNotifier{}
	svc, _ := newTestService(n)

	if err := svc.AddRecord(context.Background(), "2025-07-06", "Nina", true, "rain barrel"); err != nil {
		t.Fatal(err)
	}
	if len(n.calls) != 1 {
		t.Fatalf("notify calls = %d, want 1", len(n.calls))
	}
	if n.calls[0] != (notifyCall{"2025-07-06", "Nina", "rain barrel"}) {
		t.Errorf("notify call = %+v", n.calls[0])
	}
}

func TestAddRecord_WateredWithoutNotifier(t *testing.T) {
	// Notifications disabled: the watered path must write the record and
	// return cleanly instead of calling through a nil notifier.
	svc, st := newTestService(nil)

	if err := svc.AddRecord(context.Background(), "2025-07-06", "Nina", true, "hose"); err != nil {
		t.Fatalf("add with no notifier configured: %v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("row count = %d, want 1", st.Len())
	}
}

func TestAddRecord_NotWateredDoesNotNotify(t *testing.T) {
	n := &fakeNotifier{}
	svc, _ := newTestService(n)

	if err := svc.AddRecord(context.Background(), "2025-07-06", "Nina", false, ""); err != nil {
		t.Fatal(err)
	}
	if len(n.calls) != 0 {
		t.Fatalf("notify calls = %d, want 0", len(n.calls))
	}
}

func TestAddRecord_NotifierFailureStillSucceeds(t *testing.T) {
	n := &fakeNotifier{err: errors.New("smtp on fire")}
	svc, st := newTestService(n)

	if err := svc.AddRecord(context.Background(), "2025-07-06", "Nina", true, ""); err != nil {
		t.Fatalf("notifier failure must not fail the add: %v", err)
	}
	if st.Len() != 1 {
		t.Error("record should be written despite notifier failure")
	}
}

func TestWeekRecords_WindowAndOrder(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	for _, d := range []string{"2025-07-05", "2025-07-06", "2025-07-10", "2025-07-12", "2025-07-13"} {
		_ = st.Append(ctx, []any{d, "Nina", true, "", ""})
	}
	// Unparseable rows are dropped, not fatal.
	_ = st.Append(ctx, []any{"??", "Gord", true, "", ""})
	_ = st.Append(ctx, []any{3.14, "Gord", true, "", ""})

	records, err := svc.WeekRecords(ctx, "2025-07-06")
	if err != nil {
		t.Fatal(err)
	}

	got := make([]string, len(records))
	for i, r := range records {
		got[i] = r.Date
	}
	want := []string{"2025-07-12", "2025-07-10", "2025-07-06"}
	if len(got) != len(want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dates = %v, want %v (descending, inclusive bounds)", got, want)
		}
	}
}

func TestWeekRecords_EmptyStore(t *testing.T) {
	svc, _ := newTestService(nil)

	records, err := svc.WeekRecords(context.Background(), "2025-07-06")
	if err != nil {
		t.Fatal(err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty non-nil slice", records)
	}
}

func TestWeekRecords_CellCoercion(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	// Spreadsheet reads render booleans as strings and may hand back native
	// time values in the date column.
	_ = st.Append(ctx, []any{"2025-07-07", "Gord", "TRUE", "hose", "2025-07-07T19:00:00Z"})
	_ = st.Append(ctx, []any{time.Date(2025, time.July, 8, 6, 0, 0, 0, time.UTC), "Nina", false, "", ""})

	records, err := svc.WeekRecords(ctx, "2025-07-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want 2", len(records))
	}
	if records[0].Date != "2025-07-08" || records[0].Watered {
		t.Errorf("native-time row mapped badly: %+v", records[0])
	}
	if records[1].Date != "2025-07-07" || !records[1].Watered {
		t.Errorf("string-bool row mapped badly: %+v", records[1])
	}
}

func TestWeekRecords_BadWeekStart(t *testing.T) {
	svc, _ := newTestService(nil)
	if _, err := svc.WeekRecords(context.Background(), "next week"); err == nil {
		t.Fatal("expected error for unparseable weekStart")
	}
}

func TestDeleteRecord(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	_ = st.Append(ctx, []any{"2025-07-06", "Nina", true, "", ""})
	_ = st.Append(ctx, []any{"2025-07-07", "Gord", false, "", ""})

	if err := svc.DeleteRecord(ctx, "2025-07-06"); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 1 {
		t.Fatalf("row count = %d, want 1", st.Len())
	}

	// Deleting a date with no record still succeeds and changes nothing.
	if err := svc.DeleteRecord(ctx, "2025-07-06"); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 1 {
		t.Fatalf("row count = %d, want 1 after no-op delete", st.Len())
	}
}

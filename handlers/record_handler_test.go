package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gardentracker/internal/store"
	"gardentracker/internal/types/record"
	"gardentracker/services"
)

type noopNotifier struct{ calls int }

func (n *noopNotifier) Notify(ctx context.Context, date, gardener, notes string) error {
	n.calls++
	return nil
}

func newTestHandler() (*RecordHandler, *store.MemoryStore, *noopNotifier) {
	st := store.NewMemoryStore()
	n := &noopNotifier{}
	clock := func() time.Time { return time.Date(2025, time.July, 8, 12, 0, 0, 0, time.UTC) }
	svc := services.NewRecordService(st, n, clock)
	return NewRecordHandler(svc, "../assets"), st, n
}

func postAction(t *testing.T, h *RecordHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Action(rr, req)
	return rr
}

func TestAction_AddRecord(t *testing.T) {
	h, st, n := newTestHandler()

	rr := postAction(t, h, `{"action":"addRecord","date":"2025-07-06","gardener":"Nina","watered":true,"notes":"rain barrel"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp record.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Message != "Record added successfully" {
		t.Errorf("response = %+v", resp)
	}
	if st.Len() != 1 {
		t.Errorf("row count = %d, want 1", st.Len())
	}
	if n.calls != 1 {
		t.Errorf("notify calls = %d, want 1", n.calls)
	}
}

func TestAction_GetRecords(t *testing.T) {
	h, st, _ := newTestHandler()
	ctx := context.Background()
	_ = st.Append(ctx, []any{"2025-07-06", "Nina", true, "", "2025-07-06T20:00:00Z"})
	_ = st.Append(ctx, []any{"2025-07-13", "Gord", true, "", "2025-07-13T20:00:00Z"})

	rr := postAction(t, h, `{"action":"getRecords","weekStart":"2025-07-06"}`)

	var resp record.ListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Records) != 1 || resp.Records[0].Date != "2025-07-06" {
		t.Errorf("records = %+v, want only 2025-07-06", resp.Records)
	}
}

func TestAction_GetRecords_EmptyWindowKeepsRecordsField(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := postAction(t, h, `{"action":"getRecords","weekStart":"2031-01-01"}`)
	if !strings.Contains(rr.Body.String(), `"records":[]`) {
		t.Errorf("empty window must serialize records as []: %s", rr.Body.String())
	}
}

func TestAction_DeleteRecord_MissingDateSucceeds(t *testing.T) {
	h, st, _ := newTestHandler()

	rr := postAction(t, h, `{"action":"deleteRecord","date":"2025-07-06"}`)

	var resp record.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Message != "Record deleted successfully" {
		t.Errorf("response = %+v", resp)
	}
	if st.Len() != 0 {
		t.Errorf("row count = %d", st.Len())
	}
}

func TestAction_UnknownAction(t *testing.T) {
	h, st, _ := newTestHandler()

	rr := postAction(t, h, `{"action":"formatAllDisks"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with structured error", rr.Code)
	}

	var resp record.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error != "Unknown action" {
		t.Errorf("response = %+v", resp)
	}
	if st.Len() != 0 {
		t.Error("unknown action must not touch the store")
	}
}

func TestAction_MalformedBody(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := postAction(t, h, `{"action": "addRecord", "date":`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with structured error", rr.Code)
	}

	var resp record.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("response = %+v, want success=false with error", resp)
	}
}

func TestAction_AddRecord_BadDate(t *testing.T) {
	h, st, n := newTestHandler()

	rr := postAction(t, h, `{"action":"addRecord","date":"whenever","gardener":"Nina","watered":true}`)

	var resp record.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Errorf("response = %+v, want failure", resp)
	}
	if st.Len() != 0 || n.calls != 0 {
		t.Error("rejected add must neither write nor notify")
	}
}

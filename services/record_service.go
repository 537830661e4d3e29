package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"gardentracker/internal/dateutil"
	"gardentracker/internal/notify"
	"gardentracker/internal/store"
	"gardentracker/internal/types/record"
)

// RecordService orchestrates the watering log: one record per calendar date,
// overwrite on duplicate, notification on watered events. The clock is
// injected so tests control the audit timestamp.
type RecordService struct {
	store    store.RowStore
	notifier notify.Notifier
	now      func() time.Time
}

// NewRecordService wires the service to its row store and notifier. A nil
// clock defaults to time.Now.
func NewRecordService(st store.RowStore, n notify.Notifier, now func() time.Time) *RecordService {
	if now == nil {
		now = time.Now
	}
	return &RecordService{store: st, notifier: n, now: now}
}

// AddRecord creates or overwrites the record for the given date. An existing
// row for the same calendar date is updated in place, so the store never
// grows a second row for one day. When watered is true the notifier runs
// after the write; its failures are logged and never fail the add.
func (s *RecordService) AddRecord(ctx context.Context, date, gardener string, watered bool, notes string) error {
	day, err := dateutil.ParseDate(date)
	if err != nil {
		return err
	}
	if err := s.store.Ensure(ctx); err != nil {
		return err
	}

	idx, err := store.FindRow(ctx, s.store, day)
	if err != nil {
		return err
	}

	row := record.WateringRecord{
		Date:      day.String(),
		Gardener:  gardener,
		Watered:   watered,
		Notes:     notes,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}.Row()

	if idx != store.NotFound {
		err = s.store.Update(ctx, idx, row)
	} else {
		err = s.store.Append(ctx, row)
	}
	if err != nil {
		return err
	}

	if watered && s.notifier != nil {
		// The notifier gets the date as submitted, not the canonical form.
		if err := s.notifier.Notify(ctx, date, gardener, notes); err != nil {
			log.Printf("records: notification for %s failed: %v", day, err)
		}
	}
	return nil
}

// WeekRecords returns the records whose dates fall in the inclusive 7-day
// window starting at weekStart, most recent first. Rows whose date cell
// cannot be normalized are logged and dropped rather than failing the read.
func (s *RecordService) WeekRecords(ctx context.Context, weekStart string) ([]record.WateringRecord, error) {
	start, err := dateutil.ParseDate(weekStart)
	if err != nil {
		return nil, err
	}
	end := start.AddDays(6)

	if err := s.store.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	records := []record.WateringRecord{}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		day, err := dateutil.FromCell(row[0])
		if err != nil {
			log.Printf("records: skipping row %d: %v", i+2, err)
			continue
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		records = append(records, rowToRecord(day, row))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records, nil
}

// DeleteRecord removes the record for the given date. Deleting a date that
// has no record is a successful no-op.
func (s *RecordService) DeleteRecord(ctx context.Context, date string) error {
	day, err := dateutil.ParseDate(date)
	if err != nil {
		return err
	}
	if err := s.store.Ensure(ctx); err != nil {
		return err
	}

	idx, err := store.FindRow(ctx, s.store, day)
	if err != nil {
		return err
	}
	if idx == store.NotFound {
		return nil
	}
	return s.store.Delete(ctx, idx)
}

// rowToRecord maps a raw store row onto the wire record. Short rows pad with
// zero values; trailing cells render best-effort.
func rowToRecord(day dateutil.Date, row []any) record.WateringRecord {
	cell := func(i int) any {
		if i < len(row) {
			return row[i]
		}
		return nil
	}
	return record.WateringRecord{
		Date:      day.String(),
		Gardener:  dateutil.CellString(cell(1)),
		Watered:   cellBool(cell(2)),
		Notes:     dateutil.CellString(cell(3)),
		Timestamp: dateutil.CellString(cell(4)),
	}
}

// cellBool interprets a watered cell, which a spreadsheet may hand back as a
// native bool or as the rendered "TRUE"/"FALSE" string.
func cellBool(v any) bool {
	switch c := v.(type) {
	case bool:
		return c
	case string:
		return strings.EqualFold(c, "true")
	default:
		return false
	}
}

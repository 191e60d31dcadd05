package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	memberStore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
)

// Required import columns.
const (
	ColMemberID = "MEMBER_ID"
	ColEventID  = "EVENT_ID"
)

// ImportAttendanceInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row naming MEMBER_ID and EVENT_ID.
// INVARIANT: existing records are never deleted.
type ImportAttendanceInput struct {
	Reader io.Reader
	DryRun bool
	// Strict rejects rows naming a member or event the stores do not know.
	// Otherwise such rows are imported and counted in UnknownRefs.
	Strict bool
}

// ImportAttendanceResult holds aggregate counts and per-row errors from an import run.
type ImportAttendanceResult struct {
	Total       int
	Imported    int
	Duplicates  int
	UnknownRefs int
	Errors      []ImportRowError
	DryRun      bool
}

// ImportRowError describes a problem with a single CSV row. Row is 1-indexed
// and counts the header.
type ImportRowError struct {
	Row     int
	Message string
}

// ImportAttendanceDeps holds external dependencies for the import orchestrator.
type ImportAttendanceDeps struct {
	MemberStore     MemberStore
	EventStore      EventStore
	AttendanceStore AttendanceStore
}

// ImportValidationError is returned when the CSV structure is invalid.
type ImportValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ImportValidationError) Error() string {
	return e.Message
}

// ExecuteImportAttendance parses a CSV stream of (member, event) pairs and
// records each pair once.
// PRE: Input.Reader contains MEMBER_ID and EVENT_ID columns.
// POST: every valid, previously unseen pair in the file is saved unless DryRun.
// INVARIANT: a pair repeated in the file is saved at most once.
func ExecuteImportAttendance(ctx context.Context, input ImportAttendanceInput, deps ImportAttendanceDeps) (ImportAttendanceResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportAttendanceResult{}, &ImportValidationError{Message: "CSV is empty"}
	}
	if err != nil {
		return ImportAttendanceResult{}, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{ColMemberID, ColEventID} {
		if _, ok := colIdx[col]; !ok {
			return ImportAttendanceResult{}, &ImportValidationError{Message: "CSV missing required column: " + col}
		}
	}

	knownMembers, knownEvents, err := loadKnownIDs(ctx, deps)
	if err != nil {
		return ImportAttendanceResult{}, err
	}

	getCol := func(row []string, col string) string {
		i := colIdx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := ImportAttendanceResult{DryRun: input.DryRun}
	seen := make(map[attendance.Key]struct{})
	rowNum := 1

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: "malformed row"})
			continue
		}
		result.Total++

		rec := attendance.Record{MemberID: getCol(row, ColMemberID), EventID: getCol(row, ColEventID)}
		if err := rec.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if _, dup := seen[rec.Key()]; dup {
			result.Duplicates++
			continue
		}
		seen[rec.Key()] = struct{}{}

		_, memberOK := knownMembers[rec.MemberID]
		_, eventOK := knownEvents[rec.EventID]
		if !memberOK || !eventOK {
			if input.Strict {
				result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: unknownMessage(rec, memberOK, eventOK)})
				continue
			}
			result.UnknownRefs++
		}

		if input.DryRun {
			result.Imported++
			continue
		}
		if err := deps.AttendanceStore.Save(ctx, rec); err != nil {
			slog.Error("attendance_import_save_failed", "row", rowNum, "member_id", rec.MemberID, "event_id", rec.EventID, "error", err)
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: "save failed (see server log)"})
			continue
		}
		result.Imported++
	}

	slog.Info("attendance_import",
		"dry_run", input.DryRun,
		"strict", input.Strict,
		"total", result.Total,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"unknown_refs", result.UnknownRefs,
		"errors", len(result.Errors),
	)
	return result, nil
}

func loadKnownIDs(ctx context.Context, deps ImportAttendanceDeps) (map[string]struct{}, map[string]struct{}, error) {
	members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("list members: %w", err)
	}
	events, err := deps.EventStore.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list events: %w", err)
	}
	knownMembers := make(map[string]struct{}, len(members))
	for _, m := range members {
		knownMembers[m.ID] = struct{}{}
	}
	knownEvents := make(map[string]struct{}, len(events))
	for _, id := range event.IDs(events) {
		knownEvents[id] = struct{}{}
	}
	return knownMembers, knownEvents, nil
}

func unknownMessage(rec attendance.Record, memberOK, eventOK bool) string {
	switch {
	case !memberOK && !eventOK:
		return fmt.Sprintf("unknown member %q and event %q", rec.MemberID, rec.EventID)
	case !memberOK:
		return fmt.Sprintf("unknown member %q", rec.MemberID)
	default:
		return fmt.Sprintf("unknown event %q", rec.EventID)
	}
}

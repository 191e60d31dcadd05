package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
)

func importDeps() (ImportAttendanceDeps, *mockAttendanceStore) {
	att := &mockAttendanceStore{}
	return ImportAttendanceDeps{
		MemberStore:     &mockMemberStore{members: []member.Member{{ID: "m1", Name: "Ana"}, {ID: "m2", Name: "Bruno"}}},
		EventStore:      &mockEventStore{events: []event.Event{{ID: "e1", Title: "One", Timestamp: time.Now()}}},
		AttendanceStore: att,
	}, att
}

// TestExecuteImportAttendance_Dedupes verifies repeated pairs are saved once and counted.
func TestExecuteImportAttendance_Dedupes(t *testing.T) {
	deps, att := importDeps()
	csv := "member_id,event_id\nm1,e1\nm2,e1\nm1,e1\n"

	res, err := ExecuteImportAttendance(context.Background(), ImportAttendanceInput{Reader: strings.NewReader(csv)}, deps)
	if err != nil {
		t.Fatalf("ExecuteImportAttendance: %v", err)
	}
	if res.Total != 3 || res.Imported != 2 || res.Duplicates != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(att.records) != 2 {
		t.Errorf("saved %d records, want 2", len(att.records))
	}
}

// TestExecuteImportAttendance_DryRun verifies nothing is written in dry-run mode.
func TestExecuteImportAttendance_DryRun(t *testing.T) {
	deps, att := importDeps()
	res, err := ExecuteImportAttendance(context.Background(), ImportAttendanceInput{
		Reader: strings.NewReader("MEMBER_ID,EVENT_ID\nm1,e1\n"),
		DryRun: true,
	}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun || res.Imported != 1 || len(att.records) != 0 {
		t.Errorf("result = %+v, saved = %d", res, len(att.records))
	}
}

// TestExecuteImportAttendance_UnknownRefs verifies unknown ids are counted, or rejected in strict mode.
func TestExecuteImportAttendance_UnknownRefs(t *testing.T) {
	csv := "MEMBER_ID,EVENT_ID,NOTE\nm1,e9,late\nghost,e1,\nm1,e1,\n"

	deps, att := importDeps()
	res, err := ExecuteImportAttendance(context.Background(), ImportAttendanceInput{Reader: strings.NewReader(csv)}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.UnknownRefs != 2 || res.Imported != 3 || len(att.records) != 3 {
		t.Errorf("lenient result = %+v", res)
	}

	deps, att = importDeps()
	res, err = ExecuteImportAttendance(context.Background(), ImportAttendanceInput{Reader: strings.NewReader(csv), Strict: true}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || len(res.Errors) != 2 || len(att.records) != 1 {
		t.Errorf("strict result = %+v", res)
	}
	if res.Errors[0].Row != 2 || !strings.Contains(res.Errors[0].Message, "unknown event") {
		t.Errorf("first error = %+v", res.Errors[0])
	}
}

// TestExecuteImportAttendance_RowErrors verifies blank ids and save failures become row errors.
func TestExecuteImportAttendance_RowErrors(t *testing.T) {
	deps, att := importDeps()
	att.failOn = "m2"
	csv := "MEMBER_ID,EVENT_ID\n,e1\nm2,e1\nm1,e1\n"

	res, err := ExecuteImportAttendance(context.Background(), ImportAttendanceInput{Reader: strings.NewReader(csv)}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 2 || res.Imported != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Errors[0].Row != 2 || res.Errors[1].Row != 3 {
		t.Errorf("error rows = %d, %d, want 2, 3", res.Errors[0].Row, res.Errors[1].Row)
	}
}

// TestExecuteImportAttendance_BadHeader verifies structural problems abort the import.
func TestExecuteImportAttendance_BadHeader(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"missing event column", "MEMBER_ID\nm1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := importDeps()
			_, err := ExecuteImportAttendance(context.Background(), ImportAttendanceInput{Reader: strings.NewReader(tt.csv)}, deps)
			var verr *ImportValidationError
			if !errors.As(err, &verr) {
				t.Errorf("err = %v, want ImportValidationError", err)
			}
		})
	}
}

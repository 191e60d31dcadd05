package export

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"rollcall/internal/domain/stats"
)

// AttendanceHeader is the header row of the attendance report.
var AttendanceHeader = []string{"Member Name", "Email", "Attendance Rate", "Events Attended", "Total Events"}

// FormatRate renders a rate as a one-decimal percentage, e.g. "66.7%".
// A rate exactly halfway between two tenths rounds up, so 1.25 is "1.3%".
func FormatRate(rate float64) string {
	if tenths, ok := tieTenths(rate); ok {
		return strconv.FormatInt(tenths/10, 10) + "." + strconv.FormatInt(tenths%10, 10) + "%"
	}
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}

// tieTenths reports whether a non-negative rate lies exactly halfway between
// two tenths and returns the upper one, counted in tenths.
func tieTenths(rate float64) (int64, bool) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}
	twentieths := new(big.Float).SetPrec(128).SetFloat64(rate)
	twentieths.Mul(twentieths, big.NewFloat(20))
	if !twentieths.IsInt() {
		return 0, false
	}
	n, acc := twentieths.Int64()
	if acc != big.Exact || n%2 == 0 {
		return 0, false
	}
	return (n + 1) / 2, true
}

// AttendanceRows projects member stats into report rows, header excluded.
// PRE: none
// POST: one row per stat in input order, five fields each
func AttendanceRows(memberStats []stats.MemberAttendanceStat) [][]string {
	rows := make([][]string, 0, len(memberStats))
	for _, s := range memberStats {
		rows = append(rows, []string{
			s.Member.Name,
			s.Member.Email,
			FormatRate(s.AttendanceRate),
			strconv.Itoa(s.EventsAttended),
			strconv.Itoa(s.TotalEvents),
		})
	}
	return rows
}

// AttendanceCSV serializes member stats into the attendance report.
// Every field is double-quoted and rows are joined with "\n", header first,
// with no trailing newline.
// PRE: none
// POST: returns 1 + len(memberStats) lines
func AttendanceCSV(memberStats []stats.MemberAttendanceStat) []byte {
	lines := make([]string, 0, len(memberStats)+1)
	lines = append(lines, quoteRow(AttendanceHeader))
	for _, row := range AttendanceRows(memberStats) {
		lines = append(lines, quoteRow(row))
	}
	return []byte(strings.Join(lines, "\n"))
}

// Filename returns the download name for a report generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("attendance-report-%s.csv", t.Format("2006-01-02"))
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

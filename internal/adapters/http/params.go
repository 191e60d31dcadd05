package web

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"rollcall/internal/application/projections"
	"rollcall/internal/config"
	"rollcall/internal/domain/selection"
)

// errSelectionNotFound marks a selection= parameter naming no stored selection.
var errSelectionNotFound = errors.New("selection not found")

// parseSelection resolves the event scope of a request.
//
//	events=E1,E2   explicit list; present but empty means all events
//	selection=ID   a stored selection
//	neither        the configured default selection
func parseSelection(q url.Values, d config.Dashboard) (selection.Set, error) {
	_, hasEvents := q["events"]
	selID := q.Get("selection")
	switch {
	case hasEvents && selID != "":
		return selection.Set{}, errors.New("events and selection are mutually exclusive")
	case hasEvents:
		var ids []string
		for _, raw := range q["events"] {
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
		}
		return selection.New(ids...), nil
	case selID != "":
		set, ok := selections.Get(selID)
		if !ok {
			return selection.Set{}, errSelectionNotFound
		}
		return set, nil
	default:
		return selection.New(d.SelectedEvents...), nil
	}
}

// parseThreshold reads threshold, falling back to the configured default.
func parseThreshold(q url.Values, d config.Dashboard) (float64, error) {
	raw := strings.TrimSpace(q.Get("threshold"))
	if raw == "" {
		return d.Threshold, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("threshold must be a number between 0 and 100")
	}
	return v, nil
}

// parseIntParam reads a non-negative integer parameter or returns def when absent.
func parseIntParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

// parseStatsQuery builds the projection query from request parameters.
func parseStatsQuery(q url.Values) (projections.GetAttendanceStatsQuery, error) {
	d := dashboard()
	sel, err := parseSelection(q, d)
	if err != nil {
		return projections.GetAttendanceStatsQuery{}, err
	}
	threshold, err := parseThreshold(q, d)
	if err != nil {
		return projections.GetAttendanceStatsQuery{}, err
	}
	limit, err := parseIntParam(q, "limit", d.AlertLimit)
	if err != nil {
		return projections.GetAttendanceStatsQuery{}, err
	}
	preview, err := parseIntParam(q, "preview", d.PreviewSize)
	if err != nil {
		return projections.GetAttendanceStatsQuery{}, err
	}
	return projections.GetAttendanceStatsQuery{
		Selection:   sel,
		Threshold:   threshold,
		AlertLimit:  limit,
		PreviewSize: preview,
	}, nil
}

// defaultStatsQuery is the query the live overview is refreshed with.
func defaultStatsQuery() projections.GetAttendanceStatsQuery {
	d := dashboard()
	return projections.GetAttendanceStatsQuery{
		Selection:   selection.New(d.SelectedEvents...),
		Threshold:   d.Threshold,
		AlertLimit:  d.AlertLimit,
		PreviewSize: d.PreviewSize,
	}
}

// Package metrics renders the live attendance overview and the perf
// collector as a Prometheus text exposition.
package metrics

import (
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"rollcall/internal/adapters/http/perf"
	"rollcall/internal/application/projections"
)

// Namespace prefixes every exported metric name.
const Namespace = "rollcall"

// LiveSource returns the latest published overview, if any.
type LiveSource func() (projections.LiveResult, bool)

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(Namespace + "_" + name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}

// OverviewFamilies exports the roll-up of one live computation.
func OverviewFamilies(live projections.LiveResult) []*dto.MetricFamily {
	ov := live.Result.Report.Overview
	return []*dto.MetricFamily{
		gauge("attendance_average_rate_percent", "Average attendance rate across the roster.", ov.AverageAttendanceRate),
		gauge("members_below_threshold", "Members strictly below the attendance threshold.", float64(ov.MembersBelowThreshold)),
		gauge("members_below_threshold_percent", "Share of the roster below the attendance threshold.", ov.PercentBelowThreshold),
		gauge("members", "Members on the roster.", float64(ov.TotalMembers)),
		gauge("events", "Known events.", float64(ov.TotalEvents)),
		gauge("events_selected", "Events in scope for the published overview.", float64(ov.SelectedEventCount)),
		gauge("attendance_threshold_percent", "Configured attendance threshold.", ov.Threshold),
		gauge("overview_generation", "Generation of the published overview.", float64(live.Generation)),
		gauge("overview_computed_timestamp_seconds", "Unix time the published overview was computed.", float64(live.ComputedAt.UnixNano())/1e9),
	}
}

// PerfFamilies exports collector series as summaries, one family per kind.
func PerfFamilies(series []perf.Series, totalRecorded int64) []*dto.MetricFamily {
	requests := &dto.MetricFamily{
		Name: proto.String(Namespace + "_http_request_duration_seconds"),
		Help: proto.String("HTTP request latency over the collector window."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	queries := &dto.MetricFamily{
		Name: proto.String(Namespace + "_db_query_duration_seconds"),
		Help: proto.String("Database statement latency over the collector window."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}

	for _, s := range series {
		fam, labelName := requests, "route"
		if s.Kind == perf.KindQuery {
			fam, labelName = queries, "query"
		}
		fam.Metric = append(fam.Metric, &dto.Metric{
			Label: []*dto.LabelPair{{Name: proto.String(labelName), Value: proto.String(s.Label)}},
			Summary: &dto.Summary{
				SampleCount: proto.Uint64(uint64(s.Count)),
				SampleSum:   proto.Float64(s.Sum.Seconds()),
				Quantile: []*dto.Quantile{
					{Quantile: proto.Float64(0.5), Value: proto.Float64(s.P50.Seconds())},
					{Quantile: proto.Float64(0.95), Value: proto.Float64(s.P95.Seconds())},
					{Quantile: proto.Float64(0.99), Value: proto.Float64(s.P99.Seconds())},
				},
			},
		})
	}

	out := []*dto.MetricFamily{{
		Name:   proto.String(Namespace + "_perf_entries_recorded_total"),
		Help:   proto.String("Requests and statements recorded since start."),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(totalRecorded))}}},
	}}
	for _, fam := range []*dto.MetricFamily{requests, queries} {
		if len(fam.Metric) > 0 {
			out = append(out, fam)
		}
	}
	return out
}

// Write encodes families in the Prometheus text format.
func Write(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the exposition. Perf series cover the last window.
// Either source may be nil.
func Handler(live LiveSource, collector *perf.Collector, window time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var families []*dto.MetricFamily
		if live != nil {
			if res, ok := live(); ok {
				families = append(families, OverviewFamilies(res)...)
			}
		}
		if collector != nil {
			families = append(families, PerfFamilies(collector.Snapshot(time.Now().Add(-window)), collector.TotalRecorded())...)
		}

		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		if err := Write(w, families); err != nil {
			http.Error(w, "failed to encode metrics", http.StatusInternalServerError)
		}
	})
}

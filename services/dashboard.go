package services

import (
	"time"

	"resale-explorer/metrics"
	"resale-explorer/models"
	"resale-explorer/utils"
)

// EmptyResultWarning is reported when the filters match nothing.
const EmptyResultWarning = "no data for the selected filters"

// Dashboard runs the whole pipeline for one filter state over a shared,
// read-only canonical table.
type Dashboard struct {
	table    *models.Table
	scorer   *Scorer
	insights *InsightService
	logger   *utils.Logger
	topN     int
}

func NewDashboard(table *models.Table, topN int, logger *utils.Logger) *Dashboard {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Dashboard{
		table:    table,
		scorer:   NewScorer(),
		insights: NewInsightService(logger),
		logger:   logger,
		topN:     topN,
	}
}

// Table returns the canonical table the dashboard renders from.
func (d *Dashboard) Table() *models.Table { return d.table }

// Insights returns the service used to build chart data and print reports.
func (d *Dashboard) Insights() *InsightService { return d.insights }

// Render filters, derives, scores and ranks for c and builds all chart data.
// It never fails: an empty subset yields a Dashboard with NoData set.
func (d *Dashboard) Render(c models.FilterCriteria) *models.Dashboard {
	start := time.Now()

	filtered := Evaluate(d.table, c)
	metrics.RowsMatched.Observe(float64(filtered.Len()))

	out := &models.Dashboard{
		Criteria:    c,
		RowCount:    filtered.Len(),
		GeneratedAt: start.UTC(),
	}

	if filtered.Len() == 0 {
		out.NoData = true
		out.Warnings = append(out.Warnings, EmptyResultWarning)
		d.logger.Warn("[dashboard] %s (town=%q flat_type=%q models=%d)",
			EmptyResultWarning, c.Town, c.FlatType, len(c.FlatModels))
		metrics.PipelineRuns.WithLabelValues("empty").Inc()
		metrics.PipelineLatency.Observe(time.Since(start).Seconds())
		return out
	}

	rows := Derive(filtered)
	ranked := TopN(d.scorer.Score(rows), d.topN)

	out.Rows = rows
	out.FloorBins = FloorBins(rows)
	out.Streets = d.insights.StreetSummary(rows)
	out.Trends = d.insights.FloorTrends(rows)
	out.Distribution = d.insights.AreaDistribution(rows)
	out.Recommendations = Recommendations(ranked)

	elapsed := time.Since(start)
	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	metrics.PipelineLatency.Observe(elapsed.Seconds())
	d.logger.Debug("[dashboard] Rendered %d rows, %d recommendations in %v",
		len(rows), len(ranked), elapsed)
	return out
}

package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"resale-explorer/models"
	"resale-explorer/utils"
)

// InsightService builds chart data from a derived subset and prints the
// terminal report.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// StreetSummary groups rows by street, sorted by street name.
func (s *InsightService) StreetSummary(rows []models.DerivedRow) []models.StreetStat {
	type acc struct {
		total float64
		count int
	}
	byStreet := make(map[string]*acc)
	for _, r := range rows {
		a, ok := byStreet[r.StreetName]
		if !ok {
			a = &acc{}
			byStreet[r.StreetName] = a
		}
		a.total += r.ResalePrice
		a.count++
	}

	stats := make([]models.StreetStat, 0, len(byStreet))
	for street, a := range byStreet {
		avg := a.total / float64(a.count)
		stats = append(stats, models.StreetStat{
			StreetName: street,
			AvgPrice:   round2(avg),
			AvgPriceK:  round2(avg / 1000),
			Count:      a.count,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].StreetName < stats[j].StreetName
	})
	return stats
}

// FloorTrends returns one trend per floor category, High first. Each trend
// carries one least-squares line per lease bucket that has at least one point.
func (s *InsightService) FloorTrends(rows []models.DerivedRow) []models.FloorTrend {
	trends := make([]models.FloorTrend, 0, len(models.FloorCategories))
	for _, cat := range models.FloorCategories {
		trend := models.FloorTrend{Category: cat, Label: cat.Label()}

		byBucket := make(map[models.LeaseBucket][]models.TrendPoint)
		for _, r := range rows {
			if r.FloorCategory != cat {
				continue
			}
			p := models.TrendPoint{
				Month:               r.Month,
				PriceK:              r.ResalePrice / 1000,
				ResalePrice:         r.ResalePrice,
				LeaseBucket:         r.LeaseBucket,
				Block:               r.Block,
				StreetName:          r.StreetName,
				StoreyFloor:         r.StoreyFloor,
				RemainingLeaseYears: r.RemainingLeaseYears,
				FloorAreaSqm:        r.FloorAreaSqm,
			}
			trend.Points = append(trend.Points, p)
			byBucket[r.LeaseBucket] = append(byBucket[r.LeaseBucket], p)
		}

		trend.Empty = len(trend.Points) == 0
		for _, bucket := range models.LeaseBuckets {
			pts := byBucket[bucket]
			if len(pts) == 0 {
				continue
			}
			slope, intercept := fitLine(pts)
			trend.Lines = append(trend.Lines, models.TrendLine{
				LeaseBucket: bucket,
				Colour:      bucket.Colour(),
				Points:      len(pts),
				Slope:       slope,
				Intercept:   intercept,
			})
		}
		trends = append(trends, trend)
	}
	return trends
}

// MonthIndex counts months since year 0, so consecutive months differ by one.
func MonthIndex(p models.TrendPoint) float64 {
	return float64(p.Month.Year()*12 + int(p.Month.Month()) - 1)
}

// fitLine is ordinary least squares of PriceK on MonthIndex. With a single
// distinct month the line is flat at the mean price.
func fitLine(pts []models.TrendPoint) (slope, intercept float64) {
	n := float64(len(pts))
	var sx, sy float64
	for _, p := range pts {
		sx += MonthIndex(p)
		sy += p.PriceK
	}
	mx, my := sx/n, sy/n

	var sxx, sxy float64
	for _, p := range pts {
		dx := MonthIndex(p) - mx
		sxx += dx * dx
		sxy += dx * (p.PriceK - my)
	}
	if sxx == 0 {
		return 0, my
	}
	slope = sxy / sxx
	return slope, my - slope*mx
}

// AreaDistribution returns box statistics of resale price for every floor bin
// and lease bucket combination present in rows, ordered by bin then bucket.
func (s *InsightService) AreaDistribution(rows []models.DerivedRow) []models.BinBox {
	type key struct {
		bin    string
		bucket models.LeaseBucket
	}
	prices := make(map[key][]float64)
	for _, r := range rows {
		k := key{r.FloorBin, r.LeaseBucket}
		prices[k] = append(prices[k], r.ResalePrice)
	}

	var boxes []models.BinBox
	for _, bin := range FloorBins(rows) {
		for _, bucket := range models.LeaseBuckets {
			vals := prices[key{bin, bucket}]
			if len(vals) == 0 {
				continue
			}
			sorted := make([]float64, len(vals))
			copy(sorted, vals)
			sort.Float64s(sorted)
			boxes = append(boxes, models.BinBox{
				FloorBin:    bin,
				LeaseBucket: bucket,
				Count:       len(sorted),
				Min:         sorted[0],
				Q1:          quantile(sorted, 0.25),
				Median:      quantile(sorted, 0.5),
				Q3:          quantile(sorted, 0.75),
				Max:         sorted[len(sorted)-1],
			})
		}
	}
	return boxes
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	frac := pos - lo
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// Print writes the dashboard as a coloured terminal report.
func (s *InsightService) Print(w io.Writer, d *models.Dashboard) {
	sep := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 RESALE FLAT EXPLORER\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	c := d.Criteria
	fmt.Fprintf(w, "\033[1;33m  Filters\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Town        : %s\n", c.Town)
	fmt.Fprintf(w, "  Flat type   : %s\n", c.FlatType)
	fmt.Fprintf(w, "  Flat models : %s\n", strings.Join(c.FlatModels, ", "))
	fmt.Fprintf(w, "  Storey      : %d – %d\n", c.Storey.Min, c.Storey.Max)
	fmt.Fprintf(w, "  Floor area  : %g – %g sqm\n", c.FloorArea.Min, c.FloorArea.Max)
	fmt.Fprintf(w, "  Lease left  : %d – %d yrs\n", c.LeaseYears.Min, c.LeaseYears.Max)
	fmt.Fprintf(w, "  Months      : %s – %s\n",
		c.Months.Start.Format("2006-01"), c.Months.End.Format("2006-01"))
	fmt.Fprintf(w, "  Matching    : \033[1m%d\033[0m transactions\n\n", d.RowCount)

	if d.NoData {
		for _, warn := range d.Warnings {
			fmt.Fprintf(w, "  \033[1;31m%s\033[0m\n", warn)
		}
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	fmt.Fprintf(w, "\033[1;33m  Top %d Recommended Flats\033[0m\n", len(d.Recommendations))
	fmt.Fprintf(w, "  %s\n", thin)
	for _, r := range d.Recommendations {
		fmt.Fprintf(w, "  \033[1m%2d.\033[0m %s  %-5s %-24s %-9s %5.0f sqm  %-8s %s\n",
			r.Rank, r.Month, r.Block, truncate(r.StreetName, 24), r.StoreyRange,
			r.FloorAreaSqm, r.Price, scoreColour(r))
		if r.Rationale != "" {
			fmt.Fprintf(w, "      %s\n", r.Rationale)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Average Price by Street\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	maxAvg := 0.0
	for _, st := range d.Streets {
		maxAvg = math.Max(maxAvg, st.AvgPriceK)
	}
	for _, st := range d.Streets {
		bar := strings.Repeat("█", barWidth(st.AvgPriceK, maxAvg, 30))
		fmt.Fprintf(w, "  %-26s %s $%.0fk (%d)\n",
			truncate(st.StreetName, 26), bar, st.AvgPriceK, st.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Trend by Floor Level\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, t := range d.Trends {
		fmt.Fprintf(w, "  \033[1m%s\033[0m\n", t.Label)
		if t.Empty {
			fmt.Fprintf(w, "    No data for this floor category.\n")
			continue
		}
		for _, l := range t.Lines {
			fmt.Fprintf(w, "    %-10s %3d sales  %+.2fk/month\n", l.LeaseBucket, l.Points, l.Slope)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Distribution by Floor Area\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, b := range d.Distribution {
		fmt.Fprintf(w, "  %-12s %-10s n=%-3d median %s  (%s – %s)\n",
			b.FloorBin, b.LeaseBucket, b.Count,
			FormatPrice(b.Median), FormatPrice(b.Min), FormatPrice(b.Max))
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func scoreColour(r models.Recommendation) string {
	colour := "31"
	switch r.Band {
	case "good":
		colour = "32"
	case "fair":
		colour = "33"
	}
	return fmt.Sprintf("\033[1;%sm%3d\033[0m", colour, r.Score)
}

func barWidth(v, max float64, width int) int {
	if max <= 0 {
		return 0
	}
	n := int(v / max * float64(width))
	if n < 1 {
		n = 1
	}
	return n
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

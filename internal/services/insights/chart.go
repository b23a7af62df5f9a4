package insights

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/echo-journal/echo/internal/models"
)

// TrendChart renders the daily average sentiment over the window as a PNG
// line chart.
func (s *Service) TrendChart(ctx context.Context, userID string, days int) ([]byte, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := s.storage.EntryStore().ListEntriesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return RenderSentimentChart(entries)
}

// RenderSentimentChart renders a PNG line chart of daily average sentiment.
// Returns raw PNG bytes.
func RenderSentimentChart(entries []*models.Entry) ([]byte, error) {
	points := dailyAverageSentiment(entries)
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 days of entries, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.day
		yValues[i] = p.avg
	}

	sentimentSeries := chart.TimeSeries{
		Name: "Average Sentiment",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("7c3aed"), // violet-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  "Sentiment Trend",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 2")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			sentimentSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

type dailyPoint struct {
	day time.Time
	avg float64
}

func dailyAverageSentiment(entries []*models.Entry) []dailyPoint {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	var order []time.Time

	for _, entry := range entries {
		day := entry.CreatedAt.UTC().Truncate(24 * time.Hour)
		if _, ok := counts[day]; !ok {
			order = append(order, day)
		}
		sums[day] += entry.SentimentScore
		counts[day]++
	}

	points := make([]dailyPoint, 0, len(order))
	for _, day := range order {
		points = append(points, dailyPoint{day: day, avg: sums[day] / float64(counts[day])})
	}
	// ListEntriesSince returns ascending order, so days are already sorted.
	return points
}

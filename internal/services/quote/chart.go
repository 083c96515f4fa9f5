package quote

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/stockhistory/internal/models"
)

// RenderHistoryChart renders a PNG line chart of a history's quotes.
// Two series: Close (blue solid) and Previous Close (gray dashed).
// Returns raw PNG bytes.
func RenderHistoryChart(h *models.StockHistory) ([]byte, error) {
	if h == nil || len(h.QuoteHistory) < 2 {
		return nil, fmt.Errorf("need at least 2 quotes")
	}

	xValues := make([]time.Time, len(h.QuoteHistory))
	closeY := make([]float64, len(h.QuoteHistory))
	prevY := make([]float64, len(h.QuoteHistory))

	for i, q := range h.QuoteHistory {
		xValues[i] = q.Date
		closeY[i] = q.CurrentPrice.InexactFloat64()
		prevY[i] = q.PreviousClosePrice.InexactFloat64()
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: closeY,
	}

	prevSeries := chart.TimeSeries{
		Name: "Previous Close",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: prevY,
	}

	graph := chart.Chart{
		Title:  h.ID,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			closeSeries,
			prevSeries,
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

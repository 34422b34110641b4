package web

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/beacon.scope/internal/plot"
)

const (
	traceColor     = "#fde047"
	highlightColor = "#fb923c"
)

// maxPointsParam reads max_points, defaulting to def.
func maxPointsParam(r *http.Request, def int) int {
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 10 && v <= 50000 {
			return v
		}
	}
	return def
}

// downsample keeps every stride-th point so about limit remain. The last
// point is always kept.
func downsample(points plot.Points, limit int) (plot.Points, int) {
	if len(points) <= limit {
		return points, 1
	}
	stride := int(math.Ceil(float64(len(points)) / float64(limit)))
	out := make(plot.Points, 0, len(points)/stride+1)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	if last := points[len(points)-1]; out[len(out)-1].X != last.X {
		out = append(out, last)
	}
	return out, stride
}

// handleChart renders the visible window as an ECharts line plot. The page
// is static; reload it for a newer window.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	f := s.view.Frame()
	points, stride := downsample(f.Points, maxPointsParam(r, 5000))

	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		data = append(data, opts.LineData{Value: []interface{}{p.X / 1000, p.Y}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  "beacon scope",
			Theme:      "dark",
			Width:      "100%",
			Height:     "600px",
			AssetsHost: s.assetsHost,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Distance",
			Subtitle: fmt.Sprintf("%s mode, points=%d stride=%d", f.Mode, len(data), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         "time (s)",
			NameLocation: "middle",
			NameGap:      25,
			Min:          f.Window.X.Min / 1000,
			Max:          f.Window.X.Max / 1000,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "distance",
			Min:  f.Window.Y.Min,
			Max:  f.Window.Y.Max,
		}),
	)
	line.AddSeries("dist", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: traceColor}),
	)
	if f.Highlight.OK {
		mark := []opts.LineData{{Value: []interface{}{f.Highlight.Point.X / 1000, f.Highlight.Point.Y}}}
		line.AddSeries("cursor", mark,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: highlightColor}),
		)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

package web

import (
	"fmt"
	"image/color"
	"net/http"
	"strconv"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/beacon.scope/internal/scope"
	"github.com/banshee-data/beacon.scope/internal/security"
)

var (
	traceRGBA     = color.RGBA{R: 0xfd, G: 0xe0, B: 0x47, A: 0xff}
	highlightRGBA = color.RGBA{R: 0xfb, G: 0x92, B: 0x3c, A: 0xff}
)

func inchesParam(r *http.Request, name string, def float64) vg.Length {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 1 && v <= 40 {
			return vg.Length(v) * vg.Inch
		}
	}
	return vg.Length(def) * vg.Inch
}

// renderPlot draws one frame with gonum/plot.
func renderPlot(f scope.Frame) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = "Distance"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Distance"
	p.Add(plotter.NewGrid())

	if len(f.Points) > 0 {
		pts := make(plotter.XYs, len(f.Points))
		for i, pt := range f.Points {
			pts[i] = plotter.XY{X: pt.X / 1000, Y: pt.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = traceRGBA
		line.Width = vg.Points(1)
		p.Add(line)
	}

	if f.Highlight.OK {
		mark, err := plotter.NewScatter(plotter.XYs{{X: f.Highlight.Point.X / 1000, Y: f.Highlight.Point.Y}})
		if err != nil {
			return nil, err
		}
		mark.GlyphStyle.Color = highlightRGBA
		mark.GlyphStyle.Radius = vg.Points(3)
		p.Add(mark)
	}

	// Add widens the axes to fit the data; restore the window.
	p.X.Min, p.X.Max = f.Window.X.Min/1000, f.Window.X.Max/1000
	p.Y.Min, p.Y.Max = f.Window.Y.Min, f.Window.Y.Max
	return p, nil
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	p, err := renderPlot(s.view.Frame())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to plot: %v", err))
		return
	}
	wt, err := p.WriterTo(inchesParam(r, "width", 10), inchesParam(r, "height", 4), "png")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render plot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if name := r.URL.Query().Get("download"); name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", security.SanitizeFilename(name)+".png"))
	}
	if _, err := wt.WriteTo(w); err != nil {
		logf("failed to write png: %v", err)
	}
}

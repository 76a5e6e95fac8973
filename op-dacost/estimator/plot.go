package estimator

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	sizePlotName = "batch_sizes"
	gasPlotName  = "batch_gas"
)

var barColors = []color.RGBA{
	{R: 242, G: 36, B: 36, A: 255},
	{R: 36, G: 242, B: 242, A: 255},
	{R: 242, G: 222, B: 36, A: 255},
}

type barSeries struct {
	name   string
	values plotter.Values
}

// WritePlots saves bar charts of the per-batch sizes and calldata gas to dir.
func WritePlots(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	labels := make([]string, 0, len(r.Batches))
	raw := make(plotter.Values, 0, len(r.Batches))
	compressed := make(plotter.Values, 0, len(r.Batches))
	fastlz := make(plotter.Values, 0, len(r.Batches))
	rawGas := make(plotter.Values, 0, len(r.Batches))
	compressedGas := make(plotter.Values, 0, len(r.Batches))
	for _, b := range r.Batches {
		labels = append(labels, strconv.FormatUint(b.Number, 10))
		raw = append(raw, float64(b.RawSize))
		compressed = append(compressed, float64(b.CompressedSize))
		fastlz = append(fastlz, float64(b.FastLZSize))
		rawGas = append(rawGas, float64(b.RawGas))
		compressedGas = append(compressedGas, float64(b.CompressedGas))
	}

	if err := saveBarPlot(dir, sizePlotName, "Batch Size by Block", "Bytes", labels, []barSeries{
		{name: "raw", values: raw},
		{name: r.CompressionAlgo, values: compressed},
		{name: "fastlz", values: fastlz},
	}); err != nil {
		return fmt.Errorf("save batch size graph: %w", err)
	}
	if err := saveBarPlot(dir, gasPlotName, "Batch Calldata Gas by Block", "Gas", labels, []barSeries{
		{name: "raw", values: rawGas},
		{name: r.CompressionAlgo, values: compressedGas},
	}); err != nil {
		return fmt.Errorf("save batch gas graph: %w", err)
	}
	return nil
}

func saveBarPlot(dir, name, title, yLabel string, labels []string, series []barSeries) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Block"
	p.Y.Label.Text = yLabel

	width := vg.Points(60 / float64(len(series)))
	for i, s := range series {
		bars, err := plotter.NewBarChart(s.values, width)
		if err != nil {
			return fmt.Errorf("create bar chart %s: %w", s.name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = barColors[i%len(barColors)]
		bars.Offset = width * vg.Length(float64(i)-float64(len(series)-1)/2)
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}
	p.NominalX(labels...)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	return savePlot(p, dir, name)
}

func savePlot(p *plot.Plot, dir, name string) error {
	filename := filepath.Join(dir, name+".png")
	if err := p.Save(10*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

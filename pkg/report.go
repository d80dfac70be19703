package spectra

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	reportWidth  = "900px"
	reportHeight = "420px"
)

// WriteReport renders an interactive HTML overview of the run into a file.
func WriteReport(result *Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	if err := RenderReport(result, file); err != nil {
		return err
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Report written to %s", filename)
		logger.Info(message, "report")
	}
	return nil
}

// RenderReport writes the report HTML to w.
func RenderReport(result *Result, w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		buildTOFChart(result),
		buildEnergyChart(result),
		buildRebinnedChart(result),
		buildCalibrationChart(result),
	)
	return page.Render(w)
}

func axisLabels(xs []float64) []string {
	labels := make([]string, len(xs))
	for i, x := range xs {
		labels[i] = strconv.FormatFloat(x, 'f', 2, 64)
	}
	return labels
}

func toLineData(ys []float64) []opts.LineData {
	data := make([]opts.LineData, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) {
			data[i] = opts.LineData{Value: nil}
		} else {
			data[i] = opts.LineData{Value: y}
		}
	}
	return data
}

func newSpectrumLine(title, subtitle, xname string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  reportWidth,
			Height: reportHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle, Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xname}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Signal (arb.u.)", Scale: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}

func buildTOFChart(result *Result) *charts.Line {
	subtitle := fmt.Sprintf("run %d, %d foreground and %d background shots from %d files",
		result.RunNumber, result.TOF.Counts.Foreground, result.TOF.Counts.Background, result.FilesRead)
	line := newSpectrumLine("TOF spectrum", subtitle, "TOF (ns)")
	line.SetXAxis(axisLabels(result.TOF.TimeNs))
	line.AddSeries("difference", toLineData(result.TOF.Diff))
	line.AddSeries("foreground", toLineData(result.TOF.Fore))
	line.AddSeries("background", toLineData(result.TOF.Back))
	return line
}

func buildEnergyChart(result *Result) *charts.Line {
	xs, ys := ekeWindow(result.Energy, configuration.RebinMaxEv)
	line := newSpectrumLine("Energy spectrum", "Jacobian corrected", "eKE (eV)")
	line.SetXAxis(axisLabels(xs))
	line.AddSeries("eKE spectrum", toLineData(ys))
	return line
}

func buildRebinnedChart(result *Result) *charts.Line {
	subtitle := fmt.Sprintf("%d linear bins", len(result.Rebinned.EkeEv))
	line := newSpectrumLine("Rebinned energy spectrum", subtitle, "eKE (eV)")
	line.SetXAxis(axisLabels(result.Rebinned.EkeEv))
	line.AddSeries("rebinned spectrum", toLineData(result.Rebinned.Signal))
	return line
}

func buildCalibrationChart(result *Result) *charts.Line {
	calib := result.Calibration
	subtitle := fmt.Sprintf("C=%.4g, T0=%.0f ns, KE0=%.2f eV", calib.PropConst, calib.TimeZero, calib.KE0)

	maxTof := 0.0
	for _, point := range result.CalPoints {
		if point.TofNs > maxTof {
			maxTof = point.TofNs
		}
	}
	grid := LinearAxis(0, maxTof+1000, 100)

	curve := make([]float64, len(grid))
	for i, t := range grid {
		energy := calib.Model(t)
		if energy > 60 {
			energy = math.NaN()
		}
		curve[i] = energy
	}

	// Calibration points sit on the nearest grid position; everything
	// else stays empty so only the markers show.
	markers := make([]opts.LineData, len(grid))
	for i := range markers {
		markers[i] = opts.LineData{Value: nil}
	}
	step := grid[1] - grid[0]
	for _, point := range result.CalPoints {
		index := int(math.Round(point.TofNs / step))
		if index >= 0 && index < len(markers) {
			markers[index] = opts.LineData{Value: point.EkeEv}
		}
	}

	line := newSpectrumLine("Energy calibration", subtitle, "TOF (ns)")
	line.SetGlobalOptions(
		charts.WithYAxisOpts(opts.YAxis{Name: "eKE (eV)", Max: 50, Min: 0}),
	)
	line.SetXAxis(axisLabels(grid))
	line.AddSeries("calibration result", toLineData(curve))
	line.AddSeries("calibration points", markers,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	return line
}

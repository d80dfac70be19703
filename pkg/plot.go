package spectra

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func prepPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = font.Length(5)
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	return p
}

func xyPoints(xs, ys []float64) plotter.XYs {
	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i].X = xs[i]
		points[i].Y = ys[i]
	}
	return points
}

// ekeWindow cuts the spectrum at maxEv. Energies blow up close to T0
// and plotting them would flatten the physical range.
func ekeWindow(spec EnergySpectrum, maxEv float64) (xs, ys []float64) {
	if maxEv <= 0 {
		return spec.EkeEv, spec.Signal
	}
	cut := sort.SearchFloat64s(spec.EkeEv, maxEv)
	return spec.EkeEv[:cut], spec.Signal[:cut]
}

// WritePlots renders the run overview figures into dir: the fitted
// calibration, the averaged TOF spectrum and the energy spectrum before
// and after rebinning.
func WritePlots(result *Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := plotCalibration(result, filepath.Join(dir, "calibration.png")); err != nil {
		return err
	}
	if err := plotTOF(result, filepath.Join(dir, "tof_spectrum.png")); err != nil {
		return err
	}
	if err := plotEnergy(result, filepath.Join(dir, "eke_spectrum.png")); err != nil {
		return err
	}
	if err := plotRebinned(result, filepath.Join(dir, "rebinned_spectrum.png")); err != nil {
		return err
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Plots written to %s", dir)
		logger.Info(message, "plot")
	}
	return nil
}

func plotCalibration(result *Result, filename string) error {
	p := prepPlot("Energy calibration", "TOF (ns)", "eKE (eV)")

	maxTof := 0.0
	for _, point := range result.CalPoints {
		if point.TofNs > maxTof {
			maxTof = point.TofNs
		}
	}

	// Evaluate the model on a coarse grid, skipping the unphysical
	// region at and below T0.
	grid := LinearAxis(0, maxTof+1000, 100)
	curve := make(plotter.XYs, 0, len(grid))
	for _, t := range grid {
		energy := result.Calibration.Model(t)
		if math.IsNaN(energy) || energy > 60 {
			continue
		}
		curve = append(curve, plotter.XY{X: t, Y: energy})
	}

	line, err := plotter.NewLine(curve)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.RGBA{B: 255, A: 255}

	points := make(plotter.XYs, len(result.CalPoints))
	for i, point := range result.CalPoints {
		points[i] = plotter.XY{X: point.TofNs, Y: point.EkeEv}
	}
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = color.RGBA{A: 255}
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.Shape = draw.CircleGlyph{}

	p.Add(line, scatter)
	p.Legend.Add("calibration result", line)
	p.Legend.Add("calibration points", scatter)
	p.Y.Min = 0
	p.Y.Max = 50

	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}

func plotTOF(result *Result, filename string) error {
	p := prepPlot("Electron magnetic bottle spectrum, TOF coordinate", "TOF (ns)", "Signal (arb.u.)")

	line, err := plotter.NewLine(xyPoints(result.TOF.TimeNs, result.TOF.Diff))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.RGBA{B: 255, A: 255}

	p.Add(line)
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

func plotEnergy(result *Result, filename string) error {
	p := prepPlot("Electron magnetic bottle spectrum, eKE coordinate", "eKE (eV)", "Signal (arb.u.)")

	xs, ys := ekeWindow(result.Energy, configuration.RebinMaxEv)
	line, err := plotter.NewLine(xyPoints(xs, ys))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.RGBA{R: 255, A: 255}

	p.Add(line)
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

func plotRebinned(result *Result, filename string) error {
	p := prepPlot("Rebinned energy spectrum", "eKE (eV)", "Signal (arb.u.)")

	xs, ys := ekeWindow(result.Energy, configuration.RebinMaxEv)
	err := plotutil.AddLines(p,
		"original eKE spectrum", xyPoints(xs, ys),
		"rebinned spectrum", xyPoints(result.Rebinned.EkeEv, result.Rebinned.Signal))
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

package spectra

import (
	"fmt"
	"math"
)

// Result gathers everything the analysis produces for one run.
type Result struct {
	RunNumber   int
	FilesRead   int
	Period      int64
	Retardation float64
	CalPoints   []CalPoint
	Calibration Calibration
	TOF         AveragedTOF
	Energy      EnergySpectrum
	Rebinned    EnergySpectrum
}

// ProcessRun turns the accumulated shot sums into calibrated spectra:
// finalize the averages, fit the energy calibration, move to the energy
// axis and rebin onto a linear grid. The retardation enters the
// calibration as the fixed KE0 offset.
func ProcessRun(acc *Accumulator, points []CalPoint, retardation float64) (Result, error) {
	avg, err := acc.Finalize()
	if err != nil {
		return Result{}, err
	}

	init := Calibration{
		PropConst: configuration.PropConstInit,
		TimeZero:  configuration.TimeZero,
		KE0:       retardation,
	}
	calib, err := FitPropConst(points, init)
	if err != nil {
		return Result{}, err
	}

	energy, err := ToEnergy(avg, calib)
	if err != nil {
		return Result{}, err
	}

	if configuration.Verbosity > 2 {
		logRoundTrip(avg, energy, calib)
	}

	axis := LinearAxis(energy.EkeEv[0], configuration.RebinMaxEv, configuration.RebinBins)
	rebinned, err := Rebin(energy, axis)
	if err != nil {
		return Result{}, err
	}

	if configuration.Verbosity > 0 {
		counts := acc.Counts()
		message := fmt.Sprintf("Averaged %d foreground and %d background shots from %d files",
			counts.Foreground, counts.Background, acc.Files())
		logger.Info(message, "process")
	}

	return Result{
		RunNumber:   acc.RunNumber(),
		FilesRead:   acc.Files(),
		Period:      acc.Period(),
		Retardation: retardation,
		CalPoints:   points,
		Calibration: calib,
		TOF:         avg,
		Energy:      energy,
		Rebinned:    rebinned,
	}, nil
}

// logRoundTrip maps the energy spectrum back onto the time axis and
// logs how far the round trip lands from the averaged input. The
// samples dropped before time zero shift the comparison window.
func logRoundTrip(avg AveragedTOF, energy EnergySpectrum, calib Calibration) {
	back, err := ToTOF(energy, calib)
	if err != nil {
		logger.Error(err.Error())
		return
	}

	offset := len(avg.Diff) - len(back.Signal)
	maxDev := 0.0
	for i, signal := range back.Signal {
		if dev := math.Abs(signal - avg.Diff[offset+i]); dev > maxDev {
			maxDev = dev
		}
	}
	message := fmt.Sprintf("Energy axis round trip over %d samples, max deviation %g", len(back.Signal), maxDev)
	logger.Info(message, "process")
}

package spectra

import (
	"fmt"
	"math"
)

// EnergySpectrum is a signal on the electron kinetic energy axis,
// ordered by ascending energy.
type EnergySpectrum struct {
	EkeEv  []float64
	Signal []float64
}

// TOFSpectrum is a signal on the time of flight axis.
type TOFSpectrum struct {
	TimeNs []float64
	Signal []float64
}

// TOFJacobian returns |dT/dE| at one time of flight. The spectrum is
// multiplied by this factor when moving to the energy axis so the
// integrated flux is conserved.
func (c Calibration) TOFJacobian(tofNs float64) float64 {
	dt := tofNs - c.TimeZero
	if dt <= 0 {
		return math.NaN()
	}
	return c.PropConst * dt * dt * dt / 2
}

// InverseModel returns the time of flight of an electron with the given
// kinetic energy. Energies at or below KE0 never reach the detector and
// map to NaN.
func (c Calibration) InverseModel(ekeEv float64) float64 {
	de := ekeEv - c.KE0
	if de <= 0 {
		return math.NaN()
	}
	return math.Sqrt(1/(c.PropConst*de)) + c.TimeZero
}

// KEJacobian returns |dE/dT| at one kinetic energy, the inverse factor
// used when moving back to the time of flight axis.
func (c Calibration) KEJacobian(ekeEv float64) float64 {
	tof := c.InverseModel(ekeEv)
	if math.IsNaN(tof) {
		return math.NaN()
	}
	dt := tof - c.TimeZero
	return 2 / (c.PropConst * dt * dt * dt)
}

// ToEnergy maps the averaged difference spectrum onto the energy axis.
// Samples at or before T0 carry no energy information and are dropped.
// Time runs opposite to energy, so the surviving samples are reversed
// to give an ascending axis.
func ToEnergy(avg AveragedTOF, calib Calibration) (EnergySpectrum, error) {
	n := len(avg.TimeNs)
	if n != len(avg.Diff) {
		return EnergySpectrum{}, fmt.Errorf("time axis has %d samples, spectrum has %d", n, len(avg.Diff))
	}

	eke := make([]float64, 0, n)
	signal := make([]float64, 0, n)
	for i := n - 1; i >= 0; i-- {
		energy := calib.Model(avg.TimeNs[i])
		if math.IsNaN(energy) {
			continue
		}
		eke = append(eke, energy)
		signal = append(signal, avg.Diff[i]*calib.TOFJacobian(avg.TimeNs[i]))
	}
	if len(eke) == 0 {
		return EnergySpectrum{}, fmt.Errorf("no samples after the time zero offset %g ns", calib.TimeZero)
	}
	return EnergySpectrum{EkeEv: eke, Signal: signal}, nil
}

// ToTOF maps an energy spectrum back onto the time of flight axis. It
// is the inverse of ToEnergy up to the samples dropped at the axis ends.
func ToTOF(spec EnergySpectrum, calib Calibration) (TOFSpectrum, error) {
	n := len(spec.EkeEv)
	if n != len(spec.Signal) {
		return TOFSpectrum{}, fmt.Errorf("energy axis has %d samples, spectrum has %d", n, len(spec.Signal))
	}

	tof := make([]float64, 0, n)
	signal := make([]float64, 0, n)
	for i := n - 1; i >= 0; i-- {
		t := calib.InverseModel(spec.EkeEv[i])
		if math.IsNaN(t) {
			continue
		}
		tof = append(tof, t)
		signal = append(signal, spec.Signal[i]*calib.KEJacobian(spec.EkeEv[i]))
	}
	if len(tof) == 0 {
		return TOFSpectrum{}, fmt.Errorf("no energies above the retardation offset %g eV", calib.KE0)
	}
	return TOFSpectrum{TimeNs: tof, Signal: signal}, nil
}

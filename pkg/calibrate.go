package spectra

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
)

// CalPoint ties a time of flight to a known electron kinetic energy.
// Pairs come from photoline positions measured at two bottle settings.
type CalPoint struct {
	TofNs float64
	EkeEv float64
}

// Calibration maps time of flight to electron kinetic energy through
//
//	ke = 1/(C (t - T0)^2) + KE0
//
// C is the proportionality constant absorbing flight length and
// electron mass, T0 the emission time offset and KE0 the retardation
// of the bottle.
type Calibration struct {
	PropConst float64
	TimeZero  float64
	KE0       float64
}

// Model evaluates the calibration at one time of flight. Times at or
// before T0 are unphysical and map to NaN.
func (c Calibration) Model(tofNs float64) float64 {
	dt := tofNs - c.TimeZero
	if dt <= 0 {
		return math.NaN()
	}
	return 1/(c.PropConst*dt*dt) + c.KE0
}

// FitPropConst fits the proportionality constant against the reference
// points. T0 is fixed by the beamline timing and KE0 by the retardation
// of the run, so only C floats.
func FitPropConst(points []CalPoint, init Calibration) (Calibration, error) {
	if len(points) == 0 {
		return Calibration{}, &ErrCalibration{Reason: "no calibration points"}
	}
	if init.PropConst <= 0 {
		return Calibration{}, &ErrCalibration{Reason: fmt.Sprintf("initial proportionality constant %g must be positive", init.PropConst)}
	}
	for _, point := range points {
		if point.TofNs <= init.TimeZero {
			reason := fmt.Sprintf("calibration point at %g ns is before T0 %g ns", point.TofNs, init.TimeZero)
			return Calibration{}, &ErrCalibration{Reason: reason}
		}
	}

	// The constant is fitted in units of the initial guess so the
	// numerical jacobian sees a parameter of order one.
	residuals := func(dst, guess []float64) {
		fit := Calibration{PropConst: guess[0] * init.PropConst, TimeZero: init.TimeZero, KE0: init.KE0}
		for i, point := range points {
			dst[i] = fit.Model(point.TofNs) - point.EkeEv
		}
	}
	jacobian := lm.NumJac{Func: residuals}

	problem := lm.LMProblem{
		Dim:        1,
		Size:       len(points),
		Func:       residuals,
		Jac:        jacobian.Jac,
		InitParams: []float64{1},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(problem, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	if err != nil {
		return Calibration{}, &ErrCalibration{Reason: "fit did not converge", Err: err}
	}

	fitted := Calibration{
		PropConst: results.X[0] * init.PropConst,
		TimeZero:  init.TimeZero,
		KE0:       init.KE0,
	}
	if fitted.PropConst <= 0 {
		return Calibration{}, &ErrCalibration{Reason: fmt.Sprintf("unphysical proportionality constant %g", fitted.PropConst)}
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Fitted proportionality constant: %.6g", fitted.PropConst)
		logger.Info(message, "calibrate")
	}
	return fitted, nil
}

package spectra

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// LinearAxis returns n evenly spaced values from lo to hi inclusive.
func LinearAxis(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// CumulativeSimpson integrates y over x cumulatively. Intervals are
// taken in pairs and each pair integrated with the parabola through its
// three samples; a trailing odd interval uses the right half of the
// last parabola. out[0] is zero and out[i] approximates the integral
// from x[0] to x[i].
func CumulativeSimpson(y, x []float64) ([]float64, error) {
	n := len(y)
	if len(x) != n {
		return nil, &ErrRebin{Reason: fmt.Sprintf("%d samples for %d axis points", n, len(x))}
	}
	if n < 2 {
		return nil, &ErrRebin{Reason: "need at least two samples to integrate"}
	}

	out := make([]float64, n)
	if n == 2 {
		// single interval, fall back to the trapezoid
		out[1] = 0.5 * (x[1] - x[0]) * (y[0] + y[1])
		return out, nil
	}

	sub := make([]float64, n-1)
	for i := 0; i+2 < n; i += 2 {
		left, right := simpsonHalves(x[i], x[i+1], x[i+2], y[i], y[i+1], y[i+2])
		sub[i] = left
		sub[i+1] = right
	}
	if (n-1)%2 == 1 {
		// odd interval count: cover the last interval with the right
		// half of the final parabola
		_, right := simpsonHalves(x[n-3], x[n-2], x[n-1], y[n-3], y[n-2], y[n-1])
		sub[n-2] = right
	}

	for i, ds := range sub {
		out[i+1] = out[i] + ds
	}
	return out, nil
}

// simpsonHalves integrates the parabola through three samples over the
// left and right sub intervals separately. Spacings may differ.
func simpsonHalves(x0, x1, x2, f0, f1, f2 float64) (left, right float64) {
	h0 := x1 - x0
	h1 := x2 - x1
	h := h0 + h1

	left = f0*h0*(2*h0+3*h1)/(6*h) + f1*h0*(h0+3*h1)/(6*h1) - f2*h0*h0*h0/(6*h*h1)
	right = f2*h1*(2*h1+3*h0)/(6*h) + f1*h1*(h1+3*h0)/(6*h0) - f0*h1*h1*h1/(6*h*h0)
	return left, right
}

// Gradient estimates df/dx with central differences in the interior and
// one sided differences at the ends.
func Gradient(f, x []float64) ([]float64, error) {
	n := len(f)
	if len(x) != n {
		return nil, &ErrRebin{Reason: fmt.Sprintf("%d samples for %d axis points", n, len(x))}
	}
	if n < 2 {
		return nil, &ErrRebin{Reason: "need at least two samples to differentiate"}
	}

	out := make([]float64, n)
	out[0] = (f[1] - f[0]) / (x[1] - x[0])
	out[n-1] = (f[n-1] - f[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		out[i] = (f[i+1] - f[i-1]) / (x[i+1] - x[i-1])
	}
	return out, nil
}

// Rebin projects a spectrum onto a new axis without losing flux. The
// signal is integrated cumulatively, the cumulative curve interpolated
// at the new bin positions and differentiated back. Bins outside the
// original axis see a flat cumulative curve and come out as zero.
func Rebin(spec EnergySpectrum, axis []float64) (EnergySpectrum, error) {
	n := len(spec.EkeEv)
	if n != len(spec.Signal) {
		return EnergySpectrum{}, &ErrRebin{Reason: fmt.Sprintf("energy axis has %d samples, spectrum has %d", n, len(spec.Signal))}
	}
	if n < 3 {
		return EnergySpectrum{}, &ErrRebin{Reason: "need at least three samples to rebin"}
	}
	if len(axis) < 2 {
		return EnergySpectrum{}, &ErrRebin{Reason: "new axis needs at least two bins"}
	}
	for i := 1; i < n; i++ {
		if spec.EkeEv[i] <= spec.EkeEv[i-1] {
			return EnergySpectrum{}, &ErrRebin{Reason: "energy axis must be strictly increasing"}
		}
	}

	cumulative, err := CumulativeSimpson(spec.Signal, spec.EkeEv)
	if err != nil {
		return EnergySpectrum{}, err
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(spec.EkeEv, cumulative); err != nil {
		return EnergySpectrum{}, &ErrRebin{Reason: err.Error()}
	}

	resampled := make([]float64, len(axis))
	for i, energy := range axis {
		resampled[i] = pl.Predict(energy)
	}

	signal, err := Gradient(resampled, axis)
	if err != nil {
		return EnergySpectrum{}, err
	}
	return EnergySpectrum{EkeEv: axis, Signal: signal}, nil
}

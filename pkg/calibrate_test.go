package spectra

import (
	"errors"
	"math"
	"testing"
)

func TestModel(t *testing.T) {
	calib := Calibration{PropConst: 8e-8, TimeZero: 5000, KE0: 0}

	tests := []struct {
		name  string
		tofNs float64
		want  float64
	}{
		{"1000 ns after T0", 6000, 12.5},
		{"2000 ns after T0", 7000, 3.125},
		{"500 ns after T0", 5500, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := calib.Model(tc.tofNs)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Model(%g) = %g, want %g", tc.tofNs, got, tc.want)
			}
		})
	}
}

func TestModelBeforeTimeZero(t *testing.T) {
	calib := Calibration{PropConst: 8e-8, TimeZero: 5000, KE0: 0}
	for _, tofNs := range []float64{5000, 4999, 0, -100} {
		if got := calib.Model(tofNs); !math.IsNaN(got) {
			t.Errorf("Model(%g) = %g, want NaN", tofNs, got)
		}
	}
}

func TestModelRetardationOffset(t *testing.T) {
	calib := Calibration{PropConst: 8e-8, TimeZero: 5000, KE0: 3}
	got := calib.Model(6000)
	if math.Abs(got-15.5) > 1e-9 {
		t.Errorf("Model(6000) with KE0 3 = %g, want 15.5", got)
	}
}

func TestFitPropConstRecoversKnownConstant(t *testing.T) {
	truth := Calibration{PropConst: 8e-8, TimeZero: 5000, KE0: 3}

	tofs := []float64{5600, 5800, 6100, 6500}
	points := make([]CalPoint, len(tofs))
	for i, tofNs := range tofs {
		points[i] = CalPoint{TofNs: tofNs, EkeEv: truth.Model(tofNs)}
	}

	init := Calibration{PropConst: 1.2e-6, TimeZero: 5000, KE0: 3}
	fitted, err := FitPropConst(points, init)
	if err != nil {
		t.Fatalf("FitPropConst: %v", err)
	}

	relErr := math.Abs(fitted.PropConst-truth.PropConst) / truth.PropConst
	if relErr > 1e-6 {
		t.Errorf("fitted C = %g, want %g (relative error %g)", fitted.PropConst, truth.PropConst, relErr)
	}
	if fitted.TimeZero != init.TimeZero {
		t.Errorf("fit moved T0 from %g to %g", init.TimeZero, fitted.TimeZero)
	}
	if fitted.KE0 != init.KE0 {
		t.Errorf("fit moved KE0 from %g to %g", init.KE0, fitted.KE0)
	}
}

func TestFitPropConstTwoPhotolines(t *testing.T) {
	// Two photoline positions that no single constant matches exactly.
	// The least squares optimum sits between the one point solutions
	// 7.8125e-8 and 8.2645e-8.
	points := []CalPoint{
		{TofNs: 5800, EkeEv: 20},
		{TofNs: 6100, EkeEv: 10},
	}
	init := Calibration{PropConst: 1.2e-6, TimeZero: 5000, KE0: 0}

	fitted, err := FitPropConst(points, init)
	if err != nil {
		t.Fatalf("FitPropConst: %v", err)
	}
	if fitted.PropConst < 7.8e-8 || fitted.PropConst > 8.3e-8 {
		t.Errorf("fitted C = %g, want a value between the per point solutions", fitted.PropConst)
	}
}

func TestFitPropConstErrors(t *testing.T) {
	valid := Calibration{PropConst: 1.2e-6, TimeZero: 5000, KE0: 0}

	tests := []struct {
		name   string
		points []CalPoint
		init   Calibration
	}{
		{"no points", nil, valid},
		{"point before T0", []CalPoint{{TofNs: 4900, EkeEv: 20}}, valid},
		{"point at T0", []CalPoint{{TofNs: 5000, EkeEv: 20}}, valid},
		{"zero initial constant", []CalPoint{{TofNs: 5800, EkeEv: 20}}, Calibration{PropConst: 0, TimeZero: 5000}},
		{"negative initial constant", []CalPoint{{TofNs: 5800, EkeEv: 20}}, Calibration{PropConst: -1e-6, TimeZero: 5000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FitPropConst(tc.points, tc.init)
			var calErr *ErrCalibration
			if !errors.As(err, &calErr) {
				t.Fatalf("FitPropConst = %v, want ErrCalibration", err)
			}
		})
	}
}

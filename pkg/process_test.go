package spectra

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Synthetic run with a single photoelectron line: four shots alternating
// foreground and background, a dip at sample 15 on the foreground shots
// and calibration points generated from a known constant.
func syntheticRun(t *testing.T) *Accumulator {
	t.Helper()

	const shots, samples = 4, 100
	raw := make([]float64, shots*samples)
	for shot := 0; shot < shots; shot++ {
		for s := 0; s < samples; s++ {
			raw[shot*samples+s] = -0.1
		}
	}
	raw[0*samples+15] = -1.1
	raw[2*samples+15] = -1.1

	data := BunchData{
		RunNumber: 7,
		Sequence:  0,
		Bunches:   []int64{1, 2, 3, 4},
		Period:    2,
		Traces:    mat.NewDense(shots, samples, raw),
	}

	acc := NewAccumulator()
	if err := acc.AddFile(&data); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	return acc
}

func TestProcessRun(t *testing.T) {
	SetConfiguration(Configuration{
		SampleWidthNs: 1,
		TimeZero:      5,
		PropConstInit: 0.02,
		RebinBins:     500,
		RebinMaxEv:    50,
	})
	defer SetConfiguration(Configuration{})

	truth := Calibration{PropConst: 0.01, TimeZero: 5, KE0: 0}
	points := []CalPoint{
		{TofNs: 15, EkeEv: truth.Model(15)},
		{TofNs: 25, EkeEv: truth.Model(25)},
	}

	acc := syntheticRun(t)
	result, err := ProcessRun(acc, points, 0)
	if err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}

	if result.RunNumber != 7 {
		t.Errorf("RunNumber = %d, want 7", result.RunNumber)
	}
	if result.FilesRead != 1 || result.Period != 2 {
		t.Errorf("FilesRead = %d, Period = %d, want 1 and 2", result.FilesRead, result.Period)
	}

	relErr := math.Abs(result.Calibration.PropConst-truth.PropConst) / truth.PropConst
	if relErr > 1e-6 {
		t.Errorf("fitted C = %g, want %g", result.Calibration.PropConst, truth.PropConst)
	}

	// Background minus foreground turns the absorption dip into a
	// positive line of unit height at sample 15.
	if math.Abs(result.TOF.Diff[15]-1) > 1e-12 {
		t.Errorf("Diff[15] = %g, want 1", result.TOF.Diff[15])
	}
	if math.Abs(result.TOF.Diff[14]) > 1e-12 {
		t.Errorf("Diff[14] = %g, want 0", result.TOF.Diff[14])
	}

	// Samples at or before T0 = 5 ns drop out of the energy spectrum.
	if len(result.Energy.EkeEv) != 94 {
		t.Errorf("energy spectrum has %d samples, want 94", len(result.Energy.EkeEv))
	}

	// The line sits at 1 eV after calibration.
	peak := 0
	for i, v := range result.Energy.Signal {
		if v > result.Energy.Signal[peak] {
			peak = i
		}
	}
	if math.Abs(result.Energy.EkeEv[peak]-1) > 1e-9 {
		t.Errorf("energy peak at %g eV, want 1", result.Energy.EkeEv[peak])
	}

	if len(result.Rebinned.EkeEv) != 500 {
		t.Fatalf("rebinned axis has %d bins, want 500", len(result.Rebinned.EkeEv))
	}
	if math.Abs(result.Rebinned.EkeEv[499]-50) > 1e-9 {
		t.Errorf("rebinned axis ends at %g eV, want 50", result.Rebinned.EkeEv[499])
	}

	peak = 0
	for i, v := range result.Rebinned.Signal {
		if v > result.Rebinned.Signal[peak] {
			peak = i
		}
	}
	if math.Abs(result.Rebinned.EkeEv[peak]-1) > 0.3 {
		t.Errorf("rebinned peak at %g eV, want about 1", result.Rebinned.EkeEv[peak])
	}

	// Rebinning preserves the integrated flux of the energy spectrum.
	cumulative, err := CumulativeSimpson(result.Energy.Signal, result.Energy.EkeEv)
	if err != nil {
		t.Fatalf("CumulativeSimpson: %v", err)
	}
	flux := cumulative[len(cumulative)-1]
	if got := trapezoid(result.Rebinned.Signal, result.Rebinned.EkeEv); math.Abs(got-flux) > 1e-6 {
		t.Errorf("rebinned flux = %g, want %g", got, flux)
	}
}

func TestProcessRunWithRetardation(t *testing.T) {
	SetConfiguration(Configuration{
		SampleWidthNs: 1,
		TimeZero:      5,
		PropConstInit: 0.02,
		RebinBins:     200,
		RebinMaxEv:    50,
	})
	defer SetConfiguration(Configuration{})

	truth := Calibration{PropConst: 0.01, TimeZero: 5, KE0: 2.5}
	points := []CalPoint{
		{TofNs: 15, EkeEv: truth.Model(15)},
		{TofNs: 25, EkeEv: truth.Model(25)},
	}

	acc := syntheticRun(t)
	result, err := ProcessRun(acc, points, 2.5)
	if err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}

	if result.Retardation != 2.5 {
		t.Errorf("Retardation = %g, want 2.5", result.Retardation)
	}
	if result.Calibration.KE0 != 2.5 {
		t.Errorf("KE0 = %g, want 2.5", result.Calibration.KE0)
	}

	// With the retardation offset the line moves to 3.5 eV.
	peak := 0
	for i, v := range result.Energy.Signal {
		if v > result.Energy.Signal[peak] {
			peak = i
		}
	}
	if math.Abs(result.Energy.EkeEv[peak]-3.5) > 1e-9 {
		t.Errorf("energy peak at %g eV, want 3.5", result.Energy.EkeEv[peak])
	}
}

func TestProcessRunNeedsCalibrationPoints(t *testing.T) {
	SetConfiguration(Configuration{
		SampleWidthNs: 1,
		TimeZero:      5,
		PropConstInit: 0.02,
		RebinBins:     200,
		RebinMaxEv:    50,
	})
	defer SetConfiguration(Configuration{})

	acc := syntheticRun(t)
	if _, err := ProcessRun(acc, nil, 0); err == nil {
		t.Fatal("ProcessRun accepted an empty calibration point list")
	}
}

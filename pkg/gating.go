package spectra

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ShotCounts tracks how many shots entered each average.
type ShotCounts struct {
	Foreground int
	Background int
}

// AveragedTOF holds the shot-averaged time of flight spectra of a run.
type AveragedTOF struct {
	TimeNs []float64
	Fore   []float64
	Back   []float64
	// Background subtracted average. The digitizer records electrons as
	// voltage drops, so the difference is sign flipped to make the
	// signal positive.
	Diff   []float64
	Counts ShotCounts
}

// SplitShots sorts the shots of one file into foreground and background
// row indices. A shot is background when its bunch ID is a multiple of
// the background period.
func SplitShots(data *BunchData) (fore, back []int, err error) {
	if data.Period < 1 {
		return nil, nil, &ErrGating{Period: data.Period, Reason: "background period must be positive"}
	}
	if data.Period == 1 {
		return nil, nil, &ErrGating{Period: data.Period, Reason: "every shot would be background"}
	}
	if len(data.Bunches) != data.NumShots() {
		reason := fmt.Sprintf("%d bunch IDs for %d traces", len(data.Bunches), data.NumShots())
		return nil, nil, &ErrGating{Period: data.Period, Reason: reason}
	}

	for i, bunch := range data.Bunches {
		if bunch%data.Period == 0 {
			back = append(back, i)
		} else {
			fore = append(fore, i)
		}
	}
	return fore, back, nil
}

// AverageTraces returns the per sample mean over the selected trace rows.
func AverageTraces(traces *mat.Dense, rows []int) []float64 {
	_, samples := traces.Dims()
	sum := make([]float64, samples)
	for _, row := range rows {
		floats.Add(sum, traces.RawRowView(row))
	}
	if len(rows) > 0 {
		floats.Scale(1/float64(len(rows)), sum)
	}
	return sum
}

// Accumulator builds the run average incrementally. Files are summed
// shot by shot so a run split over many raw files averages exactly as
// if all traces sat in one file.
type Accumulator struct {
	foreSum      []float64
	backSum      []float64
	counts       ShotCounts
	files        int
	runNumber    int
	period       int64
	voltages     BottleVoltages
	haveVoltages bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// AddFile splits the shots of one file and folds them into the running
// sums. The first file fixes the expected trace length and the bottle
// voltages for the run.
func (a *Accumulator) AddFile(data *BunchData) error {
	fore, back, err := SplitShots(data)
	if err != nil {
		return err
	}

	samples := data.NumSamples()
	if a.foreSum == nil {
		a.foreSum = make([]float64, samples)
		a.backSum = make([]float64, samples)
	} else if len(a.foreSum) != samples {
		return fmt.Errorf("file %s has %d samples per trace, expected %d", data.Filename, samples, len(a.foreSum))
	}

	for _, row := range fore {
		floats.Add(a.foreSum, data.Traces.RawRowView(row))
	}
	for _, row := range back {
		floats.Add(a.backSum, data.Traces.RawRowView(row))
	}
	a.counts.Foreground += len(fore)
	a.counts.Background += len(back)

	if a.period == 0 {
		a.period = data.Period
	} else if a.period != data.Period && configuration.Verbosity > 0 {
		message := fmt.Sprintf("Background period changed from %d to %d in %s", a.period, data.Period, data.Filename)
		logger.Info(message, "gating")
	}

	if !a.haveVoltages {
		a.voltages = data.Voltages
		a.haveVoltages = true
	}
	if a.files == 0 {
		a.runNumber = data.RunNumber
	}
	a.files++
	return nil
}

// RunNumber returns the run number of the first accumulated file.
func (a *Accumulator) RunNumber() int {
	return a.runNumber
}

// Files returns the number of files folded in so far.
func (a *Accumulator) Files() int {
	return a.files
}

// Period returns the background period of the run.
func (a *Accumulator) Period() int64 {
	return a.period
}

// Voltages returns the bottle voltages recorded with the first file.
func (a *Accumulator) Voltages() BottleVoltages {
	return a.voltages
}

// Counts returns the accumulated shot counts.
func (a *Accumulator) Counts() ShotCounts {
	return a.counts
}

// Finalize turns the running sums into the averaged spectra. The time
// axis is the digitizer sample index scaled by the sample width.
func (a *Accumulator) Finalize() (AveragedTOF, error) {
	if a.counts.Foreground == 0 {
		return AveragedTOF{}, &ErrGating{Period: a.period, Reason: "no foreground shots accumulated"}
	}
	if a.counts.Background == 0 {
		return AveragedTOF{}, &ErrGating{Period: a.period, Reason: "no background shots accumulated"}
	}

	samples := len(a.foreSum)
	avg := AveragedTOF{
		TimeNs: make([]float64, samples),
		Fore:   make([]float64, samples),
		Back:   make([]float64, samples),
		Diff:   make([]float64, samples),
		Counts: a.counts,
	}

	width := configuration.SampleWidthNs
	if width <= 0 {
		width = 1
	}
	for i := range avg.TimeNs {
		avg.TimeNs[i] = float64(i) * width
	}

	copy(avg.Fore, a.foreSum)
	floats.Scale(1/float64(a.counts.Foreground), avg.Fore)
	copy(avg.Back, a.backSum)
	floats.Scale(1/float64(a.counts.Background), avg.Back)

	for i := range avg.Diff {
		avg.Diff[i] = avg.Back[i] - avg.Fore[i]
	}
	return avg, nil
}

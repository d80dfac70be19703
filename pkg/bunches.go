package spectra

import (
	"gonum.org/v1/gonum/mat"
)

// BunchData holds the content of one raw file: one digitizer trace per
// FEL shot plus the machine metadata needed to sort the shots.
type BunchData struct {
	RunNumber int
	Sequence  int
	Filename  string
	// Bunch ID of each shot, one entry per trace row.
	Bunches []int64
	// Background period written by the DAQ. Every shot whose bunch ID
	// is a multiple of this period had the FEL kicked away.
	Period   int64
	Traces   *mat.Dense
	Voltages BottleVoltages
	Error    bool
}

// NumShots returns the number of traces recorded in the file.
func (b *BunchData) NumShots() int {
	if b.Traces == nil {
		return 0
	}
	shots, _ := b.Traces.Dims()
	return shots
}

// NumSamples returns the number of digitizer samples per trace.
func (b *BunchData) NumSamples() int {
	if b.Traces == nil {
		return 0
	}
	_, samples := b.Traces.Dims()
	return samples
}

// BottleVoltages holds the magnetic bottle electrode settings stored with
// each raw file. The On fields are the enable flags as written by the DAQ,
// 1 when the supply was switched on.
type BottleVoltages struct {
	Voltage1 float64
	Voltage2 float64
	Voltage3 float64
	On1      float64
	On2      float64
	On3      float64
}

// Retardation returns the effective retardation potential seen by the
// electrons. The third electrode is wired with opposite polarity and
// enters with a negative sign.
func (v BottleVoltages) Retardation() float64 {
	return v.Voltage1*v.On1 + v.Voltage2*v.On2 - v.Voltage3*v.On3
}

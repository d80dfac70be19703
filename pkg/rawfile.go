package spectra

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmbenlloch/go-hdf5"
)

// Dataset layout written by the DAQ for every raw file.
const (
	bunchesPath    = "bunches"
	periodPath     = "Background_Period"
	digitizerGroup = "digitizer"
	bottleGroup    = "endstation/MagneticBottle"
)

// RunNumberFromPath extracts the run and sequence numbers from a raw
// file name following the Run_<run>_<sequence>.h5 convention.
func RunNumberFromPath(path string) (int, int, error) {
	base := filepath.Base(path)
	name, found := strings.CutSuffix(base, ".h5")
	if !found {
		return 0, 0, &ErrRunFilename{Filename: base}
	}

	parts := strings.Split(name, "_")
	if len(parts) != 3 || parts[0] != "Run" {
		return 0, 0, &ErrRunFilename{Filename: base}
	}
	run, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &ErrRunFilename{Filename: base}
	}
	sequence, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, &ErrRunFilename{Filename: base}
	}
	return run, sequence, nil
}

// ReadRawFile loads the traces and machine metadata of one raw file.
// The digitizer channel to read comes from the configuration.
func ReadRawFile(filename string) (BunchData, error) {
	data := BunchData{Filename: filename}

	file, err := openFileReadOnly(filename)
	if err != nil {
		return data, err
	}
	defer file.Close()

	run, sequence, err := RunNumberFromPath(filename)
	if err != nil {
		return data, err
	}
	data.RunNumber = run
	data.Sequence = sequence

	data.Bunches, err = readVectorInt64(file, bunchesPath)
	if err != nil {
		return data, err
	}

	data.Period, err = readScalarInt64(file, periodPath)
	if err != nil {
		return data, err
	}

	tracePath := digitizerGroup + "/" + configuration.EonChannel
	data.Traces, err = readMatrixFloat(file, tracePath)
	if err != nil {
		return data, err
	}

	data.Voltages, err = readBottleVoltages(file)
	if err != nil {
		// Old runs predate the magnetic bottle metadata. Fall back to
		// zero retardation, same as an open bottle.
		message := fmt.Errorf("cannot determine retardation voltage from %s: %w", filename, err)
		logger.Error(message.Error())
		data.Voltages = BottleVoltages{}
	}

	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("Read %d shots of %d samples from %s", data.NumShots(), data.NumSamples(), filename)
		logger.Info(message, "rawfile")
	}
	return data, nil
}

func readBottleVoltages(file *hdf5.File) (BottleVoltages, error) {
	var voltages BottleVoltages
	var err error

	fields := []struct {
		path string
		dst  *float64
	}{
		{bottleGroup + "/voltage_ch1", &voltages.Voltage1},
		{bottleGroup + "/voltage_ch2", &voltages.Voltage2},
		{bottleGroup + "/voltage_ch3", &voltages.Voltage3},
		{bottleGroup + "/ch1_is_enabled", &voltages.On1},
		{bottleGroup + "/ch2_is_enabled", &voltages.On2},
		{bottleGroup + "/ch3_is_enabled", &voltages.On3},
	}
	for _, field := range fields {
		*field.dst, err = readScalarFloat(file, field.path)
		if err != nil {
			return BottleVoltages{}, err
		}
	}
	return voltages, nil
}

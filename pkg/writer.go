package spectra

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jmbenlloch/go-hdf5"
	"golang.org/x/exp/maps"
)

// CalPointHDF5 is the layout of the calibration points table.
type CalPointHDF5 struct {
	tof_ns float64
	eke_ev float64
}

type Writer struct {
	File           *hdf5.File
	Filename       string
	RunGroup       *hdf5.Group
	TOFGroup       *hdf5.Group
	EnergyGroup    *hdf5.Group
	RebinnedGroup  *hdf5.Group
	RunInfoTable   *hdf5.Dataset
	ParamsTable    *hdf5.Dataset
	CalPointsTable *hdf5.Dataset
	TimeArray      *hdf5.Dataset
	ForeArray      *hdf5.Dataset
	BackArray      *hdf5.Dataset
	DiffArray      *hdf5.Dataset
	EnergyAxis     *hdf5.Dataset
	EnergySpec     *hdf5.Dataset
	RebinnedAxis   *hdf5.Dataset
	RebinnedSpec   *hdf5.Dataset
}

func NewWriter(filename string) *Writer {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	writer := &Writer{}
	fmt.Println("hdf5writer: Creating file: ", filename)
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.TOFGroup = createGroup(writer.File, "TOF")
	writer.EnergyGroup = createGroup(writer.File, "Energy")
	writer.RebinnedGroup = createSubGroup(writer.EnergyGroup, "Rebinned")
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.ParamsTable = createTable(writer.RunGroup, "params", ParamHDF5{})
	writer.CalPointsTable = createTable(writer.RunGroup, "calPoints", CalPointHDF5{})
	writer.TimeArray = create1dArray(writer.TOFGroup, "time_ns")
	writer.ForeArray = create1dArray(writer.TOFGroup, "foreground")
	writer.BackArray = create1dArray(writer.TOFGroup, "background")
	writer.DiffArray = create1dArray(writer.TOFGroup, "difference")
	writer.EnergyAxis = create1dArray(writer.EnergyGroup, "eke_ev")
	writer.EnergySpec = create1dArray(writer.EnergyGroup, "spectrum")
	writer.RebinnedAxis = create1dArray(writer.RebinnedGroup, "eke_ev")
	writer.RebinnedSpec = create1dArray(writer.RebinnedGroup, "spectrum")
	return writer
}

func analysisParams(result *Result) map[string]float64 {
	return map[string]float64{
		"prop_const":      result.Calibration.PropConst,
		"time_zero_ns":    result.Calibration.TimeZero,
		"ke0_ev":          result.Calibration.KE0,
		"retardation_v":   result.Retardation,
		"bkg_period":      float64(result.Period),
		"fore_shots":      float64(result.TOF.Counts.Foreground),
		"back_shots":      float64(result.TOF.Counts.Background),
		"files_read":      float64(result.FilesRead),
		"sample_width_ns": configuration.SampleWidthNs,
	}
}

func sortParams(params map[string]float64) []ParamHDF5 {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	// doing appends will not work
	keys := maps.Keys(params)
	sort.Strings(keys)

	sorted := make([]ParamHDF5, len(keys))
	for i, key := range keys {
		sorted[i] = ParamHDF5{
			paramStr: convertToHdf5String(key),
			value:    params[key],
		}
	}
	return sorted
}

func (w *Writer) WriteResult(result *Result) {
	writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(result.RunNumber)}, 0)

	params := sortParams(analysisParams(result))
	writeArrayToTable(w.ParamsTable, &params, 0)

	points := make([]CalPointHDF5, len(result.CalPoints))
	for i, point := range result.CalPoints {
		points[i] = CalPointHDF5{tof_ns: point.TofNs, eke_ev: point.EkeEv}
	}
	writeArrayToTable(w.CalPointsTable, &points, 0)

	write1dArray(w.TimeArray, &result.TOF.TimeNs)
	write1dArray(w.ForeArray, &result.TOF.Fore)
	write1dArray(w.BackArray, &result.TOF.Back)
	write1dArray(w.DiffArray, &result.TOF.Diff)
	write1dArray(w.EnergyAxis, &result.Energy.EkeEv)
	write1dArray(w.EnergySpec, &result.Energy.Signal)
	write1dArray(w.RebinnedAxis, &result.Rebinned.EkeEv)
	write1dArray(w.RebinnedSpec, &result.Rebinned.Signal)
}

func (w *Writer) Close() error {
	fmt.Println("Closing file hdf writer ", w.Filename)
	var errs []error

	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.ParamsTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing params table: %w", err))
	}
	if err := w.CalPointsTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing calibration points table: %w", err))
	}
	if err := w.TimeArray.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing time axis: %w", err))
	}
	if err := w.ForeArray.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing foreground spectrum: %w", err))
	}
	if err := w.BackArray.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing background spectrum: %w", err))
	}
	if err := w.DiffArray.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing difference spectrum: %w", err))
	}
	if err := w.EnergyAxis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing energy axis: %w", err))
	}
	if err := w.EnergySpec.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing energy spectrum: %w", err))
	}
	if err := w.RebinnedAxis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing rebinned axis: %w", err))
	}
	if err := w.RebinnedSpec.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing rebinned spectrum: %w", err))
	}
	if err := w.RebinnedGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing rebinned group: %w", err))
	}
	if err := w.EnergyGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing energy group: %w", err))
	}
	if err := w.TOFGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing TOF group: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// WriteResultFile writes the analysis output when data writing is
// enabled in the configuration.
func WriteResultFile(result *Result, configuration Configuration) error {
	if !configuration.WriteData {
		return nil
	}
	writer := NewWriter(configuration.FileOut)
	writer.WriteResult(result)
	return writer.Close()
}

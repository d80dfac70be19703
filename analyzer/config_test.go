package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(filename, []byte(content), 0644)
	assert.NoError(t, err)
	return filename
}

func TestLoadConfigurationDefaults(t *testing.T) {
	filename := writeConfig(t, `{"file_in": "Run_028_0000.h5"}`)

	config, err := LoadConfiguration(filename)
	assert.NoError(t, err)

	assert.Equal(t, "Run_028_0000.h5", config.FileIn)
	assert.Equal(t, "channel3", config.EonChannel)
	assert.Equal(t, 1.0, config.SampleWidthNs)
	assert.Equal(t, 5000.0, config.TimeZero)
	assert.Equal(t, 1.2e-6, config.PropConstInit)
	assert.Equal(t, []float64{5800, 6100}, config.CalTofNs)
	assert.Equal(t, []float64{20, 10}, config.CalEkeEv)
	assert.Equal(t, -1.0, config.Retardation)
	assert.Equal(t, 1000, config.RebinBins)
	assert.Equal(t, 50.0, config.RebinMaxEv)
	assert.True(t, config.Discard)
	assert.True(t, config.WriteData)
	assert.True(t, config.MakePlots)
	assert.False(t, config.HTMLReport)
	assert.Equal(t, 1, config.NumWorkers)
	assert.Equal(t, 4, config.CompressionLevel)
	assert.Equal(t, "MBES", config.DBName)
}

func TestLoadConfigurationOverrides(t *testing.T) {
	filename := writeConfig(t, `{
		"run_dir": "/data/fel/run028",
		"file_out": "run028_spectra.h5",
		"eon_channel": "channel1",
		"time_zero": 4800,
		"cal_tof_ns": [5500, 5900, 6300],
		"cal_eke_ev": [30, 15, 8],
		"retardation": 2.5,
		"rebin_bins": 500,
		"no_db": true,
		"verbosity": 2,
		"num_workers": 4,
		"make_plots": false,
		"html_report": true
	}`)

	config, err := LoadConfiguration(filename)
	assert.NoError(t, err)

	assert.Equal(t, "/data/fel/run028", config.RunDir)
	assert.Equal(t, "run028_spectra.h5", config.FileOut)
	assert.Equal(t, "channel1", config.EonChannel)
	assert.Equal(t, 4800.0, config.TimeZero)
	assert.Equal(t, []float64{5500, 5900, 6300}, config.CalTofNs)
	assert.Equal(t, []float64{30, 15, 8}, config.CalEkeEv)
	assert.Equal(t, 2.5, config.Retardation)
	assert.Equal(t, 500, config.RebinBins)
	assert.True(t, config.NoDB)
	assert.Equal(t, 2, config.Verbosity)
	assert.Equal(t, 4, config.NumWorkers)
	assert.False(t, config.MakePlots)
	assert.True(t, config.HTMLReport)

	// Untouched fields keep their defaults.
	assert.Equal(t, 1.2e-6, config.PropConstInit)
	assert.Equal(t, "MBES", config.DBName)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfigurationBadJSON(t *testing.T) {
	filename := writeConfig(t, `{"file_in": `)
	_, err := LoadConfiguration(filename)
	assert.Error(t, err)
}

func TestConfigCalPoints(t *testing.T) {
	filename := writeConfig(t, `{"cal_tof_ns": [5800, 6100], "cal_eke_ev": [20, 10]}`)
	config, err := LoadConfiguration(filename)
	assert.NoError(t, err)

	points, err := configCalPoints(config)
	assert.NoError(t, err)
	assert.Len(t, points, 2)
	assert.Equal(t, 5800.0, points[0].TofNs)
	assert.Equal(t, 20.0, points[0].EkeEv)
	assert.Equal(t, 6100.0, points[1].TofNs)
	assert.Equal(t, 10.0, points[1].EkeEv)
}

func TestConfigCalPointsMismatch(t *testing.T) {
	filename := writeConfig(t, `{"cal_tof_ns": [5800, 6100], "cal_eke_ev": [20]}`)
	config, err := LoadConfiguration(filename)
	assert.NoError(t, err)

	_, err = configCalPoints(config)
	assert.Error(t, err)
}

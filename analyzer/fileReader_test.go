package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	spectra "github.com/mbes-exp/spectra_go/pkg"
)

func makeRunDir(t *testing.T, names ...string) string {
	t.Helper()
	runDir := t.TempDir()
	rawDir := filepath.Join(runDir, "rawdata")
	assert.NoError(t, os.MkdirAll(rawDir, 0755))
	for _, name := range names {
		assert.NoError(t, os.WriteFile(filepath.Join(rawDir, name), []byte("x"), 0644))
	}
	return runDir
}

func TestNewRunReaderSingleFile(t *testing.T) {
	config := spectra.Configuration{FileIn: "Run_028_0000.h5"}

	reader, err := NewRunReader(config)
	assert.NoError(t, err)
	assert.Equal(t, 1, reader.Count())
	assert.Equal(t, "Run_028_0000.h5", reader.Files[0])
}

func TestNewRunReaderNothingConfigured(t *testing.T) {
	_, err := NewRunReader(spectra.Configuration{})
	assert.Error(t, err)
}

func TestRunReaderSortsBySequence(t *testing.T) {
	runDir := makeRunDir(t,
		"Run_028_0010.h5",
		"Run_028_0002.h5",
		"Run_028_0001.h5",
		"notes.txt",
		"beamline_log.h5",
	)

	reader, err := NewRunReader(spectra.Configuration{RunDir: runDir})
	assert.NoError(t, err)
	assert.Equal(t, 3, reader.Count())

	sequences := make([]int, reader.Count())
	for i, file := range reader.Files {
		_, sequence, err := spectra.RunNumberFromPath(file)
		assert.NoError(t, err)
		sequences[i] = sequence
	}
	assert.Equal(t, []int{1, 2, 10}, sequences)
}

func TestRunReaderWindow(t *testing.T) {
	runDir := makeRunDir(t,
		"Run_028_0001.h5",
		"Run_028_0002.h5",
		"Run_028_0003.h5",
		"Run_028_0004.h5",
	)

	tests := []struct {
		name     string
		skip     int
		maxFiles int
		want     []int
	}{
		{"skip first", 1, 1000, []int{2, 3, 4}},
		{"cap at two", 0, 2, []int{1, 2}},
		{"skip and cap", 1, 2, []int{2, 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := spectra.Configuration{RunDir: runDir, Skip: tc.skip, MaxFiles: tc.maxFiles}
			reader, err := NewRunReader(config)
			assert.NoError(t, err)

			sequences := make([]int, reader.Count())
			for i, file := range reader.Files {
				_, sequence, _ := spectra.RunNumberFromPath(file)
				sequences[i] = sequence
			}
			assert.Equal(t, tc.want, sequences)
		})
	}
}

func TestRunReaderSkipBeyondEnd(t *testing.T) {
	runDir := makeRunDir(t, "Run_028_0001.h5")

	_, err := NewRunReader(spectra.Configuration{RunDir: runDir, Skip: 5})
	assert.Error(t, err)
}

func TestRunReaderEmptyDir(t *testing.T) {
	runDir := makeRunDir(t)

	_, err := NewRunReader(spectra.Configuration{RunDir: runDir})
	assert.Error(t, err)
}

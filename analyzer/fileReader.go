package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	spectra "github.com/mbes-exp/spectra_go/pkg"
)

// RunReader holds the raw files of a run in sequence order, after the
// skip and max_files window from the configuration.
type RunReader struct {
	Files []string
}

func NewRunReader(config spectra.Configuration) (*RunReader, error) {
	files, err := listRawFiles(config)
	if err != nil {
		return nil, err
	}
	files = windowFiles(files, config.Skip, config.MaxFiles)
	if len(files) == 0 {
		return nil, fmt.Errorf("no raw files to process")
	}
	return &RunReader{Files: files}, nil
}

func (r *RunReader) Count() int {
	return len(r.Files)
}

// listRawFiles returns the h5 files under <run_dir>/rawdata, or the
// single file_in when no run directory is configured.
func listRawFiles(config spectra.Configuration) ([]string, error) {
	if config.RunDir == "" {
		if config.FileIn == "" {
			return nil, fmt.Errorf("neither run_dir nor file_in configured")
		}
		return []string{config.FileIn}, nil
	}

	dir := filepath.Join(config.RunDir, "rawdata")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".h5") {
			continue
		}
		if _, _, err := spectra.RunNumberFromPath(entry.Name()); err != nil {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping file with unexpected name: %s", entry.Name())
				logger.Info(message, "fileReader")
			}
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	sort.Slice(files, func(i, j int) bool {
		_, seqI, _ := spectra.RunNumberFromPath(files[i])
		_, seqJ, _ := spectra.RunNumberFromPath(files[j])
		return seqI < seqJ
	})
	return files, nil
}

func windowFiles(files []string, skip int, maxFiles int) []string {
	if skip >= len(files) {
		return nil
	}
	if skip > 0 {
		files = files[skip:]
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files
}

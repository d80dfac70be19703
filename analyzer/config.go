package main

import (
	"encoding/json"
	"fmt"
	"os"

	spectra "github.com/mbes-exp/spectra_go/pkg"
)

func LoadConfiguration(filename string) (spectra.Configuration, error) {
	var config spectra.Configuration

	// Set default values
	config.MaxFiles = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.EonChannel = "channel3"
	config.SampleWidthNs = 1.0
	config.TimeZero = 5000
	config.PropConstInit = 1.2e-6
	config.CalTofNs = []float64{5800, 6100}
	config.CalEkeEv = []float64{20, 10}
	config.Retardation = -1
	config.RebinBins = 1000
	config.RebinMaxEv = 50
	config.NoDB = false
	config.Discard = true
	config.Host = "db.mbes-exp.org"
	config.User = "mbesreader"
	config.Passwd = "readonly"
	config.DBName = "MBES"
	config.NumWorkers = 1
	config.WriteData = true
	config.CompressionLevel = 4
	config.MakePlots = true
	config.PlotDir = "plots"
	config.HTMLReport = false
	config.ReportOut = "report.html"

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config spectra.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Run dir: %s", config.RunDir), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Electron channel: %s", config.EonChannel), "config")
	logger.Info(fmt.Sprintf("Sample width: %g ns", config.SampleWidthNs), "config")
	logger.Info(fmt.Sprintf("Time zero: %g ns", config.TimeZero), "config")
	logger.Info(fmt.Sprintf("Prop const init: %g", config.PropConstInit), "config")
	logger.Info(fmt.Sprintf("Cal TOF points: %v ns", config.CalTofNs), "config")
	logger.Info(fmt.Sprintf("Cal eKE points: %v eV", config.CalEkeEv), "config")
	logger.Info(fmt.Sprintf("Retardation: %g V", config.Retardation), "config")
	logger.Info(fmt.Sprintf("Rebin bins: %d", config.RebinBins), "config")
	logger.Info(fmt.Sprintf("Rebin max: %g eV", config.RebinMaxEv), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max files: %d", config.MaxFiles), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Make plots: %t", config.MakePlots), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("HTML report: %t", config.HTMLReport), "config")
	logger.Info(fmt.Sprintf("Report out: %s", config.ReportOut), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
}

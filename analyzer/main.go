package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	spectra "github.com/mbes-exp/spectra_go/pkg"
)

var dbConn *sqlx.DB
var configuration spectra.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	spectra.SetConfiguration(configuration)
	spectra.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	reader, err := NewRunReader(configuration)
	if err != nil {
		message := fmt.Errorf("Error listing raw files: %w", err)
		logger.Error(message.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of files: %d", reader.Count())
		logger.Info(message, "main")
	}

	runNumber, _, err := spectra.RunNumberFromPath(reader.Files[0])
	if err != nil {
		message := fmt.Errorf("Error parsing run number: %w", err)
		logger.Error(message.Error())
		return
	}

	points, err := configCalPoints(configuration)
	if err != nil {
		message := fmt.Errorf("Error in calibration configuration: %w", err)
		logger.Error(message.Error())
		return
	}

	if !configuration.NoDB {
		dbConn, err = spectra.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connecting to database: %w", err)
			logger.Error(message.Error())
		} else {
			defer dbConn.Close()
			if err := spectra.LoadDatabase(dbConn, runNumber); err != nil {
				message := fmt.Errorf("Error loading database, using configured calibration: %w", err)
				logger.Error(message.Error())
			} else if dbPoints := spectra.CalPoints(); len(dbPoints) > 0 {
				points = dbPoints
				if VerbosityLevel > 0 {
					message := fmt.Sprintf("Using %d calibration points from the database", len(points))
					logger.Info(message, "main")
				}
			}
		}
	}

	jobs := make(chan string, configuration.NumWorkers)
	results := make(chan spectra.BunchData, 1000)

	for w := 1; w <= configuration.NumWorkers; w++ {
		go worker(w, jobs, results)
	}

	start := time.Now()
	go sendFilesToWorkers(reader, jobs)

	acc := spectra.NewAccumulator()
	for i := 0; i < reader.Count(); i++ {
		data := <-results
		if data.Error {
			message := fmt.Sprintf("Discarding file %s", data.Filename)
			logger.Error(message)
			if !DiscardErrors {
				logger.Error("Aborting run, discard disabled")
				return
			}
			continue
		}
		if err := acc.AddFile(&data); err != nil {
			message := fmt.Errorf("Error accumulating file %s: %w", data.Filename, err)
			logger.Error(message.Error())
			if !DiscardErrors {
				logger.Error("Aborting run, discard disabled")
				return
			}
		}
	}

	retardation := resolveRetardation(configuration, acc)

	result, err := spectra.ProcessRun(acc, points, retardation)
	if err != nil {
		message := fmt.Errorf("Error processing run %d: %w", runNumber, err)
		logger.Error(message.Error())
		return
	}

	if err := spectra.WriteResultFile(&result, configuration); err != nil {
		message := fmt.Errorf("Error writing output file: %w", err)
		logger.Error(message.Error())
		return
	}
	if configuration.MakePlots {
		if err := spectra.WritePlots(&result, configuration.PlotDir); err != nil {
			message := fmt.Errorf("Error writing plots: %w", err)
			logger.Error(message.Error())
		}
	}
	if configuration.HTMLReport {
		if err := spectra.WriteReport(&result, configuration.ReportOut); err != nil {
			message := fmt.Errorf("Error writing report: %w", err)
			logger.Error(message.Error())
		}
	}

	duration := time.Since(start)
	message := fmt.Sprintf("Run %d done: %d files, %d foreground and %d background shots in %d ms",
		result.RunNumber, result.FilesRead, result.TOF.Counts.Foreground,
		result.TOF.Counts.Background, duration.Milliseconds())
	logger.Info(message, "main")
}

// configCalPoints pairs the configured TOF and eKE reference values.
func configCalPoints(config spectra.Configuration) ([]spectra.CalPoint, error) {
	if len(config.CalTofNs) != len(config.CalEkeEv) {
		return nil, fmt.Errorf("%d TOF points for %d eKE points", len(config.CalTofNs), len(config.CalEkeEv))
	}
	points := make([]spectra.CalPoint, len(config.CalTofNs))
	for i := range points {
		points[i] = spectra.CalPoint{TofNs: config.CalTofNs[i], EkeEv: config.CalEkeEv[i]}
	}
	return points, nil
}

// resolveRetardation picks the KE0 offset for the calibration. An
// explicit non negative value in the configuration wins, then the run
// catalog, then the bottle voltages read from the raw files.
func resolveRetardation(config spectra.Configuration, acc *spectra.Accumulator) float64 {
	if config.Retardation >= 0 {
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Using configured retardation: %g V", config.Retardation)
			logger.Info(message, "main")
		}
		return config.Retardation
	}
	if value, found := spectra.DBRetardation(); found {
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Using retardation from the run catalog: %g V", value)
			logger.Info(message, "main")
		}
		return value
	}
	value := acc.Voltages().Retardation()
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Using retardation from the bottle voltages: %g V", value)
		logger.Info(message, "main")
	}
	return value
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	spectra "github.com/mbes-exp/spectra_go/pkg"
)

var logger Logger

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
	filename := flag.String("file", "", "Raw file to inspect")
	runDir := flag.String("run", "", "Run directory, inspects the first raw file")
	channel := flag.String("channel", "channel3", "Digitizer channel")
	flag.Parse()

	spectra.SetLogger(logger)
	spectra.SetConfiguration(spectra.Configuration{EonChannel: *channel})

	path := *filename
	if path == "" && *runDir != "" {
		first, err := firstRawFile(*runDir)
		if err != nil {
			message := fmt.Errorf("Error listing run directory: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		path = first
	}
	if path == "" {
		fmt.Println("Usage: runinfo -file <Run_XXX_YYYY.h5> | -run <run dir> [-channel channelN]")
		os.Exit(1)
	}

	data, err := spectra.ReadRawFile(path)
	if err != nil {
		message := fmt.Errorf("Error reading raw file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	printInfo(os.Stdout, &data)
}

func firstRawFile(runDir string) (string, error) {
	dir := filepath.Join(runDir, "rawdata")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, _, err := spectra.RunNumberFromPath(entry.Name()); err != nil {
			continue
		}
		files = append(files, entry.Name())
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no raw files under %s", dir)
	}

	sort.Slice(files, func(i, j int) bool {
		_, seqI, _ := spectra.RunNumberFromPath(files[i])
		_, seqJ, _ := spectra.RunNumberFromPath(files[j])
		return seqI < seqJ
	})
	return filepath.Join(dir, files[0]), nil
}

func printInfo(out *os.File, data *spectra.BunchData) {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)

	fmt.Fprintf(w, "file\t%s\n", data.Filename)
	fmt.Fprintf(w, "run\t%d\n", data.RunNumber)
	fmt.Fprintf(w, "sequence\t%d\n", data.Sequence)
	fmt.Fprintf(w, "shots\t%d\n", data.NumShots())
	fmt.Fprintf(w, "samples per shot\t%d\n", data.NumSamples())
	if len(data.Bunches) > 0 {
		fmt.Fprintf(w, "bunch range\t%d - %d\n", data.Bunches[0], data.Bunches[len(data.Bunches)-1])
	}
	fmt.Fprintf(w, "background period\t%d\n", data.Period)

	fore, back, err := spectra.SplitShots(data)
	if err != nil {
		fmt.Fprintf(w, "shot gating\t%s\n", err.Error())
	} else {
		fmt.Fprintf(w, "foreground shots\t%d\n", len(fore))
		fmt.Fprintf(w, "background shots\t%d\n", len(back))
	}

	voltages := data.Voltages
	fmt.Fprintf(w, "voltage ch1\t%g V (enabled %g)\n", voltages.Voltage1, voltages.On1)
	fmt.Fprintf(w, "voltage ch2\t%g V (enabled %g)\n", voltages.Voltage2, voltages.On2)
	fmt.Fprintf(w, "voltage ch3\t%g V (enabled %g)\n", voltages.Voltage3, voltages.On3)
	fmt.Fprintf(w, "retardation\t%g V\n", voltages.Retardation())

	w.Flush()
}

package main

import (
	"fmt"

	spectra "github.com/mbes-exp/spectra_go/pkg"
)

func worker(id int, jobs <-chan string, results chan<- spectra.BunchData) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Worker %d recovered from panic: %v\n", id, r)
			results <- spectra.BunchData{Error: true}
		}
	}()

	for filename := range jobs {
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Worker %d reading file %s", id, filename)
			logger.Info(message, "worker")
		}
		results <- readFile(filename)
	}
}

func readFile(filename string) (data spectra.BunchData) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("recovered from panic reading %s: %v", filename, r)
			logger.Error(errMessage.Error())
			data = spectra.BunchData{Filename: filename, Error: true}
		}
	}()

	data, err := spectra.ReadRawFile(filename)
	if err != nil {
		errMessage := fmt.Errorf("error reading file %s: %w", filename, err)
		logger.Error(errMessage.Error())
		data.Error = true
	}
	return data
}

func sendFilesToWorkers(reader *RunReader, jobs chan<- string) {
	for _, filename := range reader.Files {
		jobs <- filename
	}
	close(jobs)
}

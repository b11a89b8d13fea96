package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"campuspaws/internal/animals"
	"campuspaws/internal/database"
)

// Expected header: name,species,age,breed,area,latitude,longitude,status
var expectedHeader = []string{"name", "species", "age", "breed", "area", "latitude", "longitude", "status"}

// Importer bulk-loads animals from CSV. Each row stands alone: a bad row
// is reported and skipped, never aborting the rest of the file.
type Importer struct {
	logger  *slog.Logger
	animals *animals.Manager
}

func New(logger *slog.Logger, animalManager *animals.Manager) *Importer {
	return &Importer{logger: logger, animals: animalManager}
}

// RowError ties a failure to its 1-based line number in the file.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type Summary struct {
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
}

func (i *Importer) ImportAnimals(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("importer: failed to read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return Summary{}, err
	}

	var summary Summary
	line := 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		input, err := parseRow(row)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		if _, err := i.animals.Create(ctx, input); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		summary.Imported++
	}

	i.logger.Info("animal import finished", "imported", summary.Imported, "failed", summary.Failed)
	return summary, nil
}

func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("importer: expected %d columns, got %d", len(expectedHeader), len(header))
	}
	for idx, name := range expectedHeader {
		if strings.TrimSpace(strings.ToLower(header[idx])) != name {
			return fmt.Errorf("importer: expected column %q at position %d, got %q", name, idx+1, header[idx])
		}
	}
	return nil
}

func parseRow(row []string) (animals.CreateInput, error) {
	if len(row) != len(expectedHeader) {
		return animals.CreateInput{}, fmt.Errorf("expected %d fields, got %d", len(expectedHeader), len(row))
	}

	age, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return animals.CreateInput{}, fmt.Errorf("invalid age %q", row[2])
	}
	latitude, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
	if err != nil {
		return animals.CreateInput{}, fmt.Errorf("invalid latitude %q", row[5])
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
	if err != nil {
		return animals.CreateInput{}, fmt.Errorf("invalid longitude %q", row[6])
	}

	return animals.CreateInput{
		Name:      strings.TrimSpace(row[0]),
		Species:   database.Species(strings.TrimSpace(strings.ToLower(row[1]))),
		Age:       age,
		Breed:     strings.TrimSpace(row[3]),
		Area:      strings.TrimSpace(row[4]),
		Latitude:  latitude,
		Longitude: longitude,
		Status:    database.HealthStatus(strings.TrimSpace(strings.ToLower(row[7]))),
	}, nil
}

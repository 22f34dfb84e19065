// Package catalog loads the static reference datasets: the destination
// catalog with its departure cities and the school holiday calendar.
//
// Both ship embedded in the binary as YAML. A file path replaces the embedded
// copy, which allows correcting the data without a rebuild.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	destinationsFile = "data/destinations.yaml"
	holidaysFile     = "data/holidays-hessen.yaml"
)

// ErrEmptyDataset is returned when a dataset contains no entries.
var ErrEmptyDataset = errors.New("catalog: dataset is empty")

// LoadDestinations reads the destination dataset from path, or the embedded
// copy when path is empty.
func LoadDestinations(path string) (destinations.Dataset, error) {
	data, err := read(path, destinationsFile)
	if err != nil {
		return destinations.Dataset{}, err
	}
	return ParseDestinations(data)
}

// ParseDestinations decodes and validates a YAML destination dataset.
func ParseDestinations(data []byte) (destinations.Dataset, error) {
	var dataset destinations.Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return destinations.Dataset{}, fmt.Errorf("catalog: decode destinations: %w", err)
	}
	if len(dataset.Destinations) == 0 {
		return destinations.Dataset{}, fmt.Errorf("%w: no destinations", ErrEmptyDataset)
	}
	if err := dataset.Validate(); err != nil {
		return destinations.Dataset{}, fmt.Errorf("catalog: %w", err)
	}
	return dataset, nil
}

// LoadHolidays reads the holiday calendar from path, or the embedded copy when
// path is empty.
func LoadHolidays(path string) (holidays.Catalog, error) {
	data, err := read(path, holidaysFile)
	if err != nil {
		return holidays.Catalog{}, err
	}
	return ParseHolidays(data)
}

// ParseHolidays decodes and normalizes a YAML holiday calendar.
func ParseHolidays(data []byte) (holidays.Catalog, error) {
	var c holidays.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return holidays.Catalog{}, fmt.Errorf("catalog: decode holidays: %w", err)
	}
	if len(c.Periods) == 0 {
		return holidays.Catalog{}, fmt.Errorf("%w: no holiday periods", ErrEmptyDataset)
	}
	normalized, err := c.Normalize()
	if err != nil {
		return holidays.Catalog{}, fmt.Errorf("catalog: %w", err)
	}
	return normalized, nil
}

func read(path, fallback string) ([]byte, error) {
	if path == "" {
		data, err := embedded.ReadFile(fallback)
		if err != nil {
			return nil, fmt.Errorf("catalog: read embedded %s: %w", fallback, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return data, nil
}

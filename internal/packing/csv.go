package packing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteCSV saves the packing as <name>Packing.csv with an x,y,z,d
// header, the exchange format the tessellation stage reads.
func WriteCSV(path string, spheres []Sphere) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("packing: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y", "z", "d"}); err != nil {
		return fmt.Errorf("packing: write %s: %w", path, err)
	}
	for _, s := range spheres {
		row := []string{
			strconv.FormatFloat(s.X, 'g', -1, 64),
			strconv.FormatFloat(s.Y, 'g', -1, 64),
			strconv.FormatFloat(s.Z, 'g', -1, 64),
			strconv.FormatFloat(s.D, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("packing: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("packing: write %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV loads a packing written by WriteCSV.
func ReadCSV(path string) ([]Sphere, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("packing: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("packing: parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("packing: %s has no sphere rows", path)
	}

	spheres := make([]Sphere, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		var vals [4]float64
		for i, field := range row {
			v, convErr := strconv.ParseFloat(field, 64)
			if convErr != nil {
				return nil, fmt.Errorf("packing: malformed value %q in %s", field, path)
			}
			vals[i] = v
		}
		spheres = append(spheres, Sphere{X: vals[0], Y: vals[1], Z: vals[2], D: vals[3]})
	}
	return spheres, nil
}

// Package vtkconv converts legacy-format VTK structured points files
// between binary and ASCII encodings. The voxelizer emits binary VTK,
// while the strut reconstruction tool and downstream consumers expect
// ASCII with physical origin and spacing, so the conversion also
// rewrites those header fields.
package vtkconv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrNotStructuredPoints indicates the dataset is not a voxel grid.
	ErrNotStructuredPoints = errors.New("vtkconv: dataset is not structured points")
	// ErrNotBinary indicates the input file is not binary encoded.
	ErrNotBinary = errors.New("vtkconv: input file is not binary encoded")
	// ErrUnsupportedScalars indicates a scalar type other than unsigned_char.
	ErrUnsupportedScalars = errors.New("vtkconv: unsupported scalar type")
)

// header holds the parsed legacy VTK header fields
type header struct {
	title      string
	dims       [3]int
	dataKind   string // POINT_DATA or CELL_DATA
	dataCount  int
	scalarName string
	scalarType string
	dataStart  int // byte offset of the first data byte
}

// Vec3 is a coordinate triple used for origin and spacing
type Vec3 [3]float64

// BinToASCII converts a binary structured-points VTK file to ASCII,
// setting the origin and spacing header fields to the given values.
// Input and output paths may be identical; the output is staged in
// memory before writing.
func BinToASCII(fin, fout string, origin, spacing Vec3) error {
	data, err := os.ReadFile(fin)
	if err != nil {
		return fmt.Errorf("vtkconv: read %s: %w", fin, err)
	}

	hdr, err := parseHeader(data)
	if err != nil {
		return err
	}
	if hdr.scalarType != "unsigned_char" && hdr.scalarType != "char" {
		return fmt.Errorf("%w: %s", ErrUnsupportedScalars, hdr.scalarType)
	}

	values := data[hdr.dataStart:]
	if len(values) < hdr.dataCount {
		return fmt.Errorf("vtkconv: %s: expected %d data bytes, have %d",
			fin, hdr.dataCount, len(values))
	}
	values = values[:hdr.dataCount]

	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, hdr.title)
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET STRUCTURED_POINTS")
	fmt.Fprintf(w, "DIMENSIONS %d %d %d\n", hdr.dims[0], hdr.dims[1], hdr.dims[2])
	fmt.Fprintf(w, "ORIGIN %g %g %g\n", origin[0], origin[1], origin[2])
	fmt.Fprintf(w, "SPACING %g %g %g\n", spacing[0], spacing[1], spacing[2])
	fmt.Fprintf(w, "%s %d\n", hdr.dataKind, hdr.dataCount)
	fmt.Fprintf(w, "SCALARS %s %s\n", hdr.scalarName, hdr.scalarType)
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	writeValues(w, values)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("vtkconv: %w", err)
	}

	if err := os.WriteFile(fout, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("vtkconv: write %s: %w", fout, err)
	}
	return nil
}

// writeValues emits one value per voxel, wrapped to keep lines short
func writeValues(w *bufio.Writer, values []byte) {
	const perLine = 20
	for i, v := range values {
		if i > 0 {
			if i%perLine == 0 {
				w.WriteByte('\n')
			} else {
				w.WriteByte(' ')
			}
		}
		w.WriteString(strconv.Itoa(int(v)))
	}
	w.WriteByte('\n')
}

// parseHeader scans the textual header that precedes the binary data
// block. The header ends at the newline after the LOOKUP_TABLE line.
func parseHeader(data []byte) (*header, error) {
	hdr := &header{}
	sawBinary := false
	sawDataset := false

	pos := 0
	for pos < len(data) {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			break
		}
		line := strings.TrimSpace(string(data[pos : pos+nl]))
		pos += nl + 1

		fields := strings.Fields(line)
		switch {
		case strings.HasPrefix(line, "# vtk DataFile"):
			// version line, ignored
		case hdr.title == "" && len(fields) > 0 && !isKeyword(fields[0]):
			hdr.title = line
		case line == "BINARY":
			sawBinary = true
		case line == "ASCII":
			return nil, ErrNotBinary
		case len(fields) == 2 && fields[0] == "DATASET":
			if fields[1] != "STRUCTURED_POINTS" {
				return nil, fmt.Errorf("%w: %s", ErrNotStructuredPoints, fields[1])
			}
			sawDataset = true
		case len(fields) == 4 && fields[0] == "DIMENSIONS":
			for i := 0; i < 3; i++ {
				v, err := strconv.Atoi(fields[i+1])
				if err != nil {
					return nil, fmt.Errorf("vtkconv: bad DIMENSIONS line %q", line)
				}
				hdr.dims[i] = v
			}
		case len(fields) == 2 && (fields[0] == "POINT_DATA" || fields[0] == "CELL_DATA"):
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("vtkconv: bad %s line %q", fields[0], line)
			}
			hdr.dataKind = fields[0]
			hdr.dataCount = v
		case len(fields) >= 3 && fields[0] == "SCALARS":
			hdr.scalarName = fields[1]
			hdr.scalarType = fields[2]
		case len(fields) >= 1 && fields[0] == "LOOKUP_TABLE":
			hdr.dataStart = pos
			if !sawBinary {
				return nil, ErrNotBinary
			}
			if !sawDataset {
				return nil, ErrNotStructuredPoints
			}
			if hdr.dataCount == 0 {
				return nil, fmt.Errorf("vtkconv: missing POINT_DATA or CELL_DATA header")
			}
			return hdr, nil
		}
	}
	return nil, fmt.Errorf("vtkconv: truncated header, no LOOKUP_TABLE line")
}

func isKeyword(word string) bool {
	switch word {
	case "BINARY", "ASCII", "DATASET", "DIMENSIONS", "ORIGIN", "SPACING",
		"POINT_DATA", "CELL_DATA", "SCALARS", "LOOKUP_TABLE":
		return true
	}
	return false
}

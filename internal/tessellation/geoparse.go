package tessellation

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Vertex is a tessellation vertex position.
type Vertex struct {
	X, Y, Z float64
}

// Edge joins two vertices by their geo entity index.
type Edge struct {
	A, B int
}

// Geometry holds the subset of a gmsh .geo file the edge export
// needs: vertex positions and the edges connecting them.
type Geometry struct {
	Points map[int]Vertex
	Lines  []Edge
}

var (
	pointRe = regexp.MustCompile(`Point\s?\((\d+)\)\s?=\s?\{(.*?)\};`)
	lineRe  = regexp.MustCompile(`Line\s?\((\d+)\)\s?=\s?\{(\d+),\s?(\d+)\};`)
)

// ParseGeoFile reads a gmsh .geo file written by Neper and extracts
// its Point and Line entities.
func ParseGeoFile(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tessellation: read %s: %w", path, err)
	}
	return ParseGeo(string(data))
}

// ParseGeo extracts Point and Line entities from .geo source text.
func ParseGeo(text string) (*Geometry, error) {
	geo := &Geometry{Points: make(map[int]Vertex)}

	for _, m := range pointRe.FindAllStringSubmatch(text, -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("tessellation: malformed point index %q", m[1])
		}
		fields := strings.Split(m[2], ",")
		if len(fields) < 3 {
			return nil, fmt.Errorf("tessellation: point %d has %d coordinates", idx, len(fields))
		}
		var coords [3]float64
		for i := 0; i < 3; i++ {
			v, convErr := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if convErr != nil {
				return nil, fmt.Errorf("tessellation: malformed coordinate %q in point %d", fields[i], idx)
			}
			coords[i] = v
		}
		geo.Points[idx] = Vertex{X: coords[0], Y: coords[1], Z: coords[2]}
	}

	for _, m := range lineRe.FindAllStringSubmatch(text, -1) {
		a, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("tessellation: malformed line endpoint %q", m[2])
		}
		b, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("tessellation: malformed line endpoint %q", m[3])
		}
		if _, ok := geo.Points[a]; !ok {
			return nil, fmt.Errorf("tessellation: line references unknown point %d", a)
		}
		if _, ok := geo.Points[b]; !ok {
			return nil, fmt.Errorf("tessellation: line references unknown point %d", b)
		}
		geo.Lines = append(geo.Lines, Edge{A: a, B: b})
	}

	if len(geo.Points) == 0 || len(geo.Lines) == 0 {
		return nil, fmt.Errorf("tessellation: geometry has no points or lines")
	}
	return geo, nil
}

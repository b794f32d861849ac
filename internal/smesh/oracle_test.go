package smesh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foamgen/foamgen/internal/solver"
	"github.com/foamgen/foamgen/internal/toolexec"
)

func TestParseVoxelCount(t *testing.T) {
	out := []byte(strings.Join([]string{
		"Reading binary STL file...",
		"counted 24662 set voxels",
		"counted 60000 voxels out of 1000000",
		"done",
	}, "\n"))

	solid, total, err := parseVoxelCount(out)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), solid)
	assert.Equal(t, int64(1000000), total)
}

func TestParseVoxelCount_NoReport(t *testing.T) {
	_, _, err := parseVoxelCount([]byte("Reading binary STL file...\ndone\n"))
	assert.Error(t, err)
}

func TestWriteInputDeck(t *testing.T) {
	dir := t.TempDir()
	oracle := &FoamreconstrOracle{
		Name:               "Foam",
		Dir:                dir,
		TargetPorosity:     0.94,
		TargetStrutContent: 0.6,
	}
	require.NoError(t, oracle.writeInputDeck(3.5))

	data, err := os.ReadFile(filepath.Join(dir, "foamreconstr.in"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 26)

	assert.Equal(t, "3.500000", lines[6])
	// threshold = 1 - strut*(1-porosity) = 1 - 0.6*0.06
	assert.Equal(t, "0.964000", lines[7])
	assert.Equal(t, "FoamSMesh", lines[20])
	assert.Equal(t, "FoamSMesh.vtk", lines[21])
	assert.Equal(t, "FoamTessellation.gnu", lines[22])
	assert.Equal(t, "descriptors.txt", lines[24])
	assert.Equal(t, "parameters.txt", lines[25])
}

func TestReadDescriptors(t *testing.T) {
	dir := t.TempDir()
	oracle := &FoamreconstrOracle{Name: "Foam", Dir: dir}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "descriptors.txt"),
		[]byte("0.912\n0.587\n"), 0o644))

	porosity, strutContent, err := oracle.readDescriptors()
	require.NoError(t, err)
	assert.InDelta(t, 0.912, porosity, 1e-12)
	assert.InDelta(t, 0.587, strutContent, 1e-12)
}

func TestReadDescriptors_Malformed(t *testing.T) {
	dir := t.TempDir()
	oracle := &FoamreconstrOracle{Name: "Foam", Dir: dir}

	_, _, err := oracle.readDescriptors()
	assert.Error(t, err) // missing file

	require.NoError(t, os.WriteFile(filepath.Join(dir, "descriptors.txt"),
		[]byte("0.912\nnot-a-number\n"), 0o644))
	_, _, err = oracle.readDescriptors()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "descriptors.txt"),
		[]byte("0.912\n"), 0o644))
	_, _, err = oracle.readDescriptors()
	assert.Error(t, err)
}

func TestEdgeSizeGuess(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, defaultEdgeSize, EdgeSizeGuess(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "parameters.txt"),
		[]byte("3.25\n"), 0o644))
	assert.Equal(t, 3.25, EdgeSizeGuess(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "parameters.txt"),
		[]byte("-1\n"), 0o644))
	assert.Equal(t, defaultEdgeSize, EdgeSizeGuess(dir))
}

func TestBinvoxOracle_MissingSurface(t *testing.T) {
	dir := t.TempDir()
	oracle := &BinvoxOracle{
		Name:   "Foam",
		Dir:    dir,
		Runner: toolexec.NewRunner(dir, 0),
	}
	_, err := oracle.Voxelize(context.Background(), 100)
	assert.ErrorIs(t, err, ErrMissingSurface)
}

func TestBinvoxOracle_ResolutionRange(t *testing.T) {
	dir := t.TempDir()
	oracle := &BinvoxOracle{
		Name:   "Foam",
		Dir:    dir,
		Runner: toolexec.NewRunner(dir, 0),
	}
	_, err := oracle.Voxelize(context.Background(), 0.3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingSurface)
}

// A missing surface surfaces through the porosity search as an oracle
// failure, so the stage fails on the first probe instead of looping.
func TestSolveDomainSize_MissingSurface(t *testing.T) {
	dir := t.TempDir()
	oracle := &BinvoxOracle{
		Name:   "Foam",
		Dir:    dir,
		Runner: toolexec.NewRunner(dir, 0),
	}
	_, err := SolveDomainSize(context.Background(), oracle, DomainOptions{
		TargetPorosity: 0.94,
		Guess:          100,
		Step:           20,
		Tolerance:      1e-2,
		MaxIterations:  10,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSurface)

	var oerr *solver.OracleError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, 100.0, oerr.Input)
}

package umesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteMeshConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FoamUMesh.geo")

	if err := writeMeshConfig(path, "FoamMorphology.geo", 0.025, 0.1, 0.1); err != nil {
		t.Fatalf("writeMeshConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	wanted := []string{
		`Merge "FoamMorphology.geo";`,
		"psize = 0.025;",
		"esize = 0.1;",
		"csize = 0.1;",
		"Mesh.CharacteristicLengthMax = 0.1;",
		"Field[2].LcMin = psize;",
		"Field[4].LcMin = esize;",
		"Background Field = 5;",
		"Mesh.CharacteristicLengthExtendFromBoundary = 0;",
	}
	for _, want := range wanted {
		if !strings.Contains(text, want) {
			t.Errorf("mesh config is missing %q", want)
		}
	}

	if !strings.HasPrefix(text, `Merge "FoamMorphology.geo";`) {
		t.Error("mesh config must merge the morphology first")
	}
}

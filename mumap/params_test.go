package mumap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.SX != 344 || p.SY != 344 || p.SZ != 127 {
		t.Fatalf("got %dx%dx%d (!= 344x344x127)", p.SX, p.SY, p.SZ)
	}
	if p.PX != 2.08626 || p.PY != 2.08626 || p.PZ != 2.03125 {
		t.Fatalf("got %vx%vx%v (!= mMR voxel size)", p.PX, p.PY, p.PZ)
	}
	if p.FOV != 700.0 {
		t.Fatalf("got %v (!= 700.0)", p.FOV)
	}
}

func TestLoadParamsMissingFile(t *testing.T) {
	p, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if p != DefaultParams() {
		t.Fatalf("got %+v (!= defaults)", p)
	}
}

func TestLoadParamsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	doc := "px: 1.0\npy: 1.0\npz: 1.0\nsx: 128\nsy: 128\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadParams(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.PX != 1.0 || p.SX != 128 {
		t.Fatalf("got px=%v sx=%d (!= 1.0, 128)", p.PX, p.SX)
	}

	// keys absent from the file keep their defaults
	if p.SZ != 127 || p.FOV != 700.0 {
		t.Fatalf("got sz=%d fov=%v (!= 127, 700.0)", p.SZ, p.FOV)
	}
}

func TestLoadParamsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("sx: [not an int"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadParams(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

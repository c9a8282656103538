package mumap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/*
===============================================================================
    Scanner parameters
===============================================================================
*/

// Params describes the mu-map grid of the target PET scanner.
// `PX/PY/PZ` are voxel spacings in mm, `SX/SY/SZ` the matrix size.
type Params struct {
	FOV float64 `yaml:"fov"`
	PX  float64 `yaml:"px"`
	PY  float64 `yaml:"py"`
	PZ  float64 `yaml:"pz"`
	SX  int     `yaml:"sx"`
	SY  int     `yaml:"sy"`
	SZ  int     `yaml:"sz"`
}

// DefaultParams returns the native mu-map geometry of the Biograph mMR
func DefaultParams() Params {
	return Params{
		FOV: 700.0,
		PX:  2.08626,
		PY:  2.08626,
		PZ:  2.03125,
		SX:  344,
		SY:  344,
		SZ:  127,
	}
}

// LoadParams loads scanner parameters from a YAML file.
// If the file doesn't exist, it returns the default parameters.
func LoadParams(path string) (Params, error) {
	params := DefaultParams()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return params, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("error reading params file: %w", err)
	}

	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("error parsing params file: %w", err)
	}

	return params, nil
}

// Package mumap converts Siemens mMR MRAC image series into PET mu-maps
package mumap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

/*
===============================================================================
    Conversion pipeline
===============================================================================
*/

// muScale converts scanner MRAC voxel values into mu-values in 1/cm
const muScale = 10000.0

// The head protocol trims these slice margins from the z axis after
// reslicing onto the scanner grid.
const (
	zCropLower = 11
	zCropUpper = 10
)

// Converter reads an MRAC DICOM series and turns it into a mu-map on
// request. The zero value is not usable, construct with `NewConverter`.
type Converter struct {
	src    string
	params Params
	orient Orientation
	head   bool
	log    *zap.SugaredLogger

	input     *Volume
	mu        *Volume
	header    *Header
	studyDate string
	studyTime string
}

// NewConverter loads the MRAC series under the directory `src` and prepares
// a conversion into the orientation named by `orientCode`
func NewConverter(src, orientCode string, params Params, log *zap.SugaredLogger) (*Converter, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	orient, err := ParseOrientation(orientCode, log)
	if err != nil {
		return nil, err
	}
	log.Infof("Using orientation code: %s", orient.Code)

	info, err := os.Stat(src)
	if err != nil {
		log.Errorf("Input path %s does not exist!", src)
		return nil, err
	}
	if !info.IsDir() {
		log.Errorf("%s does not appear to be a directory!", src)
		return nil, fmt.Errorf("NewConverter(%s): not a directory", src)
	}

	c := &Converter{src: src, params: params, orient: orient, log: log}
	if err := c.read(); err != nil {
		return nil, err
	}
	return c, nil
}

// read assembles the series and reorients it for processing
func (c *Converter) read() error {
	series, err := ReadSeries(c.src, c.log)
	if err != nil {
		return err
	}
	c.studyDate = series.StudyDate
	c.studyTime = series.StudyTime

	vol, err := series.Volume.Reorient(c.orient)
	if err != nil {
		c.log.Errorf("Unable to get image from DICOM series")
		return err
	}
	c.input = vol
	c.header = NewHeader(c.log)
	c.log.Debugf("Reading complete")
	return nil
}

// SetHead selects the head protocol, which reslices onto the scanner grid
// before scaling
func (c *Converter) SetHead(head bool) {
	c.head = head
}

// Update runs the conversion and fills the Interfile header
func (c *Converter) Update() error {
	if c.head {
		c.log.Infof("Performing requested mMR head reslicing.")
		return c.scaleAndResliceHead()
	}
	return c.scale()
}

// scale converts voxel values to mu without touching the grid
func (c *Converter) scale() error {
	mu := c.input.Clone()
	mu.Divide(muScale)
	c.mu = mu
	c.fillHeader()
	return nil
}

// scaleAndResliceHead interpolates onto the scanner voxel grid, scales to
// mu, pads x and y out to the scanner matrix and trims the z margins
func (c *Converter) scaleAndResliceHead() error {
	spacing := [3]float64{c.params.PX, c.params.PY, c.params.PZ}
	outSize := c.input.ResampledSize(spacing)
	if outSize[0]%2 == 1 || outSize[1]%2 == 1 {
		c.log.Errorf("Input x or y size is odd. Unsure how to resample!")
		return fmt.Errorf("scaleAndResliceHead: %dx%d resample grid is odd", outSize[0], outSize[1])
	}

	resliced := c.input.Resample(spacing)
	resliced.Divide(muScale)
	padded := resliced.PadXY(c.params.SX, c.params.SY)

	mu, err := padded.CropZ(zCropLower, zCropUpper)
	if err != nil {
		c.log.Errorf("Unable to scale to mu!")
		return err
	}
	c.mu = mu
	c.fillHeader()
	return nil
}

// fillHeader stamps the geometry, value range and study stamps of the
// finished mu-map into the Interfile header
func (c *Converter) fillHeader() {
	c.header.SetInt("NX", c.mu.Size[0])
	c.header.SetInt("NY", c.mu.Size[1])
	c.header.SetInt("NZ", c.mu.Size[2])

	c.header.SetFloat("SX", float32(c.mu.Spacing[0]))
	c.header.SetFloat("SY", float32(c.mu.Spacing[1]))
	c.header.SetFloat("SZ", float32(c.mu.Spacing[2]))

	lo, hi := c.mu.MinMax()
	c.header.SetFloat("MAXVAL", hi)
	c.header.SetFloat("MINVAL", lo)

	if date, ok := formatStudyDate(c.studyDate); ok {
		c.log.Infof("Study date: %s", c.studyDate)
		c.header.Set("STUDYDATE", date)
	}
	if t, ok := formatStudyTime(c.studyTime); ok {
		c.log.Infof("Study time: %s", c.studyTime)
		c.header.Set("STUDYTIME", t)
	}
}

// Output returns the converted mu-map, nil before `Update` has run
func (c *Converter) Output() *Volume {
	return c.mu
}

// InterfileHeader returns the current header text
func (c *Converter) InterfileHeader() string {
	return c.header.String()
}

// Write stores the mu-map at `dst`. A `.hv` destination produces an
// Interfile header over a MetaImage raster pair, any other name writes the
// raster pair alone.
func (c *Converter) Write(dst string) error {
	if c.mu == nil {
		return fmt.Errorf("Write(%s): no mu-map, run Update first", dst)
	}
	if filepath.Ext(dst) == ".hv" {
		return c.writeInterfile(dst)
	}
	if err := WriteMetaImage(c.mu, dst); err != nil {
		c.log.Errorf("Could not write output file!")
		return err
	}
	return nil
}

// writeInterfile writes the raster pair next to `dst` and points the
// Interfile header at it
func (c *Converter) writeInterfile(dst string) error {
	stem := strings.TrimSuffix(dst, filepath.Ext(dst))
	if err := WriteMetaImage(c.mu, stem+".mhd"); err != nil {
		c.log.Errorf("Could not write output data!")
		return err
	}

	c.header.Set("DATAFILE", filepath.Base(stem)+".raw")
	if err := os.WriteFile(dst, []byte(c.header.String()), 0644); err != nil {
		c.log.Errorf("Could not write Interfile header to %s", dst)
		return err
	}
	c.log.Infof("Wrote Interfile header to %s", dst)
	return nil
}

// formatStudyDate rewrites a DICOM `YYYYMMDD` date as `YYYY:MM:DD`
func formatStudyDate(raw string) (string, bool) {
	if len(raw) < 8 {
		return "", false
	}
	return raw[0:4] + ":" + raw[4:6] + ":" + raw[6:8], true
}

// formatStudyTime rewrites a DICOM `HHMMSS.ffffff` time as `HH:MM:SS`
func formatStudyTime(raw string) (string, bool) {
	if len(raw) < 6 {
		return "", false
	}
	return raw[0:2] + ":" + raw[2:4] + ":" + raw[4:6], true
}

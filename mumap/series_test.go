package mumap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UCL/pet-rd-tools/gendcm"
)

// writeAxialSlice stores one 2x2 axial slice fixture at height `z`
func writeAxialSlice(t *testing.T, path, seriesUID string, z float64, pixels []uint16) {
	t.Helper()
	err := gendcm.WriteMRSlice(path, gendcm.MRSliceSpec{
		SeriesUID:   seriesUID,
		StudyDate:   "20180529",
		SeriesDate:  "20180529",
		StudyTime:   "143055",
		Rows:        2,
		Cols:        2,
		Spacing:     [2]float64{1.5, 1.25},
		Position:    [3]float64{-10, -20, z},
		Orientation: [6]float64{1, 0, 0, 0, 1, 0},
		Slope:       1,
		Intercept:   0,
		Pixels:      pixels,
	})
	assert.NoError(t, err)
}

func TestReadSeriesStacksSlices(t *testing.T) {
	// ensures that slices assemble in spatial order regardless of file name
	t.Parallel()

	dir := t.TempDir()
	writeAxialSlice(t, filepath.Join(dir, "a.dcm"), "1.2.3.1", 4, []uint16{5, 6, 7, 8})
	writeAxialSlice(t, filepath.Join(dir, "b.dcm"), "1.2.3.1", 2, []uint16{1, 2, 3, 4})

	series, err := ReadSeries(dir, nil)
	assert.NoError(t, err)
	assert.Equal(t, "20180529", series.StudyDate)
	assert.Equal(t, "143055", series.StudyTime)

	v := series.Volume
	assert.Equal(t, [3]int{2, 2, 2}, v.Size)

	// pixel spacing is row then column, the volume stores x then y
	assert.Equal(t, [3]float64{1.25, 1.5, 2}, v.Spacing)
	assert.Equal(t, [3]float64{-10, -20, 2}, v.Origin)

	// the lower slice comes first even though its file name sorts second
	assert.Equal(t, float32(1), v.At(0, 0, 0))
	assert.Equal(t, float32(2), v.At(1, 0, 0))
	assert.Equal(t, float32(3), v.At(0, 1, 0))
	assert.Equal(t, float32(4), v.At(1, 1, 0))
	assert.Equal(t, float32(5), v.At(0, 0, 1))
}

func TestReadSeriesPicksFirstSeries(t *testing.T) {
	// ensures that only the series of the first file on disk is assembled
	t.Parallel()

	dir := t.TempDir()
	writeAxialSlice(t, filepath.Join(dir, "a0.dcm"), "1.2.3.1", 0, []uint16{1, 1, 1, 1})
	writeAxialSlice(t, filepath.Join(dir, "a1.dcm"), "1.2.3.1", 1, []uint16{2, 2, 2, 2})
	writeAxialSlice(t, filepath.Join(dir, "z0.dcm"), "1.2.3.2", 0, []uint16{9, 9, 9, 9})

	series, err := ReadSeries(dir, nil)
	assert.NoError(t, err)
	assert.Equal(t, [3]int{2, 2, 2}, series.Volume.Size)
	assert.Equal(t, float32(1), series.Volume.At(0, 0, 0))
	assert.Equal(t, float32(2), series.Volume.At(0, 0, 1))
}

func TestReadSeriesAppliesRescale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := gendcm.WriteMRSlice(filepath.Join(dir, "s.dcm"), gendcm.MRSliceSpec{
		SeriesUID:   "1.2.3.1",
		StudyDate:   "20180529",
		SeriesDate:  "20180529",
		StudyTime:   "143055",
		Rows:        2,
		Cols:        2,
		Spacing:     [2]float64{1, 1},
		Orientation: [6]float64{1, 0, 0, 0, 1, 0},
		Slope:       2,
		Intercept:   -1,
		Pixels:      []uint16{0, 1, 2, 3},
	})
	assert.NoError(t, err)

	series, err := ReadSeries(dir, nil)
	assert.NoError(t, err)

	v := series.Volume
	assert.Equal(t, float32(-1), v.At(0, 0, 0))
	assert.Equal(t, float32(1), v.At(1, 0, 0))
	assert.Equal(t, float32(5), v.At(1, 1, 0))

	// a lone slice gets a unit z step
	assert.Equal(t, 1.0, v.Spacing[2])
}

func TestReadSeriesSkipsJunkFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a slice"), 0644))
	writeAxialSlice(t, filepath.Join(dir, "s.dcm"), "1.2.3.1", 0, []uint16{1, 2, 3, 4})

	series, err := ReadSeries(dir, nil)
	assert.NoError(t, err)
	assert.Equal(t, [3]int{2, 2, 1}, series.Volume.Size)
}

func TestReadSeriesEmptyDir(t *testing.T) {
	t.Parallel()

	_, err := ReadSeries(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestReadSeriesMismatchedSlices(t *testing.T) {
	// two slice sizes inside one series cannot form a volume
	t.Parallel()

	dir := t.TempDir()
	writeAxialSlice(t, filepath.Join(dir, "a.dcm"), "1.2.3.1", 0, []uint16{1, 2, 3, 4})

	err := gendcm.WriteMRSlice(filepath.Join(dir, "b.dcm"), gendcm.MRSliceSpec{
		SeriesUID:   "1.2.3.1",
		StudyDate:   "20180529",
		SeriesDate:  "20180529",
		StudyTime:   "143055",
		Rows:        4,
		Cols:        4,
		Spacing:     [2]float64{1.5, 1.25},
		Position:    [3]float64{-10, -20, 2},
		Orientation: [6]float64{1, 0, 0, 0, 1, 0},
		Slope:       1,
		Pixels:      make([]uint16, 16),
	})
	assert.NoError(t, err)

	_, err = ReadSeries(dir, nil)
	assert.Error(t, err)
}

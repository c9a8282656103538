package mumap

import (
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	nmtools "github.com/UCL/pet-rd-tools"
	"github.com/UCL/pet-rd-tools/common"
)

/*
===============================================================================
    DICOM series
===============================================================================
*/

// Series is one MR image series assembled into a volume
type Series struct {
	Volume    *Volume
	StudyDate string
	StudyTime string
}

// mrSlice is one parsed slice file, not yet placed in a volume
type mrSlice struct {
	path       string
	series     string
	seriesDate string
	orientRaw  string

	rows, cols int
	spacing    [2]float64
	pos        [3]float64
	rowDir     [3]float64
	colDir     [3]float64
	slope      float64
	intercept  float64

	studyDate string
	studyTime string

	pixels []uint16
}

// seriesKey groups slices the way the scanner wrote them
func (s *mrSlice) seriesKey() string {
	return s.series + "|" + s.seriesDate + "|" + s.orientRaw
}

// ReadSeries walks `src`, parses every readable DICOM slice and assembles
// the first series found into a float32 volume in slice order. Files that
// are not DICOM slices are skipped.
func ReadSeries(src string, log *zap.SugaredLogger) (*Series, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log.Debugf("Reading DICOM directory: %s", src)

	var mu sync.Mutex
	var slices []mrSlice
	err := common.ConcurrentlyWalkDir(src, func(file string) {
		rec, err := readSlice(file)
		if err != nil {
			log.Debugf("Skipping %s: %v", file, err)
			return
		}
		mu.Lock()
		slices = append(slices, *rec)
		mu.Unlock()
	})
	if err != nil {
		log.Errorf("Cannot read DICOM directory!")
		return nil, err
	}
	if len(slices) == 0 {
		log.Errorf("No valid DICOM series found")
		return nil, fmt.Errorf("ReadSeries(%s): no DICOM series found", src)
	}

	sort.Slice(slices, func(i, j int) bool { return slices[i].path < slices[j].path })

	// take the series the first file on disk belongs to
	key := slices[0].seriesKey()
	var group []mrSlice
	for _, s := range slices {
		if s.seriesKey() == key {
			group = append(group, s)
		}
	}
	log.Debugf("Using series %s with %d slice(s)", group[0].series, len(group))

	first := group[0]
	for _, s := range group[1:] {
		if s.rows != first.rows || s.cols != first.cols {
			log.Errorf("Unable to get image from DICOM series")
			return nil, fmt.Errorf("ReadSeries(%s): slice sizes differ within the series", src)
		}
	}

	// stack along the slice normal
	normal := cross(first.rowDir, first.colDir)
	sort.SliceStable(group, func(i, j int) bool {
		return projectOnto(group[i].pos, normal) < projectOnto(group[j].pos, normal)
	})

	zStep := 1.0
	if len(group) > 1 {
		gaps := make([]float64, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			gaps = append(gaps, projectOnto(group[i].pos, normal)-projectOnto(group[i-1].pos, normal))
		}
		zStep = stat.Mean(gaps, nil)
	}

	vol := NewVolume([3]int{first.cols, first.rows, len(group)})
	vol.Spacing = [3]float64{first.spacing[1], first.spacing[0], zStep}
	vol.Origin = group[0].pos
	vol.Dir = mat.NewDense(3, 3, []float64{
		first.rowDir[0], first.colDir[0], normal[0],
		first.rowDir[1], first.colDir[1], normal[1],
		first.rowDir[2], first.colDir[2], normal[2],
	})
	for z, s := range group {
		for y := 0; y < s.rows; y++ {
			for x := 0; x < s.cols; x++ {
				raw := float64(s.pixels[y*s.cols+x])
				vol.Set(x, y, z, float32(s.slope*raw+s.intercept))
			}
		}
	}
	log.Debugf("Assembled %dx%dx%d volume", vol.Size[0], vol.Size[1], vol.Size[2])

	return &Series{Volume: vol, StudyDate: first.studyDate, StudyTime: first.studyTime}, nil
}

// readSlice parses one file into an `mrSlice`, failing on anything that does
// not carry a complete single frame image
func readSlice(path string) (*mrSlice, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, err
	}

	rec := &mrSlice{path: path, slope: 1}

	var ok bool
	if rec.series, ok = nmtools.GetTagString(ds, tag.SeriesInstanceUID); !ok {
		return nil, fmt.Errorf("readSlice(%s): no series UID", path)
	}
	if rec.orientRaw, ok = nmtools.GetTagString(ds, tag.ImageOrientationPatient); !ok {
		return nil, fmt.Errorf("readSlice(%s): no orientation", path)
	}
	rec.seriesDate, _ = nmtools.GetTagString(ds, tag.SeriesDate)
	rec.studyDate, _ = nmtools.GetTagString(ds, tag.StudyDate)
	rec.studyTime, _ = nmtools.GetTagString(ds, tag.StudyTime)

	if rec.rows, ok = tagInt(ds, tag.Rows); !ok {
		return nil, fmt.Errorf("readSlice(%s): no row count", path)
	}
	if rec.cols, ok = tagInt(ds, tag.Columns); !ok {
		return nil, fmt.Errorf("readSlice(%s): no column count", path)
	}

	ps, ok := tagFloats(ds, tag.PixelSpacing, 2)
	if !ok {
		return nil, fmt.Errorf("readSlice(%s): no pixel spacing", path)
	}
	copy(rec.spacing[:], ps)

	pos, ok := tagFloats(ds, tag.ImagePositionPatient, 3)
	if !ok {
		return nil, fmt.Errorf("readSlice(%s): no patient position", path)
	}
	copy(rec.pos[:], pos)

	orient, ok := tagFloats(ds, tag.ImageOrientationPatient, 6)
	if !ok {
		return nil, fmt.Errorf("readSlice(%s): bad orientation", path)
	}
	copy(rec.rowDir[:], orient[:3])
	copy(rec.colDir[:], orient[3:])

	if slope, ok := tagFloats(ds, tag.RescaleSlope, 1); ok {
		rec.slope = slope[0]
	}
	if intercept, ok := tagFloats(ds, tag.RescaleIntercept, 1); ok {
		rec.intercept = intercept[0]
	}

	if rec.pixels, err = slicePixels(ds, rec.rows, rec.cols); err != nil {
		return nil, fmt.Errorf("readSlice(%s): %v", path, err)
	}
	return rec, nil
}

// slicePixels decodes the frame of a single slice into row major uint16s
func slicePixels(ds dicom.Dataset, rows, cols int) ([]uint16, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data")
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return nil, fmt.Errorf("no image frames")
	}
	img, err := info.Frames[0].GetImage()
	if err != nil {
		return nil, err
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("unsupported photometric interpretation")
	}
	if b := gray.Bounds(); b.Dx() != cols || b.Dy() != rows {
		return nil, fmt.Errorf("frame is %dx%d, expected %dx%d", b.Dx(), b.Dy(), cols, rows)
	}

	out := make([]uint16, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out[y*cols+x] = gray.Gray16At(x, y).Y
		}
	}
	return out, nil
}

// tagInt returns the first integer value of `t` within `ds`
func tagInt(ds dicom.Dataset, t tag.Tag) (int, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return 0, false
	}
	if v, ok := el.Value.GetValue().([]int); ok && len(v) > 0 {
		return v[0], true
	}
	return 0, false
}

// tagFloats returns the values of `t` within `ds` as exactly `n` floats.
// Decimal strings are accepted alongside native floats.
func tagFloats(ds dicom.Dataset, t tag.Tag, n int) ([]float64, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil, false
	}
	switch v := el.Value.GetValue().(type) {
	case []float64:
		if len(v) != n {
			return nil, false
		}
		return v, true
	case []string:
		if len(v) != n {
			return nil, false
		}
		out := make([]float64, n)
		for i, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

// cross returns the vector product of two patient directions
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// projectOnto returns the component of `p` along `axis`
func projectOnto(p, axis [3]float64) float64 {
	return mat.Dot(mat.NewVecDense(3, p[:]), mat.NewVecDense(3, axis[:]))
}

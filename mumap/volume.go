package mumap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

/*
===============================================================================
    Volume
===============================================================================
*/

// Volume is a 3D float32 raster in LPS patient space. Voxels are stored x
// fastest. The columns of `Dir` hold the patient direction of each voxel
// axis, and `Origin` is the patient position of voxel (0, 0, 0).
type Volume struct {
	Size    [3]int
	Spacing [3]float64
	Origin  [3]float64
	Dir     *mat.Dense
	Data    []float32
}

// NewVolume returns a zero filled volume with unit spacing and identity
// orientation
func NewVolume(size [3]int) *Volume {
	return &Volume{
		Size:    size,
		Spacing: [3]float64{1, 1, 1},
		Dir:     mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}),
		Data:    make([]float32, size[0]*size[1]*size[2]),
	}
}

// At returns the voxel at `(x, y, z)`
func (v *Volume) At(x, y, z int) float32 {
	return v.Data[(z*v.Size[1]+y)*v.Size[0]+x]
}

// Set stores the voxel at `(x, y, z)`
func (v *Volume) Set(x, y, z int, value float32) {
	v.Data[(z*v.Size[1]+y)*v.Size[0]+x] = value
}

// Clone returns a deep copy of the volume
func (v *Volume) Clone() *Volume {
	out := &Volume{
		Size:    v.Size,
		Spacing: v.Spacing,
		Origin:  v.Origin,
		Dir:     mat.DenseCopyOf(v.Dir),
		Data:    make([]float32, len(v.Data)),
	}
	copy(out.Data, v.Data)
	return out
}

// Divide scales every voxel by `1/c`
func (v *Volume) Divide(c float32) {
	for i := range v.Data {
		v.Data[i] /= c
	}
}

// MinMax returns the smallest and largest voxel values
func (v *Volume) MinMax() (float32, float32) {
	if len(v.Data) == 0 {
		return 0, 0
	}
	lo, hi := v.Data[0], v.Data[0]
	for _, d := range v.Data[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// axis returns the patient direction of voxel axis `j`
func (v *Volume) axis(j int) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.Dir.At(0, j), v.Dir.At(1, j), v.Dir.At(2, j)})
}

// Reorient reorders the voxel axes so they run along the patient directions
// named by `o`. Only permutations and flips are applied, so each voxel axis
// must already lie along one patient axis.
func (v *Volume) Reorient(o Orientation) (*Volume, error) {
	var perm [3]int
	var flip, used [3]bool
	for k := 0; k < 3; k++ {
		want := mat.NewVecDense(3, []float64{o.dirs[k][0], o.dirs[k][1], o.dirs[k][2]})
		best, bestDot := -1, 0.0
		for j := 0; j < 3; j++ {
			d := mat.Dot(want, v.axis(j))
			if math.Abs(d) > math.Abs(bestDot) {
				best, bestDot = j, d
			}
		}
		if best < 0 || used[best] {
			return nil, fmt.Errorf("Reorient(%s): voxel axes do not span the patient axes", o.Code)
		}
		used[best] = true
		perm[k] = best
		flip[k] = bestDot < 0
	}

	out := &Volume{Dir: mat.NewDense(3, 3, nil)}
	for k := 0; k < 3; k++ {
		out.Size[k] = v.Size[perm[k]]
		out.Spacing[k] = v.Spacing[perm[k]]
		for i := 0; i < 3; i++ {
			out.Dir.Set(i, k, o.dirs[k][i])
		}
	}
	out.Data = make([]float32, len(v.Data))

	// the new origin is the patient position of whichever input corner
	// becomes voxel (0, 0, 0)
	var corner [3]float64
	for k := 0; k < 3; k++ {
		if flip[k] {
			corner[perm[k]] = float64(v.Size[perm[k]]-1) * v.Spacing[perm[k]]
		}
	}
	var shift mat.VecDense
	shift.MulVec(v.Dir, mat.NewVecDense(3, corner[:]))
	for i := 0; i < 3; i++ {
		out.Origin[i] = v.Origin[i] + shift.AtVec(i)
	}

	var in [3]int
	for z := 0; z < out.Size[2]; z++ {
		for y := 0; y < out.Size[1]; y++ {
			for x := 0; x < out.Size[0]; x++ {
				idx := [3]int{x, y, z}
				for k := 0; k < 3; k++ {
					i := idx[k]
					if flip[k] {
						i = out.Size[k] - 1 - i
					}
					in[perm[k]] = i
				}
				out.Set(x, y, z, v.At(in[0], in[1], in[2]))
			}
		}
	}
	return out, nil
}

// ResampledSize returns the grid size that `spacing` implies over the same
// physical extent
func (v *Volume) ResampledSize(spacing [3]float64) [3]int {
	var out [3]int
	for i := 0; i < 3; i++ {
		out[i] = int(float64(v.Size[i])*v.Spacing[i]/spacing[i] + 0.5)
	}
	return out
}

// Resample interpolates the volume onto a grid with the given spacing. The
// origin and orientation are unchanged. Points outside the input support
// read as zero.
func (v *Volume) Resample(spacing [3]float64) *Volume {
	out := &Volume{
		Size:    v.ResampledSize(spacing),
		Spacing: spacing,
		Origin:  v.Origin,
		Dir:     mat.DenseCopyOf(v.Dir),
	}
	out.Data = make([]float32, out.Size[0]*out.Size[1]*out.Size[2])
	for z := 0; z < out.Size[2]; z++ {
		cz := float64(z) * spacing[2] / v.Spacing[2]
		for y := 0; y < out.Size[1]; y++ {
			cy := float64(y) * spacing[1] / v.Spacing[1]
			for x := 0; x < out.Size[0]; x++ {
				cx := float64(x) * spacing[0] / v.Spacing[0]
				out.Set(x, y, z, v.interp(cx, cy, cz))
			}
		}
	}
	return out
}

// interp reads the trilinear interpolant at a continuous voxel index
func (v *Volume) interp(cx, cy, cz float64) float32 {
	if cx < 0 || cy < 0 || cz < 0 ||
		cx > float64(v.Size[0]-1) || cy > float64(v.Size[1]-1) || cz > float64(v.Size[2]-1) {
		return 0
	}
	x0, y0, z0 := int(cx), int(cy), int(cz)
	x1, y1, z1 := x0+1, y0+1, z0+1
	if x1 > v.Size[0]-1 {
		x1 = v.Size[0] - 1
	}
	if y1 > v.Size[1]-1 {
		y1 = v.Size[1] - 1
	}
	if z1 > v.Size[2]-1 {
		z1 = v.Size[2] - 1
	}
	fx := float32(cx - float64(x0))
	fy := float32(cy - float64(y0))
	fz := float32(cz - float64(z0))

	c00 := v.At(x0, y0, z0)*(1-fx) + v.At(x1, y0, z0)*fx
	c10 := v.At(x0, y1, z0)*(1-fx) + v.At(x1, y1, z0)*fx
	c01 := v.At(x0, y0, z1)*(1-fx) + v.At(x1, y0, z1)*fx
	c11 := v.At(x0, y1, z1)*(1-fx) + v.At(x1, y1, z1)*fx
	c0 := c00*(1-fy) + c10*fy
	c1 := c01*(1-fy) + c11*fy
	return c0*(1-fz) + c1*fz
}

// PadXY grows the x and y axes to `nx` and `ny` voxels by adding equal zero
// margins on both sides. Axes already at least that large are unchanged.
func (v *Volume) PadXY(nx, ny int) *Volume {
	px := (nx - v.Size[0]) / 2
	py := (ny - v.Size[1]) / 2
	if px < 0 {
		px = 0
	}
	if py < 0 {
		py = 0
	}

	out := &Volume{
		Size:    [3]int{v.Size[0] + 2*px, v.Size[1] + 2*py, v.Size[2]},
		Spacing: v.Spacing,
		Dir:     mat.DenseCopyOf(v.Dir),
	}
	out.Data = make([]float32, out.Size[0]*out.Size[1]*out.Size[2])

	// voxel (0, 0, 0) moves back along the patient axes by the margin
	var shift mat.VecDense
	shift.MulVec(v.Dir, mat.NewVecDense(3, []float64{
		-float64(px) * v.Spacing[0],
		-float64(py) * v.Spacing[1],
		0,
	}))
	for i := 0; i < 3; i++ {
		out.Origin[i] = v.Origin[i] + shift.AtVec(i)
	}

	for z := 0; z < v.Size[2]; z++ {
		for y := 0; y < v.Size[1]; y++ {
			for x := 0; x < v.Size[0]; x++ {
				out.Set(x+px, y+py, z, v.At(x, y, z))
			}
		}
	}
	return out
}

// CropZ removes `lower` slices from the start of the z axis and `upper`
// slices from the end
func (v *Volume) CropZ(lower, upper int) (*Volume, error) {
	if lower < 0 || upper < 0 || lower+upper >= v.Size[2] {
		return nil, fmt.Errorf("CropZ(%d, %d): volume has only %d slices", lower, upper, v.Size[2])
	}

	out := &Volume{
		Size:    [3]int{v.Size[0], v.Size[1], v.Size[2] - lower - upper},
		Spacing: v.Spacing,
		Dir:     mat.DenseCopyOf(v.Dir),
	}

	var shift mat.VecDense
	shift.MulVec(v.Dir, mat.NewVecDense(3, []float64{0, 0, float64(lower) * v.Spacing[2]}))
	for i := 0; i < 3; i++ {
		out.Origin[i] = v.Origin[i] + shift.AtVec(i)
	}

	plane := v.Size[0] * v.Size[1]
	out.Data = make([]float32, plane*out.Size[2])
	copy(out.Data, v.Data[lower*plane:(lower+out.Size[2])*plane])
	return out, nil
}

package mumap

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

/*
===============================================================================
    Anatomical orientation
===============================================================================
*/

// orientationAxes maps each code letter to the LPS patient axis it travels
// along. A letter names the side the axis starts from, so `R` runs right to
// left, which is +x in LPS. `RAI` is the native DICOM order.
var orientationAxes = map[byte]struct {
	axis int
	sign float64
}{
	'R': {0, 1},
	'L': {0, -1},
	'A': {1, 1},
	'P': {1, -1},
	'I': {2, 1},
	'S': {2, -1},
}

// Orientation is a parsed three letter anatomical orientation code such as
// `RAI` or `LPS`. Each letter fixes the patient direction of one voxel axis.
type Orientation struct {
	Code string

	dirs [3][3]float64
}

// ParseOrientation validates `code` and resolves the axis directions it
// implies. Each of the three letters must name a distinct anatomical axis,
// so codes such as `RLS` are rejected.
func ParseOrientation(code string, log *zap.SugaredLogger) (Orientation, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if len(code) != 3 {
		log.Errorf("Expected three letter orientation code. Read: %s", code)
		return Orientation{}, fmt.Errorf("ParseOrientation(%s): expected a three letter code", code)
	}

	o := Orientation{Code: strings.ToUpper(code)}

	var used [3]bool
	for i := 0; i < 3; i++ {
		ch := o.Code[i]
		ax, ok := orientationAxes[ch]
		if !ok {
			log.Errorf("%c is not a valid orientation code value!", ch)
			return Orientation{}, fmt.Errorf("ParseOrientation(%s): invalid orientation letter %q", code, ch)
		}
		if used[ax.axis] {
			log.Errorf("Duplicate coordinate codes found: %s", o.Code)
			return Orientation{}, fmt.Errorf("ParseOrientation(%s): duplicate coordinate codes", code)
		}
		used[ax.axis] = true
		o.dirs[i][ax.axis] = ax.sign
	}

	return o, nil
}

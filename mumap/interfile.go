package mumap

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

/*
===============================================================================
    Interfile and MetaImage output
===============================================================================
*/

// muMapTemplate is the Interfile header skeleton written alongside a
// converted mu-map. `<%%KEY%%>` placeholders are filled as the pipeline runs.
const muMapTemplate = `!INTERFILE:=
%comment:=created with nm_mrac2mu for mMR data
!originating system:=2008

!GENERAL DATA:=
!name of data file:=<%%DATAFILE%%>
!GENERAL IMAGE DATA:=
!type of data := PET

%study date (yyyy:mm:dd):=<%%STUDYDATE%%>
%study time (hh:mm:ss GMT+00:00):=<%%STUDYTIME%%>
imagedata byte order:=LITTLEENDIAN
%patient orientation:=HFS
!PET data type:=image
number format:=float
!number of bytes per pixel:=4
number of dimensions:=3
matrix axis label[1]:=x
matrix axis label[2]:=y
matrix axis label[3]:=z
matrix size[1]:=<%%NX%%>
matrix size[2]:=<%%NY%%>
matrix size[3]:=<%%NZ%%>
scaling factor (mm/pixel) [1]:=<%%SX%%>
scaling factor (mm/pixel) [2]:=<%%SY%%>
scaling factor (mm/pixel) [3]:=<%%SZ%%>
start horizontal bed position (mm):=-10
end horizontal bed position (mm):=-10
start vertical bed position (mm):=0.0

!IMAGE DATA DESCRIPTION:=
!total number of data sets:=1
number of time frames:=1
!image duration (sec)[1]:=0
!image relative start time (sec)[1]:=0

%SUPPLEMENTARY ATTRIBUTES:=
quantification units:=1/cm
slice orientation:=Transverse
%image zoom:=1
%x-offset (mm):=0.0
%y-offset (mm):=0.0
%image slope:=1
%image intercept:=0.0
maximum pixel count:=<%%MAXVAL%%>
minimum pixel count:=<%%MINVAL%%>
!END OF INTERFILE :=
`

// Header is a mu-map Interfile header under construction
type Header struct {
	text string
	log  *zap.SugaredLogger
}

// NewHeader returns a header with every placeholder still unset
func NewHeader(log *zap.SugaredLogger) *Header {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Header{text: muMapTemplate, log: log}
}

// Set fills the placeholder for `key` with `value`. Keys not present in the
// header are reported and skipped.
func (h *Header) Set(key, value string) bool {
	target := "<%%" + key + "%%>"
	if !strings.Contains(h.text, target) {
		h.log.Warnf("Interfile replacement key: %s not found!", target)
		return false
	}
	h.text = strings.Replace(h.text, target, value, 1)
	return true
}

// SetInt fills the placeholder for `key` with an integer
func (h *Header) SetInt(key string, value int) bool {
	return h.Set(key, strconv.Itoa(value))
}

// SetFloat fills the placeholder for `key` with a float in its shortest form
func (h *Header) SetFloat(key string, value float32) bool {
	return h.Set(key, strconv.FormatFloat(float64(value), 'g', -1, 32))
}

// String returns the header text
func (h *Header) String() string {
	return h.text
}

// WriteMetaImage stores `v` as a MetaImage pair, a text header at the `.mhd`
// form of `path` and the raster next to it as little endian float32s with a
// `.raw` extension
func WriteMetaImage(v *Volume, path string) error {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	rawName := filepath.Base(stem) + ".raw"

	var sb strings.Builder
	sb.WriteString("ObjectType = Image\n")
	sb.WriteString("NDims = 3\n")
	sb.WriteString("BinaryData = True\n")
	sb.WriteString("BinaryDataByteOrderMSB = False\n")
	sb.WriteString("CompressedData = False\n")
	sb.WriteString("TransformMatrix =")
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			fmt.Fprintf(&sb, " %g", v.Dir.At(i, k))
		}
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Offset = %g %g %g\n", v.Origin[0], v.Origin[1], v.Origin[2])
	sb.WriteString("CenterOfRotation = 0 0 0\n")
	fmt.Fprintf(&sb, "ElementSpacing = %g %g %g\n", v.Spacing[0], v.Spacing[1], v.Spacing[2])
	fmt.Fprintf(&sb, "DimSize = %d %d %d\n", v.Size[0], v.Size[1], v.Size[2])
	sb.WriteString("ElementType = MET_FLOAT\n")
	fmt.Fprintf(&sb, "ElementDataFile = %s\n", rawName)

	if err := os.WriteFile(stem+".mhd", []byte(sb.String()), 0644); err != nil {
		return err
	}

	f, err := os.Create(stem + ".raw")
	if err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, v.Data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

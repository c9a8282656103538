// Package gendcm generates PET raw data container fixtures
package gendcm

import (
	"bytes"
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/UCL/pet-rd-tools/common"
)

/*
===============================================================================
    Element Construction
===============================================================================
*/

// SOP classes used for generated instances.
const (
	RawDataStorageUID = "1.2.840.10008.5.1.4.1.1.66"
	MRImageStorageUID = "1.2.840.10008.5.1.4.1.1.4"

	explicitVRLittleEndianUID = "1.2.840.10008.1.2.1"
)

// mustNewElement creates an element for a registered tag, panicking on
// malformed input
func mustNewElement(t tag.Tag, data interface{}) *dicom.Element {
	el, err := dicom.NewElement(t, data)
	if err != nil {
		panic(fmt.Sprintf("gendcm: cannot create element %v: %v", t, err))
	}
	return el
}

// mustNewPrivateElement creates an element with an explicit VR. Needed
// for private tags, which `dicom.NewElement` refuses.
func mustNewPrivateElement(t tag.Tag, rawVR string, data interface{}) *dicom.Element {
	value, err := dicom.NewValue(data)
	if err != nil {
		panic(fmt.Sprintf("gendcm: cannot create value for private element %v: %v", t, err))
	}
	return &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, rawVR),
		RawValueRepresentation: rawVR,
		Value:                  value,
	}
}

// evenPad pads odd-length blobs with a space, element values must have
// even length on disk
func evenPad(b []byte) []byte {
	if len(b)%2 == 1 {
		return append(append([]byte{}, b...), ' ')
	}
	return b
}

func writeDataset(path string, elements []*dicom.Element) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dicom.Write(f, dicom.Dataset{Elements: elements})
}

func baseElements(sopClassUID string) []*dicom.Element {
	instanceUID, err := common.NewRandInstanceUID()
	if err != nil {
		panic(err)
	}
	return []*dicom.Element{
		mustNewElement(tag.MediaStorageSOPClassUID, []string{sopClassUID}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{instanceUID}),
		mustNewElement(tag.TransferSyntaxUID, []string{explicitVRLittleEndianUID}),
		mustNewElement(tag.SOPClassUID, []string{sopClassUID}),
		mustNewElement(tag.SOPInstanceUID, []string{instanceUID}),
	}
}

/*
===============================================================================
    Siemens mMR Containers
===============================================================================
*/

// MMRSpec describes a Siemens mMR container fixture
type MMRSpec struct {
	// ImageType values, e.g. "ORIGINAL", "PRIMARY", "PET_LISTMODE"
	ImageType []string
	// Header is the Interfile text stored at (0029,1010)
	Header []byte
	// AltHeader, when set, is stored at (0029,1110) for the SV10 layout
	AltHeader []byte
	// Payload is the raw data stored at (7fe1,1010), nil to omit the
	// element entirely. Lengths should be even.
	Payload []byte
}

// WriteMMRContainer writes a Siemens mMR raw data container to `path`
func WriteMMRContainer(path string, spec MMRSpec) error {
	elements := baseElements(RawDataStorageUID)
	elements = append(elements,
		mustNewElement(tag.ImageType, spec.ImageType),
		mustNewElement(tag.Manufacturer, []string{"SIEMENS"}),
		mustNewElement(tag.ManufacturerModelName, []string{"Biograph_mMR"}),
		mustNewPrivateElement(tag.Tag{Group: 0x0029, Element: 0x1010}, "OB", evenPad(spec.Header)),
	)
	if spec.AltHeader != nil {
		elements = append(elements,
			mustNewPrivateElement(tag.Tag{Group: 0x0029, Element: 0x1110}, "OB", evenPad(spec.AltHeader)))
	}
	if spec.Payload != nil {
		elements = append(elements,
			mustNewPrivateElement(tag.Tag{Group: 0x7fe1, Element: 0x1010}, "OB", spec.Payload))
	}
	return writeDataset(path, elements)
}

/*
===============================================================================
    GE PET/MR Containers
===============================================================================
*/

// GESpec describes a GE PET/MR container fixture
type GESpec struct {
	// RawType is the (0021,1001) discriminator, e.g. "3" for sinograms
	RawType string
	// SinoType is the (0009,1019) discriminator, empty to omit
	SinoType string
	// CalType is the (0017,1006) discriminator, empty to omit
	CalType string
	// RDF is the blob stored at (0023,1002)
	RDF []byte
}

// WriteGEContainer writes a GE PET/MR raw data container to `path`
func WriteGEContainer(path string, spec GESpec) error {
	elements := baseElements(RawDataStorageUID)
	elements = append(elements,
		mustNewElement(tag.Manufacturer, []string{"GE MEDICAL SYSTEMS"}))
	if spec.SinoType != "" {
		elements = append(elements,
			mustNewPrivateElement(tag.Tag{Group: 0x0009, Element: 0x1019}, "LO", []string{spec.SinoType}))
	}
	if spec.CalType != "" {
		elements = append(elements,
			mustNewPrivateElement(tag.Tag{Group: 0x0017, Element: 0x1006}, "LO", []string{spec.CalType}))
	}
	elements = append(elements,
		mustNewPrivateElement(tag.Tag{Group: 0x0021, Element: 0x1001}, "LO", []string{spec.RawType}))
	if spec.RDF != nil {
		elements = append(elements,
			mustNewPrivateElement(tag.Tag{Group: 0x0023, Element: 0x1002}, "OB", evenPad(spec.RDF)))
	}
	return writeDataset(path, elements)
}

/*
===============================================================================
    MR Slices
===============================================================================
*/

// MRSliceSpec describes one MR slice fixture
type MRSliceSpec struct {
	SeriesUID   string
	StudyDate   string
	SeriesDate  string
	StudyTime   string
	Rows        int
	Cols        int
	Spacing     [2]float64
	Position    [3]float64
	Orientation [6]float64
	Slope       float64
	Intercept   float64
	// Pixels holds Rows*Cols values in row-major order
	Pixels []uint16
}

// WriteMRSlice writes a single MR image slice to `path`
func WriteMRSlice(path string, spec MRSliceSpec) error {
	native := frame.NewNativeFrame[uint16](16, spec.Rows, spec.Cols, spec.Rows*spec.Cols, 1)
	copy(native.RawData, spec.Pixels)

	pixelDataInfo := dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData:   native,
			},
		},
	}

	position := make([]string, 3)
	for i, v := range spec.Position {
		position[i] = fmt.Sprintf("%.6f", v)
	}
	orientation := make([]string, 6)
	for i, v := range spec.Orientation {
		orientation[i] = fmt.Sprintf("%.6f", v)
	}

	elements := baseElements(MRImageStorageUID)
	elements = append(elements,
		mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "ND"}),
		mustNewElement(tag.StudyDate, []string{spec.StudyDate}),
		mustNewElement(tag.SeriesDate, []string{spec.SeriesDate}),
		mustNewElement(tag.StudyTime, []string{spec.StudyTime}),
		mustNewElement(tag.Modality, []string{"MR"}),
		mustNewElement(tag.Manufacturer, []string{"SIEMENS"}),
		mustNewElement(tag.ManufacturerModelName, []string{"Biograph_mMR"}),
		mustNewElement(tag.SeriesInstanceUID, []string{spec.SeriesUID}),
		mustNewElement(tag.ImagePositionPatient, position),
		mustNewElement(tag.ImageOrientationPatient, orientation),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.Rows, []int{spec.Rows}),
		mustNewElement(tag.Columns, []int{spec.Cols}),
		mustNewElement(tag.PixelSpacing, []string{
			fmt.Sprintf("%.6f", spec.Spacing[0]),
			fmt.Sprintf("%.6f", spec.Spacing[1]),
		}),
		mustNewElement(tag.BitsAllocated, []int{16}),
		mustNewElement(tag.BitsStored, []int{16}),
		mustNewElement(tag.HighBit, []int{15}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.RescaleIntercept, []string{fmt.Sprintf("%.6f", spec.Intercept)}),
		mustNewElement(tag.RescaleSlope, []string{fmt.Sprintf("%.6f", spec.Slope)}),
		mustNewElement(tag.PixelData, pixelDataInfo),
	)
	return writeDataset(path, elements)
}

/*
===============================================================================
    PTD Files
===============================================================================
*/

// WritePTD assembles a headerless .ptd fixture at `path`: the raw
// payload, a 128 byte preamble, the DICOM magic and the trailing header
// text
func WritePTD(path string, payload, header []byte) error {
	var buf bytes.Buffer
	buf.Write(payload)
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")
	buf.Write(header)
	return os.WriteFile(path, buf.Bytes(), 0644)
}

/*
===============================================================================
    Interfile Headers
===============================================================================
*/

// MMRListHeader renders a listmode Interfile header declaring `words`
// 32-bit words. The %comment line marks the end of the header.
func MMRListHeader(words uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("!INTERFILE:=\r\n")
	buf.WriteString("!originating system:=2008\r\n")
	buf.WriteString("name of data file:=PETLM.l\r\n")
	buf.WriteString("%data format:=list\r\n")
	fmt.Fprintf(&buf, "%%total listmode word counts:=%d\r\n", words)
	buf.WriteString("%comment:=mMR listmode\r\n")
	return evenPad(buf.Bytes())
}

// MMRSinoHeader renders a sinogram Interfile header
func MMRSinoHeader() []byte {
	var buf bytes.Buffer
	buf.WriteString("!INTERFILE:=\r\n")
	buf.WriteString("!originating system:=2008\r\n")
	buf.WriteString("name of data file:=PETSINO.s\r\n")
	buf.WriteString("%data format:=sinogram\r\n")
	buf.WriteString("%compression:=on\r\n")
	buf.WriteString("%comment:=mMR sinogram\r\n")
	return evenPad(buf.Bytes())
}

// MMRNormHeader renders a norm Interfile header, with the doubled
// carriage returns the scanner emits
func MMRNormHeader() []byte {
	var buf bytes.Buffer
	buf.WriteString("!INTERFILE:=\r\r\n")
	buf.WriteString("!originating system:=2008\r\r\n")
	buf.WriteString("name of data file:=PETNORM.n\r\r\n")
	buf.WriteString("%data set [1]:={0,,PETNORM.n}\r\r\n")
	buf.WriteString("number of normalization components:=8\r\r\n")
	buf.WriteString("%comment:=mMR normalisation\r\r\n")
	return evenPad(buf.Bytes())
}

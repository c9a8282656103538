package nmtools

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/suyashkumar/dicom"
	"go.uber.org/zap"
)

/*
===============================================================================
    Raw Data Containers
===============================================================================
*/

// NormPayloadBytes is the fixed byte length of an mMR norm payload,
// 80851 32-bit words covering the eight normalisation components
const NormPayloadBytes = 323404

type lengthRule int

const (
	// lengthFromHeader checks the payload against the word count declared
	// in the Interfile header
	lengthFromHeader lengthRule = iota
	// lengthFixed checks the payload against a known byte length
	lengthFixed
	// lengthUnchecked accepts any non-empty payload
	lengthUnchecked
)

// kindSpec captures the naming and length conventions of one raw data kind
type kindSpec struct {
	label  string
	suffix string
	rule   lengthRule
}

var kindSpecs = map[Kind]kindSpec{
	KindMMRList:  {label: "listmode", suffix: ".l", rule: lengthFromHeader},
	KindMMRSino:  {label: "sinogram", suffix: ".s", rule: lengthUnchecked},
	KindMMRNorm:  {label: "norm", suffix: ".n", rule: lengthFixed},
	KindGEList:   {label: "listmode", suffix: ".BLF"},
	KindGESino:   {label: "sinogram", suffix: ".sino.rdf"},
	KindGENorm2D: {label: "norm", suffix: ".norm.rdf"},
	KindGENorm3D: {label: "norm", suffix: ".norm.rdf"},
	KindGEGeo:    {label: "geo", suffix: "geo.rdf"},
}

// Container is an opened PET raw data container
type Container struct {
	Path   string
	Vendor Vendor
	Kind   Kind

	ds  dicom.Dataset
	log *zap.SugaredLogger

	header     string
	headerRead bool
}

// OpenContainer probes `src` as a raw data container from any supported
// vendor. The kind is determined from the embedded DICOM attributes, not
// from the file name. A failed read of one vendor's attributes does not
// preclude the next vendor; GE files routinely carry none of the Siemens
// identification tags. Recognised but unsupported kinds are refused with
// `UnsupportedRawData`, anything else unplaceable with `NotRawData`.
func OpenContainer(src string, log *zap.SugaredLogger) (*Container, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ds, err := dicom.ParseFile(src, nil)
	if err != nil {
		return nil, NotRawDataError("OpenContainer(%s): %v", src, err)
	}
	c, err := newSiemensContainer(src, ds, log)
	if c != nil {
		return c, nil
	}
	if err != nil {
		log.Debugf("Not Siemens raw data: %v", err)
	}
	c, err = newGEContainer(src, ds, log)
	if c != nil {
		return c, nil
	}
	if _, ok := err.(*UnsupportedRawData); ok {
		return nil, err
	}
	if err != nil {
		log.Debugf("Not GE raw data: %v", err)
	}
	return nil, NotRawDataError("OpenContainer(%s): not a recognised PET raw data file", src)
}

// NewSiemensContainer opens `src` as a Siemens mMR container. A nil
// container with nil error means well-formed DICOM that is not mMR raw
// data.
func NewSiemensContainer(src string, log *zap.SugaredLogger) (*Container, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ds, err := dicom.ParseFile(src, nil)
	if err != nil {
		return nil, NotRawDataError("NewSiemensContainer(%s): %v", src, err)
	}
	return newSiemensContainer(src, ds, log)
}

// NewGEContainer opens `src` as a GE PET/MR container. A nil container
// with nil error means well-formed DICOM that is not GE raw data.
func NewGEContainer(src string, log *zap.SugaredLogger) (*Container, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ds, err := dicom.ParseFile(src, nil)
	if err != nil {
		return nil, NotRawDataError("NewGEContainer(%s): %v", src, err)
	}
	return newGEContainer(src, ds, log)
}

// StdFileName derives the conventional file name for the requested part
// of the container, based on the stem of `src`. Siemens data files are
// named stem.l/.s/.n with ".hdr" appended for the header. GE containers
// are a single RDF, named for the header request only.
func (c *Container) StdFileName(src string, content ContentKind) string {
	spec := kindSpecs[c.Kind]
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var name string
	switch c.Vendor {
	case VendorGE:
		if content == ContentRawData {
			return ""
		}
		name = stem + spec.suffix
	default:
		name = stem + spec.suffix
		if content == ContentHeader {
			name += ".hdr"
		}
	}
	c.log.Debugf("Created filename: %s", name)
	return name
}

// IsValid checks the container payload against its declared length
func (c *Container) IsValid() (bool, error) {
	if c.Vendor == VendorGE {
		return c.geIsValid()
	}
	return c.siemensIsValid()
}

// ExtractHeader writes the container header to `dst`, refusing to
// overwrite an existing file. For GE containers the header request
// extracts the whole RDF.
func (c *Container) ExtractHeader(dst string) error {
	if c.Vendor == VendorGE {
		return c.geExtractRDF(dst)
	}
	return c.siemensExtractHeader(dst)
}

// ExtractData writes the raw payload to `dst`, refusing to overwrite an
// existing file. GE containers hold no payload separate from the RDF and
// extract nothing here.
func (c *Container) ExtractData(dst string) error {
	if c.Vendor == VendorGE {
		return nil
	}
	return c.siemensExtractData(dst)
}

// ModifyHeader rewrites the data file reference inside an extracted
// header at `headerPath` to point at the base name of `dataPath`. GE
// headers live inside the RDF and are left untouched.
func (c *Container) ModifyHeader(headerPath, dataPath string) error {
	if c.Vendor == VendorGE {
		return nil
	}
	return c.siemensModifyHeader(headerPath, dataPath)
}

// bfPath is the sibling ".bf" file the scanner writes large payloads to
func (c *Container) bfPath() string {
	return strings.TrimSuffix(c.Path, filepath.Ext(c.Path)) + ".bf"
}

// writeNew writes `data` to a fresh file at `dst`, removing the file
// again if the write fails part way
func writeNew(dst string, data []byte) error {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// copyFile copies `src` to a fresh file at `dst`, removing the file
// again if the copy fails part way
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

package nmtools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UCL/pet-rd-tools/gendcm"
)

func TestValidateFileContainer(t *testing.T) {
	// ensures that a valid container reports good without falling back
	// to the .ptd scan.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "PETLM.PT.dcm")
	writeMMR(t, src, gendcm.MMRSpec{
		ImageType: imageTypeList,
		Header:    gendcm.MMRListHeader(4),
		Payload:   make([]byte, 16),
	})
	assert.Equal(t, StatusGood, ValidateFile(src, nil))
}

func TestValidateFileGEContainer(t *testing.T) {
	// ensures that GE containers validate through the same entry
	// point.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "raw.dcm")
	writeGE(t, src, gendcm.GESpec{
		RawType:  "3",
		SinoType: "0",
		RDF:      make([]byte, 10),
	})
	assert.Equal(t, StatusGood, ValidateFile(src, nil))
}

func TestValidateFilePTD(t *testing.T) {
	// ensures that a headerless .ptd file validates through the
	// fallback scan.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 40), gendcm.MMRListHeader(10))
	assert.Equal(t, StatusGood, ValidateFile(src, nil))
}

func TestValidateFileInvalidContainer(t *testing.T) {
	// ensures that a container failing reconciliation reports bad, the
	// fallback scan finding no listmode ahead of the DICOM part.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "PETLM.PT.dcm")
	writeMMR(t, src, gendcm.MMRSpec{
		ImageType: imageTypeList,
		Header:    gendcm.MMRListHeader(6),
		Payload:   make([]byte, 8),
	})
	assert.Equal(t, StatusBad, ValidateFile(src, nil))
}

func TestValidateFileGarbage(t *testing.T) {
	// ensures that a file that is neither a container nor a .ptd
	// reports bad.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "junk.dat")
	assert.NoError(t, os.WriteFile(src, []byte("hello world"), 0644))
	assert.Equal(t, StatusBad, ValidateFile(src, nil))
}

func TestValidateFileMissing(t *testing.T) {
	// ensures that an unreadable path reports an I/O error.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "missing.dat")
	assert.Equal(t, StatusIOError, ValidateFile(src, nil))
}

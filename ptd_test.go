package nmtools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UCL/pet-rd-tools/gendcm"
)

// writePTD writes a .ptd fixture to `path`
func writePTD(t *testing.T, path string, payload, header []byte) {
	t.Helper()
	if err := gendcm.WritePTD(path, payload, header); err != nil {
		t.Fatalf("error: %v", err)
	}
}

func TestValidatePTDGood(t *testing.T) {
	// ensures that a .ptd file whose listmode length matches the word
	// count declared in its trailing header validates.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 40), gendcm.MMRListHeader(10))
	assert.Equal(t, StatusGood, ValidatePTD(src, nil))
}

func TestValidatePTDWordMismatch(t *testing.T) {
	// ensures that a listmode length disagreeing with the declared
	// word count fails validation.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 44), gendcm.MMRListHeader(10))
	assert.Equal(t, StatusBad, ValidatePTD(src, nil))
}

func TestValidatePTDOddByteCount(t *testing.T) {
	// ensures that a listmode length that does not divide into 32-bit
	// words fails validation.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 42), gendcm.MMRListHeader(10))
	assert.Equal(t, StatusBad, ValidatePTD(src, nil))
}

func TestValidatePTDNoMagic(t *testing.T) {
	// ensures that a file without the DICOM magic in its tail fails
	// validation.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	assert.NoError(t, os.WriteFile(src, make([]byte, 200), 0644))
	assert.Equal(t, StatusBad, ValidatePTD(src, nil))
}

func TestValidatePTDNoInterfile(t *testing.T) {
	// ensures that a DICOM part without an Interfile header fails
	// validation.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 40), []byte("not a header"))
	assert.Equal(t, StatusBad, ValidatePTD(src, nil))
}

func TestValidatePTDNoCommentLine(t *testing.T) {
	// ensures that an Interfile header without the closing comment
	// line fails validation.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 40),
		[]byte("!INTERFILE:=\r\n%total listmode word counts:=10\r\n"))
	assert.Equal(t, StatusBad, ValidatePTD(src, nil))
}

func TestValidatePTDNoWordCount(t *testing.T) {
	// ensures that an Interfile header without a word count line fails
	// validation.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "scan.ptd")
	writePTD(t, src, make([]byte, 40),
		[]byte("!INTERFILE:=\r\n%comment:=listmode\r\n"))
	assert.Equal(t, StatusBad, ValidatePTD(src, nil))
}

func TestValidatePTDMissingFile(t *testing.T) {
	// ensures that an unreadable path reports an I/O error rather than
	// an invalid file.
	t.Parallel()
	src := filepath.Join(t.TempDir(), "missing.ptd")
	assert.Equal(t, StatusIOError, ValidatePTD(src, nil))
}

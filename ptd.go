package nmtools

import (
	"bytes"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

/*
===============================================================================
    PTD Files
===============================================================================
*/

// ptdScanWindow bounds the backward scan for the trailing DICOM part.
// Scanner headers sit well within the last 50000 bytes of a .ptd file.
const ptdScanWindow = 50000

var dicmMagic = []byte("DICM")

// ValidatePTD checks a headerless .ptd file, in which the raw listmode
// words are followed by a 128 byte preamble and a DICOM part running to
// the end of the file. The DICOM magic is searched backwards from the
// end, so the listmode length is its offset less the preamble.
func ValidatePTD(src string, log *zap.SugaredLogger) Status {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	f, err := os.Open(src)
	if err != nil {
		log.Infof("Cannot open %s", src)
		return StatusIOError
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Infof("Cannot open %s", src)
		return StatusIOError
	}
	size := info.Size()
	log.Infof("File size in bytes: %d", size)

	tailStart := size - ptdScanWindow + 1
	if tailStart < 0 {
		tailStart = 0
	}
	tail := make([]byte, size-tailStart)
	n, err := f.ReadAt(tail, tailStart)
	if err != nil && err != io.EOF {
		log.Infof("Cannot open %s", src)
		return StatusIOError
	}
	tail = tail[:n]

	idx := bytes.LastIndex(tail, dicmMagic)
	if idx < 0 {
		log.Infof("No DICOM header found")
		return StatusBad
	}
	headerPos := tailStart + int64(idx)
	log.Infof("Found DICOM header at: %d bytes", headerPos)

	headerText := string(tail[idx:])
	inPoint := strings.Index(headerText, "!INTERFILE")
	if inPoint < 0 {
		log.Infof("No Interfile header found")
		return StatusBad
	}
	cIdx := strings.Index(headerText, "%comment")
	if cIdx < inPoint {
		log.Infof("No end of Interfile header found")
		return StatusBad
	}
	// The Interfile part runs from !INTERFILE through the %comment line,
	// anything after that is trailing DICOM padding.
	commentLine, _ := findHeaderLine(headerText, "%comment")
	headerText = headerText[inPoint : cIdx+len(commentLine)]

	line, ok := findHeaderLine(headerText, keyWordCount)
	if !ok {
		log.Infof("No word count found in Interfile header")
		return StatusBad
	}
	words, ok := parseFirstUint(line)
	if !ok {
		log.Infof("No word count found in Interfile header")
		return StatusBad
	}
	log.Infof("Expected number of LM words: %d", words)

	// The DICOM part carries a 128 byte zero preamble, and 32-bit
	// listmode must divide by four.
	lmBytes := headerPos - 128
	if lmBytes%4 != 0 {
		log.Infof("%d words found", lmBytes/4)
		log.Infof("Incorrect number of bytes")
		return StatusBad
	}
	actual := lmBytes / 4
	log.Infof("%d LM words found", actual)

	if actual < 0 || uint64(actual) != words {
		log.Infof("Expected no. of LM words does not equal no. read!")
		return StatusBad
	}
	return StatusGood
}

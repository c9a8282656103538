package nmtools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/suyashkumar/dicom"
	"go.uber.org/zap"
)

/*
===============================================================================
    Siemens mMR Containers
===============================================================================
*/

// Image type values distinguishing the mMR raw data flavours.
const (
	mmrTypeList = `ORIGINAL\PRIMARY\PET_LISTMODE`
	mmrTypeSino = `ORIGINAL\PRIMARY\PET_EM_SINO`
	mmrTypeNorm = `ORIGINAL\PRIMARY\PET_NORM`
)

func newSiemensContainer(src string, ds dicom.Dataset, log *zap.SugaredLogger) (*Container, error) {
	kind, err := classifySiemens(ds, log)
	if err != nil || kind == KindUnknown {
		return nil, err
	}
	return &Container{Path: src, Vendor: VendorSiemens, Kind: kind, ds: ds, log: log}, nil
}

// classifySiemens determines the mMR raw data kind from the scanner
// identification attributes
func classifySiemens(ds dicom.Dataset, log *zap.SugaredLogger) (Kind, error) {
	manufacturer, ok := GetTagString(ds, tagManufacturer)
	if !ok {
		return KindUnknown, CorruptContainerError("classifySiemens: unable to read manufacturer name")
	}
	log.Infof("Manufacturer: %s", manufacturer)

	model, ok := GetTagString(ds, tagModelName)
	if !ok {
		return KindUnknown, CorruptContainerError("classifySiemens: unable to read scanner model name")
	}
	log.Infof("Model name: %s", model)

	imageType, ok := GetTagString(ds, tagImageType)
	if !ok {
		return KindUnknown, CorruptContainerError("classifySiemens: unable to read image type")
	}
	log.Infof("Image type: %s", imageType)

	if !strings.Contains(manufacturer, "SIEMENS") || !strings.Contains(model, "Biograph_mMR") {
		return KindUnknown, nil
	}
	log.Debugf("Scanner = mMR")

	switch {
	case strings.Contains(imageType, mmrTypeList):
		return KindMMRList, nil
	case strings.Contains(imageType, mmrTypeSino):
		return KindMMRSino, nil
	case strings.Contains(imageType, mmrTypeNorm):
		return KindMMRNorm, nil
	}
	return KindUnknown, nil
}

// siemensHeader returns the embedded Interfile header, following the
// SV10 indirection written by SMS-MI v3.2 scanners. The header bytes
// are preserved exactly as stored.
func (c *Container) siemensHeader() (string, error) {
	if c.headerRead {
		return c.header, nil
	}
	raw, ok := getTagBytes(c.ds, tagSiemensHeader)
	if !ok {
		c.log.Errorf("Unable to read header")
		return "", CorruptContainerError("siemensHeader(%s): no header element", c.Path)
	}
	header := string(raw)
	if strings.Contains(header, "SV10") {
		raw, ok = getTagBytes(c.ds, tagSiemensHeaderAlt)
		if !ok {
			c.log.Errorf("Unable to read header (SV10)")
			return "", CorruptContainerError("siemensHeader(%s): no SV10 header element", c.Path)
		}
		header = string(raw)
	}
	c.header = header
	c.headerRead = true
	return header, nil
}

// siemensDeclaredBytes determines the payload length the header promises
// for this container, four bytes per declared listmode word or a fixed
// norm length. ok is false when the header carries no usable count.
func (c *Container) siemensDeclaredBytes(header string) (uint64, bool) {
	switch kindSpecs[c.Kind].rule {
	case lengthFixed:
		c.log.Infof("Expected number of bytes: %d", NormPayloadBytes)
		return NormPayloadBytes, true
	case lengthFromHeader:
		line, ok := findHeaderLine(header, keyWordCount)
		if !ok {
			c.log.Infof("No word count tag found in Interfile header")
			return 0, false
		}
		words, ok := parseFirstUint(line)
		if !ok {
			c.log.Infof("No word count number found in Interfile header")
			return 0, false
		}
		c.log.Infof("Expected number of LM words: %d", words)
		return words * 4, true
	}
	return 0, false
}

// siemensPayload returns the inline payload bytes, or nil when the
// element is absent and the payload lives in the .bf sidecar
func (c *Container) siemensPayload() []byte {
	payload, ok := getTagBytes(c.ds, tagSiemensPayload)
	if !ok {
		return nil
	}
	c.log.Infof("%d bytes in data field (0x7fe1, 0x1010)", len(payload))
	return payload
}

// siemensIsValid reconciles the payload length against the header
func (c *Container) siemensIsValid() (bool, error) {
	header, err := c.siemensHeader()
	if err != nil {
		c.log.Errorf("Unable to read header!")
		return false, err
	}

	spec := kindSpecs[c.Kind]

	if spec.rule == lengthUnchecked {
		// Compressed sinogram payloads carry no usable length declaration.
		c.log.Warnf("Cannot check sinogram length due to compression.")
		payload := c.siemensPayload()
		c.log.Debugf("SRC: %s", c.Path)
		if _, err := os.Stat(c.bfPath()); err == nil {
			c.log.Infof(".bf file exists.")
			return true, nil
		}
		return len(payload) > 0, nil
	}

	want, ok := c.siemensDeclaredBytes(header)
	if !ok {
		return false, nil
	}

	payload := c.siemensPayload()
	if spec.rule == lengthFromHeader {
		c.log.Infof("%d / 4 = %d words", len(payload), len(payload)/4)
	}
	if uint64(len(payload)) == want {
		return true, nil
	}

	c.logLengthMismatch()
	c.log.Infof("Looking for BF file...")
	c.log.Debugf("SRC: %s", c.Path)
	bfOK, err := c.checkSidecar(want)
	if err != nil {
		return false, err
	}
	if !bfOK {
		c.log.Errorf("No %s data found in either header or .bf file!", spec.label)
		return false, nil
	}
	return true, nil
}

// checkSidecar tests the sibling .bf file for exactly `want` bytes
func (c *Container) checkSidecar(want uint64) (bool, error) {
	bf := c.bfPath()
	info, err := os.Stat(bf)
	if os.IsNotExist(err) {
		c.log.Infof("Cannot open %s", bf)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.log.Infof(".bf file size in bytes: %d", info.Size())
	if uint64(info.Size()) != want {
		c.log.Infof("Expected no. of bytes does not equal no. read!")
		return false, nil
	}
	c.log.Infof("%s is valid raw data file for this header.", bf)
	return true, nil
}

func (c *Container) logLengthMismatch() {
	if kindSpecs[c.Kind].rule == lengthFromHeader {
		c.log.Infof("Expected no. of LM words does not equal no. read!")
	} else {
		c.log.Infof("Expected no. of bytes does not equal no. read!")
	}
}

// siemensExtractHeader writes the Interfile header to `dst`
func (c *Container) siemensExtractHeader(dst string) error {
	header, err := c.siemensHeader()
	if err != nil {
		c.log.Errorf("Failed to extract raw header!")
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		c.log.Errorf("Header already exists at destination!")
		c.log.Errorf("Refusing to over-write!")
		return CorruptContainerError("siemensExtractHeader(%s): destination exists", dst)
	}
	if err := writeNew(dst, []byte(header)); err != nil {
		c.log.Errorf("Unable to write header to %s", dst)
		return err
	}
	c.log.Infof("Successfully extracted raw header.")
	return nil
}

// siemensExtractData writes the raw payload to `dst`, taking the inline
// element when its length reconciles with the header and falling back to
// the .bf sidecar otherwise
func (c *Container) siemensExtractData(dst string) error {
	header, err := c.siemensHeader()
	if err != nil {
		c.log.Errorf("Unable to read header!")
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		c.log.Errorf("The data file already exists!")
		c.log.Errorf("Refusing to over-write!")
		return CorruptContainerError("siemensExtractData(%s): destination exists", dst)
	}

	spec := kindSpecs[c.Kind]

	if spec.rule == lengthUnchecked {
		// Sinograms cannot be reconciled, prefer the sidecar when present.
		payload := c.siemensPayload()
		c.log.Debugf("SRC: %s", c.Path)
		if _, err := os.Stat(c.bfPath()); err == nil {
			if err := copyFile(c.bfPath(), dst); err != nil {
				c.log.Errorf("Unable to copy %s from .bf file!", spec.label)
				return err
			}
			return nil
		}
		if err := writeNew(dst, payload); err != nil {
			c.log.Errorf("Unable to write %s to %s", spec.label, dst)
			return err
		}
		return nil
	}

	want, ok := c.siemensDeclaredBytes(header)
	if !ok {
		return CorruptContainerError("siemensExtractData(%s): no length declaration in header", c.Path)
	}

	payload := c.siemensPayload()
	if spec.rule == lengthFromHeader {
		c.log.Infof("%d / 4 = %d words", len(payload), len(payload)/4)
	}
	if uint64(len(payload)) == want {
		if err := writeNew(dst, payload); err != nil {
			c.log.Errorf("Unable to write %s to %s", spec.label, dst)
			return err
		}
		return nil
	}

	c.logLengthMismatch()
	c.log.Infof("Looking for BF file...")
	c.log.Debugf("SRC: %s", c.Path)
	bfOK, err := c.checkSidecar(want)
	if err != nil {
		return err
	}
	if !bfOK {
		c.log.Errorf("No %s data found in either header or .bf file!", spec.label)
		return CorruptContainerError("siemensExtractData(%s): no valid payload", c.Path)
	}
	if err := copyFile(c.bfPath(), dst); err != nil {
		c.log.Errorf("Unable to copy %s from .bf file!", spec.label)
		return err
	}
	return nil
}

// siemensModifyHeader rewrites the data file reference in the extracted
// header at `headerPath` to the base name of `dataPath`. Norm headers
// also carry a data set line, and doubled carriage returns that are
// repaired on the way through.
func (c *Container) siemensModifyHeader(headerPath, dataPath string) error {
	spec := kindSpecs[c.Kind]

	raw, err := os.ReadFile(headerPath)
	if err != nil {
		c.log.Errorf("Unable to update %s header in %s", spec.label, headerPath)
		return err
	}
	c.log.Debugf("Read %s", headerPath)

	base := filepath.Base(dataPath)
	header, ok := replaceHeaderLine(string(raw), keyDataFile, keyDataFile+":="+base)
	if !ok {
		c.log.Warnf("No data file line found in %s", headerPath)
	}
	if c.Kind == KindMMRNorm {
		header, ok = replaceHeaderLine(header, keyNormDataSet, keyNormDataSet+base+"}")
		if !ok {
			c.log.Warnf("No data set line found in %s", headerPath)
		}
		header = cleanLineEndings(header)
	}

	if err := os.WriteFile(headerPath, []byte(header), 0644); err != nil {
		c.log.Errorf("Unable to update %s header in %s", spec.label, headerPath)
		return err
	}
	return nil
}

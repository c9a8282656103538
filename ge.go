package nmtools

import (
	"os"
	"strings"

	"github.com/suyashkumar/dicom"
	"go.uber.org/zap"
)

/*
===============================================================================
    GE PET/MR Containers
===============================================================================
*/

func newGEContainer(src string, ds dicom.Dataset, log *zap.SugaredLogger) (*Container, error) {
	kind, err := classifyGE(ds, log)
	if err != nil || kind == KindUnknown {
		return nil, err
	}
	switch kind {
	case KindGECTAC:
		// CTAC files are recognised but carry nothing to unpack.
		return nil, UnsupportedRawDataError("newGEContainer(%s): CTAC files carry no extractable raw data", src)
	case KindGEWCC:
		return nil, UnsupportedRawDataError("newGEContainer(%s): WCC files are not supported", src)
	}
	return &Container{Path: src, Vendor: VendorGE, Kind: kind, ds: ds, log: log}, nil
}

// classifyGE determines the GE raw data kind from the private type
// discriminators
func classifyGE(ds dicom.Dataset, log *zap.SugaredLogger) (Kind, error) {
	manufacturer, ok := GetTagString(ds, tagManufacturer)
	if !ok {
		return KindUnknown, CorruptContainerError("classifyGE: unable to read manufacturer name")
	}
	if !strings.Contains(manufacturer, "GE MEDICAL SYSTEMS") {
		return KindUnknown, nil
	}
	log.Debugf("Manufacturer = GE")

	rawType, ok := GetTagString(ds, tagGERawType)
	if !ok {
		return KindUnknown, CorruptContainerError("classifyGE: unable to read type of raw data")
	}
	log.Infof("type of raw data: %s", rawType)

	switch {
	case strings.Contains(rawType, "3"):
		// Sinogram, or CTAC in sinogram format.
		sinoType, ok := GetTagString(ds, tagGESinoType)
		if !ok {
			return KindUnknown, CorruptContainerError("classifyGE: unable to read type of sino data")
		}
		log.Infof("type of sino data: %s", sinoType)
		if strings.Contains(sinoType, "0") {
			return KindGESino, nil
		}
		if strings.Contains(sinoType, "5") {
			return KindGECTAC, nil
		}
	case strings.Contains(rawType, "4"):
		calType, ok := GetTagString(ds, tagGECalType)
		if !ok {
			return KindUnknown, CorruptContainerError("classifyGE: unable to read type of normalisation data")
		}
		log.Infof("type of normalisation data: %s", calType)
		if strings.Contains(calType, "0") {
			return KindGENorm2D, nil
		}
		if strings.Contains(calType, "2") {
			return KindGENorm3D, nil
		}
	case strings.Contains(rawType, "5"):
		calType, ok := GetTagString(ds, tagGECalType)
		if !ok {
			return KindUnknown, CorruptContainerError("classifyGE: unable to read type of calibration data")
		}
		log.Infof("type of geo data: %s", calType)
		if strings.Contains(calType, "3") {
			return KindGEGeo, nil
		}
	case strings.Contains(rawType, "7"):
		log.Errorf("pet-rd-tools does not support GE Well-counter-calibration (WCC) files yet")
		return KindGEWCC, nil
	}
	return KindUnknown, nil
}

// geIsValid reports RDF containers as valid. The RDF carries its own
// integrity metadata which is not inspected here.
func (c *Container) geIsValid() (bool, error) {
	return true, nil
}

// geExtractRDF writes the embedded RDF blob to `dst`
func (c *Container) geExtractRDF(dst string) error {
	blob, ok := getTagBytes(c.ds, tagGERDF)
	if !ok {
		return CorruptContainerError("geExtractRDF(%s): no RDF element", c.Path)
	}
	c.log.Infof("%d bytes in data field", len(blob))

	if _, err := os.Stat(dst); err == nil {
		c.log.Errorf("The data file already exists!")
		c.log.Errorf("Refusing to over-write!")
		return CorruptContainerError("geExtractRDF(%s): destination exists", dst)
	}
	if err := writeNew(dst, blob); err != nil {
		c.log.Errorf("Unable to write to %s", dst)
		return err
	}
	return nil
}

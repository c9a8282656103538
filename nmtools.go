// Package nmtools provides methods for working with PET raw data containers
package nmtools

/*
===============================================================================
    Container Taxonomy
===============================================================================
*/

// Vendor identifies the scanner manufacturer of a raw data container
type Vendor int

const (
	// VendorUnknown is the zero value, before classification
	VendorUnknown Vendor = iota
	// VendorSiemens covers the Siemens Biograph mMR
	VendorSiemens
	// VendorGE covers the GE SIGNA PET/MR
	VendorGE
)

func (v Vendor) String() string {
	switch v {
	case VendorSiemens:
		return "Siemens"
	case VendorGE:
		return "GE"
	}
	return "unknown"
}

// Kind identifies the type of raw data held in a container
type Kind int

const (
	// KindUnknown is the zero value, before classification
	KindUnknown Kind = iota

	// KindMMRList is mMR 32-bit listmode
	KindMMRList
	// KindMMRSino is an mMR emission sinogram
	KindMMRSino
	// KindMMRNorm is an mMR detector normalisation
	KindMMRNorm

	// KindGEList is GE listmode (BLF)
	KindGEList
	// KindGESino is a GE sinogram RDF
	KindGESino
	// KindGENorm2D is a GE 2D normalisation RDF
	KindGENorm2D
	// KindGENorm3D is a GE 3D normalisation RDF
	KindGENorm3D
	// KindGEGeo is a GE geometric calibration RDF
	KindGEGeo
	// KindGECTAC is a GE CT attenuation correction file in sinogram format
	KindGECTAC
	// KindGEWCC is a GE well counter calibration file
	KindGEWCC
)

func (k Kind) String() string {
	switch k {
	case KindMMRList:
		return "mMR listmode"
	case KindMMRSino:
		return "mMR sinogram"
	case KindMMRNorm:
		return "mMR norm"
	case KindGEList:
		return "GE listmode"
	case KindGESino:
		return "GE sinogram"
	case KindGENorm2D:
		return "GE norm (2D)"
	case KindGENorm3D:
		return "GE norm (3D)"
	case KindGEGeo:
		return "GE geometric calibration"
	case KindGECTAC:
		return "GE CTAC"
	case KindGEWCC:
		return "GE well counter calibration"
	}
	return "unknown"
}

// ContentKind selects which part of a container an operation refers to
type ContentKind int

const (
	// ContentHeader selects the embedded header
	ContentHeader ContentKind = iota
	// ContentRawData selects the raw payload
	ContentRawData
)

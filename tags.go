package nmtools

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/text/encoding/charmap"
)

/*
===============================================================================
    Tags
===============================================================================
*/

// Standard attributes consulted during classification.
var (
	tagImageType    = tag.Tag{Group: 0x0008, Element: 0x0008}
	tagManufacturer = tag.Tag{Group: 0x0008, Element: 0x0070}
	tagModelName    = tag.Tag{Group: 0x0008, Element: 0x1090}
)

// Siemens mMR containers wrap an Interfile header and payload in
// private elements. SMS-MI v3.2 scanners move the header to (0029,1110).
var (
	tagSiemensHeader    = tag.Tag{Group: 0x0029, Element: 0x1010}
	tagSiemensHeaderAlt = tag.Tag{Group: 0x0029, Element: 0x1110}
	tagSiemensPayload   = tag.Tag{Group: 0x7fe1, Element: 0x1010}
)

// GE PET/MR containers carry private type discriminators and a single
// RDF blob holding both header and data.
var (
	tagGESinoType = tag.Tag{Group: 0x0009, Element: 0x1019}
	tagGECalType  = tag.Tag{Group: 0x0017, Element: 0x1006}
	tagGERawType  = tag.Tag{Group: 0x0021, Element: 0x1001}
	tagGERDF      = tag.Tag{Group: 0x0023, Element: 0x1002}
)

// GetTagString returns the value of `t` within `ds` as a string.
// Multi-valued elements are joined with `\` as in the on-disk encoding.
// ok is false for an absent or empty element.
func GetTagString(ds dicom.Dataset, t tag.Tag) (string, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return "", false
	}
	var s string
	switch v := el.Value.GetValue().(type) {
	case []string:
		s = strings.Join(v, `\`)
	case []byte:
		s = decodeLatin1(v)
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		s = strings.Join(parts, `\`)
	}
	if s == "" {
		// present but empty reads as absent
		return "", false
	}
	return s, true
}

// getTagBytes returns the raw payload of `t` within `ds`. ok is false
// for an absent or empty element
func getTagBytes(ds dicom.Dataset, t tag.Tag) ([]byte, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil, false
	}
	if b, ok := el.Value.GetValue().([]byte); ok && len(b) > 0 {
		return b, true
	}
	return nil, false
}

// decodeLatin1 decodes ISO 8859-1 bytes, the default character repertoire
// for text smuggled inside private elements
func decodeLatin1(src []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(src)
	if err != nil {
		return string(src)
	}
	return strings.TrimRight(string(decoded), "\x00 ")
}

// 2>/dev/null;/usr/bin/env go run $0 $@; exit $?
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	nmtools "github.com/UCL/pet-rd-tools"
	"github.com/UCL/pet-rd-tools/common"
	"github.com/UCL/pet-rd-tools/gendcm"
)

/*
===============================================================================
    gensample: writes one sample container of each supported kind, for
    exercising nm-validate / nm-extract / nm-mrac2mu against known inputs
===============================================================================
*/

var console = common.NewConsoleLogger(zapcore.Lock(os.Stdout))

const (
	listWords  = 2048
	sinoBytes  = 4096
	rdfBytes   = 1024
	mracSlices = 8
	mracSide   = 32
)

func check(err error) {
	if err != nil {
		console.Fatalf("error: %v", err)
	}
}

func imageType(combined string) []string {
	return strings.Split(combined, `\`)
}

// ramp returns `n` bytes cycling 0x00..0xff, so truncation is visible in a
// hex dump
func ramp(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func writeSiemens(outDir string) {
	path := filepath.Join(outDir, "listmode.dcm")
	check(gendcm.WriteMMRContainer(path, gendcm.MMRSpec{
		ImageType: imageType(`ORIGINAL\PRIMARY\PET_LISTMODE`),
		Header:    gendcm.MMRListHeader(listWords),
		Payload:   ramp(listWords * 4),
	}))
	console.Infof("wrote %s", path)

	path = filepath.Join(outDir, "sinogram.dcm")
	check(gendcm.WriteMMRContainer(path, gendcm.MMRSpec{
		ImageType: imageType(`ORIGINAL\PRIMARY\PET_EM_SINO`),
		Header:    gendcm.MMRSinoHeader(),
		Payload:   ramp(sinoBytes),
	}))
	console.Infof("wrote %s", path)

	path = filepath.Join(outDir, "norm.dcm")
	check(gendcm.WriteMMRContainer(path, gendcm.MMRSpec{
		ImageType: imageType(`ORIGINAL\PRIMARY\PET_NORM`),
		Header:    gendcm.MMRNormHeader(),
		Payload:   ramp(nmtools.NormPayloadBytes),
	}))
	console.Infof("wrote %s", path)

	path = filepath.Join(outDir, "sample.ptd")
	check(gendcm.WritePTD(path, ramp(listWords*4), gendcm.MMRListHeader(listWords)))
	console.Infof("wrote %s", path)
}

func writeGE(outDir string) {
	path := filepath.Join(outDir, "ge_sino.dcm")
	check(gendcm.WriteGEContainer(path, gendcm.GESpec{
		RawType:  "3",
		SinoType: "0",
		RDF:      ramp(rdfBytes),
	}))
	console.Infof("wrote %s", path)

	path = filepath.Join(outDir, "ge_norm3d.dcm")
	check(gendcm.WriteGEContainer(path, gendcm.GESpec{
		RawType: "4",
		CalType: "2",
		RDF:     ramp(rdfBytes),
	}))
	console.Infof("wrote %s", path)

	path = filepath.Join(outDir, "ge_geo.dcm")
	check(gendcm.WriteGEContainer(path, gendcm.GESpec{
		RawType: "5",
		CalType: "3",
		RDF:     ramp(rdfBytes),
	}))
	console.Infof("wrote %s", path)
}

// writeMRAC emits a small axial MRAC series: a square of soft tissue scaled
// by 10000, surrounded by air
func writeMRAC(outDir string) {
	seriesDir := filepath.Join(outDir, "mrac")
	check(os.MkdirAll(seriesDir, 0755))

	pixels := make([]uint16, mracSide*mracSide)
	for y := 8; y < mracSide-8; y++ {
		for x := 8; x < mracSide-8; x++ {
			pixels[y*mracSide+x] = 960
		}
	}

	for i := 0; i < mracSlices; i++ {
		path := filepath.Join(seriesDir, fmt.Sprintf("slice_%02d.dcm", i))
		check(gendcm.WriteMRSlice(path, gendcm.MRSliceSpec{
			SeriesUID:   "1.2.840.99.7.1",
			StudyDate:   "20180529",
			SeriesDate:  "20180529",
			StudyTime:   "143055",
			Rows:        mracSide,
			Cols:        mracSide,
			Spacing:     [2]float64{2.08626, 2.08626},
			Position:    [3]float64{-33.4, -33.4, float64(i) * 2.03125},
			Orientation: [6]float64{1, 0, 0, 0, 1, 0},
			Slope:       1,
			Pixels:      pixels,
		}))
		console.Infof("wrote %s", path)
	}
}

func main() {
	if len(os.Args) != 2 {
		console.Fatalf("usage: %s out_dir", filepath.Base(os.Args[0]))
	}
	outDir := os.Args[1]
	check(os.MkdirAll(outDir, 0755))

	writeSiemens(outDir)
	writeGE(outDir)
	writeMRAC(outDir)

	console.Infof("sample set complete")
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/UCL/pet-rd-tools/common"
	"github.com/UCL/pet-rd-tools/mumap"
)

/*
===============================================================================
    nm-mrac2mu: mMR MRAC to mu-map conversion
===============================================================================
*/

const appName = "nm-mrac2mu"

var baseFile = filepath.Base(os.Args[0])

var (
	inputDir    string
	outputPath  string
	orientCode  string
	headProto   bool
	paramsPath  string
	writeLog    bool
	showVersion bool
)

func usage() {
	fmt.Printf("%s version %s\n", appName, common.ToolsVersion)
	fmt.Printf("usage: %s -i mrac_dicom_dir -o mumap_file [flags]\n", baseFile)
	flag.PrintDefaults()
	os.Exit(1)
}

// newLogger builds the console logger, teeing into a log file in the working
// directory when requested
func newLogger() *zap.SugaredLogger {
	writers := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	if writeLog {
		name := fmt.Sprintf("%s-%d.log", appName, time.Now().Unix())
		f, err := os.Create(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot create log file %s: %v\n", name, err)
			os.Exit(1)
		}
		writers = append(writers, zapcore.AddSync(f))
	}
	return common.NewConsoleLogger(writers...)
}

func main() {
	flag.StringVar(&inputDir, "input", "", "Input directory")
	flag.StringVar(&inputDir, "i", "", "Input directory (shorthand)")
	flag.StringVar(&outputPath, "output", "", "Output file")
	flag.StringVar(&outputPath, "o", "", "Output file (shorthand)")
	flag.StringVar(&orientCode, "orient", "RAI", "Output orientation: RAI, RAS or LPS")
	flag.BoolVar(&headProto, "head", false, "Reslice for the mMR head protocol")
	flag.StringVar(&paramsPath, "params", "", "Scanner parameter file (YAML)")
	flag.BoolVar(&writeLog, "log", false, "Write log file")
	flag.BoolVar(&writeLog, "l", false, "Write log file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Print version number")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("%s : v%s\n", appName, common.ToolsVersion)
		return
	}
	if inputDir == "" || outputPath == "" {
		usage()
	}

	log := newLogger()
	start := time.Now()
	log.Infof("Started: %s", start.Format(time.ANSIC))
	log.Infof("Running '%s' version: %s", appName, common.ToolsVersion)

	params := mumap.DefaultParams()
	if paramsPath != "" {
		var err error
		if params, err = mumap.LoadParams(paramsPath); err != nil {
			log.Errorf("Unable to read parameter file %s!", paramsPath)
			os.Exit(1)
		}
	}

	conv, err := mumap.NewConverter(inputDir, orientCode, params, log)
	if err != nil {
		log.Errorf("Failed to create MRAC converter!")
		os.Exit(1)
	}
	conv.SetHead(headProto)

	if err := conv.Update(); err != nil {
		log.Errorf("Failed to scale and reslice")
		os.Exit(1)
	}
	log.Infof("Scaling and reslicing complete")

	if err := conv.Write(outputPath); err != nil {
		log.Errorf("Failed to write output file!")
		os.Exit(1)
	}
	log.Infof("Writing complete")

	log.Infof("Time taken: %d seconds", int(time.Since(start).Seconds()))
	log.Infof("Ended: %s", time.Now().Format(time.ANSIC))
}

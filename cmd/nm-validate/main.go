package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	nmtools "github.com/UCL/pet-rd-tools"
	"github.com/UCL/pet-rd-tools/common"
)

/*
===============================================================================
    nm-validate: PET raw data validation
===============================================================================
*/

const appName = "nm-validate"

var baseFile = filepath.Base(os.Args[0])

var (
	inputPath   string
	writeLog    bool
	showVersion bool
)

func usage() {
	fmt.Printf("%s version %s\n", appName, common.ToolsVersion)
	fmt.Printf("usage: %s -i raw_data_file [flags]\n", baseFile)
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
	flag.StringVar(&inputPath, "input", "", "Input file")
	flag.StringVar(&inputPath, "i", "", "Input file (shorthand)")
	flag.BoolVar(&writeLog, "log", false, "Write log file")
	flag.BoolVar(&writeLog, "l", false, "Write log file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Print version number")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("%s : v%s\n", appName, common.ToolsVersion)
		return
	}
	if inputPath == "" {
		usage()
	}

	log := newLogger()
	start := time.Now()
	log.Infof("Started: %s", start.Format(time.ANSIC))
	log.Infof("Running '%s' version: %s", appName, common.ToolsVersion)

	info, err := os.Stat(inputPath)
	if err != nil {
		log.Errorf("Input path: %s does not exist!", inputPath)
		os.Exit(1)
	}
	if info.IsDir() {
		log.Errorf("%s does not appear to be a file!", inputPath)
		os.Exit(1)
	}
	log.Infof("Extension:\t%s", filepath.Ext(inputPath))

	log.Infof("Trying to read as DICOM...")
	status := nmtools.ValidateFile(inputPath, log)

	switch status {
	case nmtools.StatusGood:
		log.Infof("File is valid")
	case nmtools.StatusBad:
		log.Errorf("File is INVALID")
	case nmtools.StatusIOError:
		log.Errorf("Cannot open file: %s", inputPath)
	}

	log.Infof("Time taken: %d seconds", int(time.Since(start).Seconds()))
	log.Infof("Ended: %s", time.Now().Format(time.ANSIC))

	if status != nmtools.StatusGood {
		os.Exit(1)
	}
}

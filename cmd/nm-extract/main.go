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
    nm-extract: PET raw data extraction
===============================================================================
*/

const appName = "nm-extract"

var baseFile = filepath.Base(os.Args[0])

var (
	inputPath   string
	outputDir   string
	prefixName  string
	noUpdate    bool
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
	flag.StringVar(&outputDir, "output", "", "Output directory")
	flag.StringVar(&outputDir, "o", "", "Output directory (shorthand)")
	flag.StringVar(&prefixName, "prefix", "", "Output filename prefix")
	flag.StringVar(&prefixName, "p", "", "Output filename prefix (shorthand)")
	flag.BoolVar(&noUpdate, "noupdate", false, "Do not update header after extraction")
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
		log.Errorf("Input path '%s' does not exist!", inputPath)
		os.Exit(1)
	}
	if info.IsDir() {
		log.Errorf("%s does not appear to be a file!", inputPath)
		os.Exit(1)
	}

	container, err := nmtools.OpenContainer(inputPath, log)
	if err != nil {
		log.Errorf("Aborting!")
		os.Exit(1)
	}

	outDir := outputDir
	if outDir == "" {
		outDir = filepath.Dir(inputPath)
		log.Infof("No output directory specified. Placing output in same directory as input.")
	}
	if _, err := os.Stat(outDir); err != nil {
		log.Infof("Output path %s does not exist!", outDir)
		log.Infof("Creating output path %s", outDir)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Errorf("Unable to create output directory!")
			os.Exit(1)
		}
	}

	// The standard output names derive from the input name, or from the
	// requested prefix with the input's extension preserved.
	namePath := inputPath
	if prefixName != "" {
		namePath = filepath.Join(filepath.Dir(inputPath), prefixName+filepath.Ext(inputPath))
	}

	var dataPath string
	if dataName := container.StdFileName(namePath, nmtools.ContentRawData); dataName != "" {
		dataPath = filepath.Join(outDir, dataName)
		log.Infof("Writing raw data to: %s", dataPath)
		if err := container.ExtractData(dataPath); err != nil {
			log.Errorf("Data extraction failed!")
			os.Exit(1)
		}
	}

	headerPath := filepath.Join(outDir, container.StdFileName(namePath, nmtools.ContentHeader))
	log.Infof("Writing header to: %s", headerPath)
	if err := container.ExtractHeader(headerPath); err != nil {
		log.Errorf("Header extraction failed!")
		os.Exit(1)
	}
	log.Infof("Header written successfully.")

	if !noUpdate {
		if err := container.ModifyHeader(headerPath, dataPath); err != nil {
			log.Errorf("Header update failed!")
			os.Exit(1)
		}
		log.Infof("Header updated successfully.")
	}

	log.Infof("Time taken: %d seconds", int(time.Since(start).Seconds()))
	log.Infof("Ended: %s", time.Now().Format(time.ANSIC))
}

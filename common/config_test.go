package common

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestIntFromEnv(t *testing.T) {
	testCases := []struct {
		input  string
		output int
	}{
		{input: "100", output: 100},
		{input: "-100", output: -100},
	}
	for _, testCase := range testCases {
		err := os.Setenv("NMTOOLS_TEST", testCase.input)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		val, found := intFromEnv("NMTOOLS_TEST")
		if !found {
			t.Fatal("NMTOOLS_TEST was not found in environment")
		}
		if val != testCase.output {
			t.Fatalf("got %d (!= %d)", val, testCase.output)
		}
	}
	// unset environment variable then try to retrieve
	err := os.Unsetenv("NMTOOLS_TEST")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	_, found := intFromEnv("NMTOOLS_TEST")
	if found {
		t.Fatalf("NMTOOLS_TEST was found after unsetting")
	}
}

func TestIntFromEnvDefault(t *testing.T) {
	// unset environment variable then try to retrieve
	err := os.Unsetenv("NMTOOLS_TEST")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	val := intFromEnvDefault("NMTOOLS_TEST", 9000)
	if val != 9000 {
		t.Fatalf("got %d (!= 9000)", val)
	}
	os.Setenv("NMTOOLS_TEST", "42")
	val = intFromEnvDefault("NMTOOLS_TEST", 9000)
	if val != 42 {
		t.Fatalf("got %d (!= 42)", val)
	}
}

func TestStrFromEnv(t *testing.T) {
	testCases := []struct {
		input  string
		output string
	}{
		{input: "ascii", output: "ascii"},
		{input: "-100", output: "-100"},
	}
	for _, testCase := range testCases {
		err := os.Setenv("NMTOOLS_TEST", testCase.input)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		val, found := strFromEnv("NMTOOLS_TEST")
		if !found {
			t.Fatal("NMTOOLS_TEST was not found in environment")
		}
		if val != testCase.output {
			t.Fatalf("got %s (!= %s)", val, testCase.output)
		}
	}
	// unset environment variable then try to retrieve
	err := os.Unsetenv("NMTOOLS_TEST")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	_, found := strFromEnv("NMTOOLS_TEST")
	if found {
		t.Fatalf("NMTOOLS_TEST was found after unsetting")
	}
}

func TestStrFromEnvDefault(t *testing.T) {
	// unset environment variable then try to retrieve
	err := os.Unsetenv("NMTOOLS_TEST")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	val := strFromEnvDefault("NMTOOLS_TEST", "ascii")
	if val != "ascii" {
		t.Fatalf(`got "%s" (!= "ascii")`, val)
	}
	os.Setenv("NMTOOLS_TEST", "42")
	val = strFromEnvDefault("NMTOOLS_TEST", "ascii")
	if val != "42" {
		t.Fatalf(`got "%s" (!= "42")`, val)
	}
}

func TestBoolFromEnv(t *testing.T) {
	testCases := []struct {
		input  string
		output bool
	}{
		{input: "true", output: true},
		{input: "1", output: true},
		{input: "false", output: false},
		{input: "0", output: false},
	}
	for _, testCase := range testCases {
		err := os.Setenv("NMTOOLS_TEST", testCase.input)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		val, found := boolFromEnv("NMTOOLS_TEST")
		if !found {
			t.Fatal("NMTOOLS_TEST was not found in environment")
		}
		if val != testCase.output {
			t.Fatalf("got %t (!= %t)", val, testCase.output)
		}
	}
	// unset environment variable then try to retrieve
	err := os.Unsetenv("NMTOOLS_TEST")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	_, found := boolFromEnv("NMTOOLS_TEST")
	if found {
		t.Fatalf("NMTOOLS_TEST was found after unsetting")
	}
}

func TestBoolFromEnvDefault(t *testing.T) {
	// unset environment variable then try to retrieve
	err := os.Unsetenv("NMTOOLS_TEST")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	val := boolFromEnvDefault("NMTOOLS_TEST", true)
	if val != true {
		t.Fatalf(`got %t (!= true)`, val)
	}
	os.Setenv("NMTOOLS_TEST", "false")
	val = boolFromEnvDefault("NMTOOLS_TEST", true)
	if val != false {
		t.Fatalf(`got %t (!= false)`, val)
	}
}

func TestGetConfig(t *testing.T) {
	os.Setenv("NMTOOLS_OPENFILELIMIT", "100")
	defer os.Unsetenv("NMTOOLS_OPENFILELIMIT")
	config._set = false
	cfg := GetConfig()
	if cfg.OpenFileLimit != 100 {
		t.Fatalf("OpenFileLimit = %d (!= 100)", cfg.OpenFileLimit)
	}
	if cfg.Version != ToolsVersion {
		t.Fatalf(`Version = "%s" (!= "%s")`, cfg.Version, ToolsVersion)
	}
}

func TestOverrideConfig(t *testing.T) {
	newcfg := Config{OpenFileLimit: 256, LogLevel: "info"}
	OverrideConfig(newcfg)
	cfg := GetConfig()
	if cfg.OpenFileLimit != 256 {
		t.Fatalf("OpenFileLimit = %d (!= 256)", cfg.OpenFileLimit)
	}
}

func TestConcurrentlyWalkDir(t *testing.T) {
	OverrideConfig(Config{OpenFileLimit: 8, LogLevel: "info"})
	found := make(chan string, 16)
	tmpdir := t.TempDir()
	for i := 0; i < 10; i++ {
		err := os.WriteFile(filepath.Join(tmpdir, strconv.Itoa(i)), []byte("x"), 0644)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
	}
	err := ConcurrentlyWalkDir(tmpdir, func(path string) {
		found <- path
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	close(found)
	files := make([]string, 0)
	for path := range found {
		files = append(files, path)
	}
	if len(files) != 10 {
		t.Fatalf("reported %d files (!= 10)", len(files))
	}
}

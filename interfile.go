package nmtools

import (
	"regexp"
	"strconv"
	"strings"
)

/*
===============================================================================
    Interfile Headers
===============================================================================
*/

// Labels of the header lines consulted or rewritten during unpacking.
const (
	keyWordCount   = "%total listmode word counts"
	keyDataFile    = "name of data file"
	keyNormDataSet = "%data set [1]:={0,,"
)

var numberRE = regexp.MustCompile("[0-9]+")

// findHeaderLine returns the header line containing `key`, from the key
// itself up to (not including) the line feed
func findHeaderLine(header, key string) (string, bool) {
	start := strings.Index(header, key)
	if start < 0 {
		return "", false
	}
	line := header[start:]
	if end := strings.Index(line, "\n"); end >= 0 {
		line = line[:end]
	}
	return line, true
}

// parseFirstUint extracts the first run of digits in `s`
func parseFirstUint(s string) (uint64, bool) {
	m := numberRE.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// replaceHeaderLine swaps the content of the line containing `key` for
// `content`, leaving the line terminator untouched. The header is
// returned unchanged when no line contains `key`.
func replaceHeaderLine(header, key, content string) (string, bool) {
	start := strings.Index(header, key)
	if start < 0 {
		return header, false
	}
	line := header[start:]
	if end := strings.Index(line, "\n"); end >= 0 {
		line = line[:end]
	}
	line = strings.TrimRight(line, "\r")
	return header[:start] + content + header[start+len(line):], true
}

// cleanLineEndings rewrites `header` with a single CRLF terminator per
// line, repairing the doubled carriage returns that mMR norm headers
// carry. Anything after a doubled carriage return on the same line is
// scanner garbage and is dropped. Applying the repair twice is a no-op.
func cleanLineEndings(header string) string {
	lines := strings.Split(header, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	var out strings.Builder
	for _, line := range lines {
		if i := strings.Index(line, "\r\r"); i >= 0 {
			line = line[:i]
		} else {
			line = strings.TrimRight(line, "\r")
		}
		out.WriteString(line)
		out.WriteString("\r\n")
	}
	if out.Len() == 0 {
		return "\r\n"
	}
	return out.String()
}

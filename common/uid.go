package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// UIDRoot is the root under which synthetic instance UIDs are generated.
// The 2.25 arc holds UUID-derived UIDs and requires no registration.
const UIDRoot = "2.25."

// NewRandInstanceUID generates a random DICOM instance UID from UIDRoot
func NewRandInstanceUID() (string, error) {
	prefix := UIDRoot
	max := big.Int{}
	max.SetString(strings.Repeat("9", 64-len(prefix)), 10)
	randval, err := rand.Int(rand.Reader, &max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", prefix, randval), nil
}

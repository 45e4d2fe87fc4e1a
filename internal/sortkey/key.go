// Package sortkey derives the ordering key of an input file and sorts files by it.
//
// Two modes exist. With a digit length of zero the key is the raw filename and
// files sort alphabetically. With a positive digit length the key is a fixed-width
// string of digits taken from the numbers embedded in the filename stem.
package sortkey

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoNumberFound is returned when numeric mode is requested for a filename without digits.
var ErrNoNumberFound = errors.New("no number found in filename")

// ErrInvalidDigitLength is returned for a negative digit length.
var ErrInvalidDigitLength = errors.New("digit length must not be negative")

var digitRun = regexp.MustCompile(`[0-9]+`)

// KeyError records the filename a key could not be derived from.
type KeyError struct {
	Filename string
	Err      error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// Key is the value files are ordered by.
type Key struct {
	Value   string
	Numeric bool
}

func (k Key) String() string {
	return k.Value
}

// Compare returns -1, 0 or +1. Numeric keys of one run share a width, so
// comparing their strings orders them exactly as their integer values.
func (k Key) Compare(other Key) int {
	return strings.Compare(k.Value, other.Value)
}

// Extract derives the key of filename.
//
// In numeric mode only the stem is examined, so digits in the extension
// ("mp4") never contribute. Digit runs are taken from the right: the last run
// first, then each run to its left is prepended until digitLength digits are
// gathered. The result is then left-padded with zeros or cut down to its
// rightmost digitLength characters.
//
//	Extract("clip_007.mp4", 2) // "07"
//	Extract("x5.mp4", 3)       // "005"
//	Extract("s01e12.mkv", 4)   // "0112"
func Extract(filename string, digitLength int) (Key, error) {
	if digitLength < 0 {
		return Key{}, &KeyError{Filename: filename, Err: ErrInvalidDigitLength}
	}
	if digitLength == 0 {
		return Key{Value: filename}, nil
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	runs := digitRun.FindAllString(stem, -1)
	if len(runs) == 0 {
		return Key{}, &KeyError{Filename: filename, Err: ErrNoNumberFound}
	}

	acc := ""
	for i := len(runs) - 1; i >= 0 && len(acc) < digitLength; i-- {
		acc = runs[i] + acc
	}

	if len(acc) < digitLength {
		acc = strings.Repeat("0", digitLength-len(acc)) + acc
	}
	if len(acc) > digitLength {
		acc = acc[len(acc)-digitLength:]
	}

	return Key{Value: acc, Numeric: true}, nil
}

package csvio

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
)

// SampleSize is how much of a file DetectHeader looks at.
const SampleSize = 1024

const sniffRows = 21

// columnKind is either numeric or a fixed string length.
type columnKind struct {
	numeric bool
	length  int
}

func kindOf(cell string) columnKind {
	if isNumeric(cell) {
		return columnKind{numeric: true}
	}
	return columnKind{length: len([]rune(cell))}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// sampleOf returns the leading SampleSize bytes of data, cut back to the last
// complete line when the data is longer than that.
func sampleOf(data []byte) []byte {
	if len(data) <= SampleSize {
		return data
	}
	sample := data[:SampleSize]
	if i := bytes.LastIndexByte(sample, '\n'); i >= 0 {
		return sample[:i+1]
	}
	return sample
}

// DetectHeader guesses whether the first row of sample is a header.
//
// Every later row with the header's width votes per column: a column whose
// cells are all numeric, or all of one length, is kept; the header cell then
// scores +1 when it breaks that pattern and -1 when it fits it. Columns that
// are inconsistent across rows do not vote. A positive total means header.
func DetectHeader(sample []byte) bool {
	r := csv.NewReader(bytes.NewReader(sample))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return false
	}

	kinds := make(map[int]columnKind, len(header))
	dropped := make(map[int]bool)
	for checked := 0; checked < sniffRows; checked++ {
		row, err := r.Read()
		if err != nil {
			break
		}
		if len(row) != len(header) {
			continue
		}
		for col := range header {
			if dropped[col] {
				continue
			}
			k := kindOf(row[col])
			prev, seen := kinds[col]
			switch {
			case !seen:
				kinds[col] = k
			case prev != k:
				delete(kinds, col)
				dropped[col] = true
			}
		}
	}

	delta := 0
	for col, k := range kinds {
		if k.numeric {
			if isNumeric(header[col]) {
				delta--
			} else {
				delta++
			}
			continue
		}
		if len([]rune(header[col])) != k.length {
			delta++
		} else {
			delta--
		}
	}
	return delta > 0
}

package seisan

import (
	"fmt"
	"strconv"
	"strings"
)

// lineLength is the length of each event header line.
const lineLength = 80

// minSummaryLines is the number of channel summary lines SEISAN always reserves.
const minSummaryLines = 10

// readEventHeader reads the event file header and returns the number of channels.
// The reader is left at the first channel header.
func readEventHeader(rr *recordReader) (int, error) {
	line, err := rr.read(lineLength)
	if err != nil {
		return 0, err
	}

	n, err := channelCount(line)
	if err != nil {
		return 0, err
	}

	// line 2 is free text.
	if _, err = rr.read(lineLength); err != nil {
		return 0, err
	}

	for i := 0; i < summaryLines(n); i++ {
		if _, err = rr.read(lineLength); err != nil {
			return 0, err
		}
	}

	return n, nil
}

// channelCount parses the number of channels from the first event header line.
func channelCount(line []byte) (int, error) {
	s := string(line[30:33])

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, Error{Kind: InvalidHeader, Err: fmt.Errorf("channel count %q: %w", s, err)}
	}

	if n <= 0 {
		return 0, Error{Kind: InvalidHeader, Err: fmt.Errorf("channel count %d", n)}
	}

	return n, nil
}

// summaryLines returns the number of channel summary lines in the event header
// for n channels, three channels per line.
func summaryLines(n int) int {
	l := (n + 2) / 3
	if l < minSummaryLines {
		return minSummaryLines
	}
	return l
}

package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prefix precedes every invoice number.
const Prefix = "RE"

// FormatNumber returns an invoice number like "RE0001".
func FormatNumber(seq int) string {
	return fmt.Sprintf("%s%04d", Prefix, seq)
}

// ParseNumber parses "RE0001" into its sequence.
func ParseNumber(number string) (int, error) {
	digits, ok := strings.CutPrefix(number, Prefix)
	if !ok || len(digits) < 4 {
		return 0, fmt.Errorf("invalid invoice number format: %q", number)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("invalid sequence in invoice number %q", number)
	}
	return seq, nil
}

// Filename returns the artifact stem "<number>_<yyyymmdd>_<customer>".
func Filename(number string, date time.Time, customerID int) string {
	return fmt.Sprintf("%s_%s_%d", number, date.Format("20060102"), customerID)
}

package importer

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrTooFewLines is returned when a file has no data row after its header.
var ErrTooFewLines = errors.New("CSV file must have a header row and at least one data row")

// ParseCSV splits text into rows of fields.
//
// Quote handling is a plain toggle: a double quote switches quoted mode on or
// off and is dropped from the output, and commas inside quoted mode are kept.
// Doubled quotes are not treated as an escaped quote. Blank lines are skipped
// and fields are trimmed.
func ParseCSV(text string) ([][]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, parseLine(line))
	}

	if len(rows) < 2 {
		return nil, ErrTooFewLines
	}
	return rows, nil
}

func parseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// DecodeText prepares uploaded bytes for parsing: invalid UTF-8 sequences are
// replaced and a leading byte order mark is removed.
func DecodeText(data []byte) string {
	data = sanitizeUTF8(data)
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return string(data)
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Package punch turns raw time-clock exports into per-employee-day in/out
// pairs.
package punch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
)

const columnCount = 6

// MaxLineBytes caps a single row. Longer lines are rejected as row errors.
const MaxLineBytes = 64 * 1024

var ErrNilContent = errors.New("punch content is nil")

// Direction is the in/out flag of a punch.
type Direction int

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// Punch is one validated CSV row.
type Punch struct {
	Row            int
	EmployeeNumber string
	FirstName      string
	LastName       string
	Date           time.Time
	Time           string
	Direction      Direction
}

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

type ParseResult struct {
	Parsed []Punch
	Errors []RowError
	Header bool
}

// Parse reads pipe-delimited rows
// employeeNumber|firstName|lastName|date(dd/mm/yyyy)|time|flag.
// Row problems are collected, never returned; only a nil reader or a read
// failure is an error.
func Parse(r io.Reader) (ParseResult, error) {
	var result ParseResult
	if r == nil {
		return result, ErrNilContent
	}

	reader := bufio.NewReaderSize(r, MaxLineBytes)

	row := 0
	seenContent := false
	for {
		raw, tooLong, err := readLine(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read punch content: %w", err)
		}
		row++
		if tooLong {
			seenContent = true
			result.Errors = append(result.Errors, RowError{Row: row, Reason: fmt.Sprintf("line exceeds %d bytes", MaxLineBytes)})
			continue
		}

		line := strings.TrimSpace(raw)
		if row == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" {
			continue
		}

		fields := splitRow(line)
		if !seenContent {
			seenContent = true
			if isHeader(fields) {
				result.Header = true
				continue
			}
		}

		p, reason := parseRow(row, fields)
		if reason != "" {
			result.Errors = append(result.Errors, RowError{Row: row, Reason: reason})
			continue
		}
		result.Parsed = append(result.Parsed, p)
	}
	return result, nil
}

// readLine returns the next line without its terminator. A line that does not
// fit the reader's buffer is drained and reported as tooLong.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	chunk, isPrefix, err := r.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(chunk), false, nil
	}
	for isPrefix {
		_, isPrefix, err = r.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", true, err
		}
	}
	return "", true, nil
}

func splitRow(line string) []string {
	fields := strings.Split(line, "|")
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
	}
	// tolerate a trailing delimiter
	for len(fields) > columnCount && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// isHeader reports whether the first content line is a column header. A line
// carrying a valid in/out flag is always data, so a corrupt first row is
// still reported.
func isHeader(fields []string) bool {
	if len(fields) >= columnCount && isFlag(fields[columnCount-1]) {
		return false
	}
	joined := strings.ToLower(strings.Join(fields, "|"))
	for _, token := range headerTokens {
		if strings.Contains(joined, token) {
			return true
		}
	}
	return false
}

var headerTokens = []string{"employee", "date", "time", "flag", "nik", "name"}

func isFlag(s string) bool {
	return s == "0" || s == "1"
}

func parseRow(row int, fields []string) (Punch, string) {
	if len(fields) != columnCount {
		return Punch{}, fmt.Sprintf("expected %d columns, got %d", columnCount, len(fields))
	}
	if fields[0] == "" {
		return Punch{}, "employee number is empty"
	}
	date, err := clock.ParseDay(fields[3])
	if err != nil {
		return Punch{}, fmt.Sprintf("invalid date %q", fields[3])
	}
	hhmm, err := clock.NormalizeClock(fields[4])
	if err != nil {
		return Punch{}, fmt.Sprintf("invalid time %q", fields[4])
	}

	var dir Direction
	switch fields[5] {
	case "0":
		dir = DirectionIn
	case "1":
		dir = DirectionOut
	default:
		return Punch{}, fmt.Sprintf("invalid flag %q, expected 0 or 1", fields[5])
	}

	return Punch{
		Row:            row,
		EmployeeNumber: fields[0],
		FirstName:      fields[1],
		LastName:       fields[2],
		Date:           date,
		Time:           hhmm,
		Direction:      dir,
	}, ""
}

// Group is every punch of one employee on one calendar day, in row order.
type Group struct {
	EmployeeNumber string
	FirstName      string
	LastName       string
	Date           time.Time
	Punches        []Punch
}

// GroupByEmployeeAndDate buckets punches by (employee number, date). Groups
// keep the order in which they first appear.
func GroupByEmployeeAndDate(parsed []Punch) []Group {
	type groupKey struct {
		number string
		date   time.Time
	}
	index := make(map[groupKey]int)
	var groups []Group
	for _, p := range parsed {
		k := groupKey{number: p.EmployeeNumber, date: p.Date}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{
				EmployeeNumber: p.EmployeeNumber,
				FirstName:      p.FirstName,
				LastName:       p.LastName,
				Date:           p.Date,
			})
		}
		groups[i].Punches = append(groups[i].Punches, p)
	}
	return groups
}

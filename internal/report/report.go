// Package report renders a speccheck result matrix as a terminal table, a
// markdown table or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/mahdiidarabi/eddsa-speccheck/pkg/speccheck"
)

// Options controls rendering.
type Options struct {
	// Format is speccheck.FormatTable, FormatMarkdown or FormatJSON.
	Format string
	// Color enables ANSI colors in the table format.
	Color bool
	// Explain appends rejection reasons and verifier errors.
	Explain bool
}

// Write renders m to w.
func Write(w io.Writer, m *speccheck.ResultMatrix, opts Options) error {
	switch opts.Format {
	case speccheck.FormatTable, "":
		return WriteTable(w, m, opts)
	case speccheck.FormatMarkdown:
		return WriteMarkdown(w, m, opts)
	case speccheck.FormatJSON:
		return WriteJSON(w, m)
	default:
		return errors.Errorf("unknown report format %q", opts.Format)
	}
}

type palette struct {
	accept, reject, fail, header *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		accept: color.New(color.FgGreen),
		reject: color.New(color.FgRed),
		fail:   color.New(color.FgYellow, color.Bold),
		header: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.accept, p.reject, p.fail, p.header} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) symbol(o speccheck.Outcome) string {
	switch o {
	case speccheck.Accept:
		return p.accept.Sprint(o.Symbol())
	case speccheck.Reject:
		return p.reject.Sprint(o.Symbol())
	default:
		return p.fail.Sprint(o.Symbol())
	}
}

func indexHeader(m *speccheck.ResultMatrix) []string {
	header := make([]string, 0, m.Vectors+1)
	header = append(header, "Verifier")
	for j := 0; j < m.Vectors; j++ {
		header = append(header, strconv.Itoa(j))
	}
	return header
}

// WriteTable renders a bordered table with a summary line per run.
//
// Example:
//
//	+-----------+---+---+---+-------+
//	| Verifier  | 0 | 1 | 2 | V/X/! |
//	+-----------+---+---+---+-------+
//	| reference | V | X | V | 2/1/0 |
//	| zip215    | V | V | V | 3/0/0 |
//	+-----------+---+---+---+-------+
func WriteTable(w io.Writer, m *speccheck.ResultMatrix, opts Options) error {
	p := newPalette(opts.Color)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeader(append(indexHeader(m), "V/X/!"))

	for i, name := range m.Verifiers {
		row := make([]string, 0, m.Vectors+2)
		row = append(row, name)
		for _, cell := range m.Cells[i] {
			row = append(row, p.symbol(cell.Outcome))
		}
		row = append(row, fmt.Sprintf("%d/%d/%d",
			m.Count(name, speccheck.Accept),
			m.Count(name, speccheck.Reject),
			m.Count(name, speccheck.Error)))
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(w, "%s %s\n", p.header.Sprint("run:"), m.RunID)
	fmt.Fprintf(w, "%s %s (%d vectors, fingerprint %s)\n", p.header.Sprint("corpus:"), m.Source, m.Vectors, shortFingerprint(m.Fingerprint))
	fmt.Fprintf(w, "%s %s\n", p.header.Sprint("disagreements:"), formatIndices(m.Disagreements()))
	fmt.Fprintf(w, "%s %s\n", p.header.Sprint("elapsed:"), m.Elapsed.Round(time.Microsecond))

	if opts.Explain {
		writeDetails(w, m)
	}
	return nil
}

// WriteMarkdown renders a pipe table followed by a legend.
func WriteMarkdown(w io.Writer, m *speccheck.ResultMatrix, opts Options) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetHeader(indexHeader(m))

	for i, name := range m.Verifiers {
		row := make([]string, 0, m.Vectors+1)
		row = append(row, name)
		for _, cell := range m.Cells[i] {
			row = append(row, cell.Outcome.Symbol())
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "V = accept, X = reject, ! = error. Corpus `%s`, fingerprint `%s`, run `%s`.\n",
		m.Source, shortFingerprint(m.Fingerprint), m.RunID)
	fmt.Fprintf(w, "Disagreements: %s\n", formatIndices(m.Disagreements()))

	if opts.Explain {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "```")
		writeDetails(w, m)
		fmt.Fprintln(w, "```")
	}
	return nil
}

// writeDetails lists, per verifier, the error of every Error cell and the
// reason of every explained rejection.
func writeDetails(w io.Writer, m *speccheck.ResultMatrix) {
	for i, name := range m.Verifiers {
		for j, cell := range m.Cells[i] {
			switch {
			case cell.Outcome == speccheck.Error:
				fmt.Fprintf(w, "%s[%d]: error: %v\n", name, j, cell.Err)
			case cell.Reason != nil:
				fmt.Fprintf(w, "%s[%d]: %v\n", name, j, cell.Reason)
			}
		}
	}
}

type jsonRow struct {
	Name     string         `json:"name"`
	Outcomes []string       `json:"outcomes"`
	Errors   map[int]string `json:"errors,omitempty"`
	Reasons  map[int]string `json:"reasons,omitempty"`
}

// Document is the JSON report layout.
type Document struct {
	RunID         string    `json:"run_id"`
	Source        string    `json:"source"`
	Fingerprint   string    `json:"fingerprint"`
	StartedAt     time.Time `json:"started_at"`
	ElapsedMillis int64     `json:"elapsed_ms"`
	Vectors       int       `json:"vectors"`
	Verifiers     []jsonRow `json:"verifiers"`
	Disagreements []int     `json:"disagreements"`
}

// NewDocument converts m to its JSON layout.
func NewDocument(m *speccheck.ResultMatrix) Document {
	doc := Document{
		RunID:         m.RunID.String(),
		Source:        m.Source,
		Fingerprint:   m.Fingerprint,
		StartedAt:     m.StartedAt.UTC(),
		ElapsedMillis: m.Elapsed.Milliseconds(),
		Vectors:       m.Vectors,
		Disagreements: m.Disagreements(),
	}
	if doc.Disagreements == nil {
		doc.Disagreements = []int{}
	}
	for i, name := range m.Verifiers {
		row := jsonRow{Name: name, Outcomes: make([]string, 0, m.Vectors)}
		for j, cell := range m.Cells[i] {
			row.Outcomes = append(row.Outcomes, cell.Outcome.String())
			if cell.Err != nil {
				if row.Errors == nil {
					row.Errors = make(map[int]string)
				}
				row.Errors[j] = cell.Err.Error()
			}
			if cell.Reason != nil {
				if row.Reasons == nil {
					row.Reasons = make(map[int]string)
				}
				row.Reasons[j] = cell.Reason.Error()
			}
		}
		doc.Verifiers = append(doc.Verifiers, row)
	}
	return doc
}

// WriteJSON renders m as an indented JSON document.
func WriteJSON(w io.Writer, m *speccheck.ResultMatrix) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(NewDocument(m)), "failed to encode report")
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}

func formatIndices(xs []int) string {
	if len(xs) == 0 {
		return "none"
	}
	sort.Ints(xs)
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}

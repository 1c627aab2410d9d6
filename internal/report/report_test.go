package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/eddsa"
	"github.com/mahdiidarabi/eddsa-speccheck/pkg/speccheck"
)

func sampleMatrix() *speccheck.ResultMatrix {
	return &speccheck.ResultMatrix{
		RunID:       uuid.MustParse("6f1c2f0e-8a8b-4b43-9d55-0c1d8f6f2a10"),
		Source:      "cases.json",
		Fingerprint: strings.Repeat("ab", 32),
		Verifiers:   []string{"reference", "zip215", "flaky"},
		Vectors:     3,
		Cells: [][]speccheck.Cell{
			{
				{Outcome: speccheck.Accept},
				{Outcome: speccheck.Reject, Reason: errors.WithMessage(eddsa.ErrEquation, "cofactorless")},
				{Outcome: speccheck.Reject},
			},
			{
				{Outcome: speccheck.Accept},
				{Outcome: speccheck.Accept},
				{Outcome: speccheck.Reject},
			},
			{
				{Outcome: speccheck.Accept},
				{Outcome: speccheck.Accept},
				{Outcome: speccheck.Error, Err: errors.New("verifier panicked: boom")},
			},
		},
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:   1500 * time.Millisecond,
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleMatrix(), Options{Format: speccheck.FormatTable}))
	out := buf.String()

	assert.NotContains(t, out, "\x1b[", "colors must be off")
	assert.Contains(t, out, "Verifier")
	assert.Contains(t, out, "reference")
	assert.Contains(t, out, "1/2/0")
	assert.Contains(t, out, "2/0/1")
	assert.Contains(t, out, "6f1c2f0e-8a8b-4b43-9d55-0c1d8f6f2a10")
	assert.Contains(t, out, "fingerprint abababababababab")
	assert.Contains(t, out, "disagreements: 1, 2")
	assert.NotContains(t, out, "verifier panicked", "details only with Explain")

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "| zip215") {
			assert.Equal(t, 2, strings.Count(line, " V "), line)
			assert.Equal(t, 1, strings.Count(line, " X "), line)
		}
	}
}

func TestWriteTable_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleMatrix(), Options{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWriteTable_Explain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleMatrix(), Options{Explain: true}))
	out := buf.String()

	assert.Contains(t, out, "reference[1]: cofactorless: eddsa: verification equation does not hold")
	assert.Contains(t, out, "flaky[2]: error: verifier panicked: boom")
	assert.NotContains(t, out, "reference[2]", "rejections without a reason are not listed")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleMatrix(), Options{Format: speccheck.FormatMarkdown, Color: true}))
	out := buf.String()

	assert.NotContains(t, out, "\x1b[", "markdown is never colored")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.True(t, strings.HasPrefix(lines[0], "|"), lines[0])
	assert.Contains(t, lines[1], "---")
	assert.Contains(t, out, "Disagreements: 1, 2")
	assert.Contains(t, out, "V = accept")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleMatrix(), Options{Format: speccheck.FormatJSON}))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "6f1c2f0e-8a8b-4b43-9d55-0c1d8f6f2a10", doc.RunID)
	assert.Equal(t, int64(1500), doc.ElapsedMillis)
	assert.Equal(t, []int{1, 2}, doc.Disagreements)
	require.Len(t, doc.Verifiers, 3)
	assert.Equal(t, []string{"accept", "reject", "reject"}, doc.Verifiers[0].Outcomes)
	assert.Contains(t, doc.Verifiers[0].Reasons[1], "verification equation")
	assert.Equal(t, "verifier panicked: boom", doc.Verifiers[2].Errors[2])
	assert.Empty(t, doc.Verifiers[1].Errors)
}

func TestWriteJSON_NoDisagreements(t *testing.T) {
	m := sampleMatrix()
	m.Verifiers = m.Verifiers[:1]
	m.Cells = m.Cells[:1]

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, m))
	assert.Contains(t, buf.String(), `"disagreements": []`)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleMatrix(), Options{Format: "yaml"})
	assert.Error(t, err)
}

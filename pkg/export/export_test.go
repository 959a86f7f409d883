package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Waitlist",
		Headers: []string{"Name", "Email", "Status", "Joined Date"},
		Rows: [][]string{
			{"Alice", "alice@example.com", "pending", "2026-10-01"},
			{"N/A", "bob@example.com", "invited", "2026-10-02"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Status,Joined Date\nAlice,alice@example.com,pending,2026-10-01\nN/A,bob@example.com,invited,2026-10-02\n", string(payload))
}

func TestCSVExporterQuotesSpecialCharacters(t *testing.T) {
	data := Dataset{Headers: []string{"Name"}, Rows: [][]string{{`Doe, "J"`}}}
	payload, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Name\n\"Doe, \"\"J\"\"\"\n", string(payload))
}

func TestExportersRejectInvalidDataset(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Dataset{Headers: []string{"A", "B"}, Rows: [][]string{{"only one"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, []string{"N/A", fmt.Sprintf("user%d@example.com", i), "pending", "2026-10-03"})
	}
	payload, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF-")))
}

func TestExporterMetadata(t *testing.T) {
	assert.Equal(t, "csv", NewCSVExporter().Extension())
	assert.Equal(t, "pdf", NewPDFExporter().Extension())
	assert.Contains(t, NewCSVExporter().ContentType(), "text/csv")
	assert.Equal(t, "application/pdf", NewPDFExporter().ContentType())
}

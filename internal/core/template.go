package core

import (
	"bytes"
	"encoding/csv"
)

// TemplateFilename is the suggested download name for Template.
const TemplateFilename = "contacts_template.csv"

var templateRows = [][]string{
	{ColName, ColPhone, ColEmail, ColGroupID},
	{"John Doe", "+1234567890", "john@example.com", "1"},
	{"Jane Smith", "+0987654321", "jane@example.com", ""},
}

// Template returns a CSV file with the accepted header and two sample rows.
// It passes Validate.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// WriteAll only fails on writer errors; bytes.Buffer never returns one.
	_ = w.WriteAll(templateRows)
	return buf.Bytes()
}

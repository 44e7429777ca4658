package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"docex/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the export header row shared by the CSV and XLSX exports.
var Columns = []string{
	"Extraction ID",
	"Source",
	"Status",
	"Validation Status",
	"Parser Model",
	"Confidence",
	"Document Type",
	"Document Number",
	"Date",
	"Client Name",
	"Client Address",
	"Client City",
	"Client State",
	"Client Postal Code",
	"Client Country",
	"Client Phone",
	"Client Email",
	"Client GSTIN",
	"Client PAN",
	"Receiver Name",
	"Receiver Address",
	"Receiver City",
	"Receiver State",
	"Receiver Postal Code",
	"Receiver Country",
	"Receiver Phone",
	"Receiver Email",
	"Receiver GSTIN",
	"Subtotal",
	"CGST",
	"SGST",
	"IGST",
	"Total",
	"Item Count",
	"Created At",
	"Completed At",
}

// Column positions of the document block.
const (
	docStart = 6
	docEnd   = 33
)

// Writer wraps csv.Writer for exporting extractions as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteExtractions converts a batch of extractions to CSV rows and writes them.
func (w *Writer) WriteExtractions(exts []domain.Extraction) error {
	for i := range exts {
		if err := w.csv.Write(ExtractionToRow(&exts[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// ExtractionToRow converts one extraction to a row matching Columns.
// If the extraction has not completed or its result is not valid JSON,
// metadata columns are filled and document columns are left empty.
func ExtractionToRow(ext *domain.Extraction) []string {
	row := make([]string, len(Columns))

	// Metadata columns (always filled)
	row[0] = ext.ID.String()
	row[1] = string(ext.Source)
	row[2] = string(ext.Status)
	row[3] = string(ext.ValidationStatus)
	row[4] = ext.ParserModel
	row[5] = strconv.FormatFloat(ext.Confidence, 'f', 2, 64)
	row[34] = ext.CreatedAt.Format(time.RFC3339)
	row[35] = formatTime(ext.CompletedAt)

	if ext.Status != domain.ExtractionStatusCompleted || len(ext.Result) == 0 {
		return row
	}
	doc, err := ext.Document()
	if err != nil {
		return row
	}
	copy(row[docStart:docEnd+1], DocumentColumns(&doc))
	return row
}

// DocumentColumns returns the document block of a row: document type
// through item count.
func DocumentColumns(doc *domain.DocumentRecord) []string {
	c, r := doc.Issuer, doc.Receiver
	return []string{
		string(doc.DocumentType),
		doc.DocumentNumber,
		doc.Date,
		c.CompanyName, c.Address, c.City, c.State, c.PostalCode, c.Country, c.Phone, c.Email, c.TaxID, c.SecondaryTaxID,
		r.CompanyName, r.Address, r.City, r.State, r.PostalCode, r.Country, r.Phone, r.Email, r.TaxID,
		doc.Subtotal,
		doc.Tax(domain.TaxCGST),
		doc.Tax(domain.TaxSGST),
		doc.Tax(domain.TaxIGST),
		doc.TotalAmount,
		strconv.Itoa(len(doc.Items)),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}

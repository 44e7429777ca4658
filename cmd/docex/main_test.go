package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docex/internal/config"
	"docex/internal/csvexport"
	"docex/internal/domain"
	"docex/internal/xlsxexport"
)

const cliInvoice = "TAX INVOICE\nInvoice No: INV-88\nDate: 12/04/2025\nTotal: 590.00\n"

func rulesConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Parser.Mode = "rules"
	return cfg
}

func TestRunExtract_JSONFromStdin(t *testing.T) {
	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)

	var out bytes.Buffer
	err = runExtract(context.Background(), svc, strings.NewReader(cliInvoice), &out, []string{"-"}, "", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "Invoice", doc["document_type"])
	assert.Equal(t, "INV-88", doc["document_number"])
	assert.Equal(t, "590.00", doc["total_amount"])
}

func TestRunExtract_MultipleFilesCSV(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte(cliInvoice), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("PURCHASE ORDER\nPO No: PO-12\n"), 0o600))

	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runExtract(context.Background(), svc, nil, &out, []string{a, b}, "", "csv"))

	body := out.Bytes()
	require.True(t, bytes.HasPrefix(body, csvexport.BOM))
	records, err := csv.NewReader(bytes.NewReader(body[len(csvexport.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Contains(t, records[1], "INV-88")
	assert.Contains(t, records[2], "PO-12")
	assert.Contains(t, records[2], "Purchase Order")
	assert.Contains(t, records[1], "cli")
}

func TestRunExtract_XLSX(t *testing.T) {
	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runExtract(context.Background(), svc, strings.NewReader(cliInvoice), &out, []string{"-"}, "", "xlsx"))

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsxexport.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRunExtract_Errors(t *testing.T) {
	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)

	var out bytes.Buffer
	err = runExtract(context.Background(), svc, nil, &out, []string{filepath.Join(t.TempDir(), "missing.txt")}, "", "json")
	assert.ErrorContains(t, err, "missing.txt")

}

func TestRunExtract_BlankInputYieldsEmptyRecord(t *testing.T) {
	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runExtract(context.Background(), svc, strings.NewReader("   \n"), &out, []string{"-"}, "", "json"))

	var doc domain.DocumentRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, domain.DocumentTypeUnknown, doc.DocumentType)
	assert.Empty(t, doc.DocumentNumber)
	assert.Empty(t, doc.Items)
	assert.True(t, doc.Issuer.IsEmpty())
	assert.True(t, doc.Receiver.IsEmpty())
}

func TestExtractToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	dest := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte(cliInvoice), 0o600))

	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)
	require.NoError(t, extractToFile(context.Background(), svc, nil, dest, []string{in}, "", "csv"))

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, csvexport.BOM))
	assert.Contains(t, string(body), "INV-88")
}

func TestExtractToFile_Errors(t *testing.T) {
	dir := t.TempDir()
	svc, err := newCLIService(rulesConfig(t))
	require.NoError(t, err)

	err = extractToFile(context.Background(), svc, nil, filepath.Join(dir, "missing", "out.json"), []string{"-"}, "", "json")
	assert.ErrorContains(t, err, "creating")

	err = extractToFile(context.Background(), svc, nil, filepath.Join(dir, "out.json"), []string{filepath.Join(dir, "nope.txt")}, "", "json")
	assert.ErrorContains(t, err, "nope.txt")
}

func TestExtractCmd_RejectsUnknownFormat(t *testing.T) {
	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"extract", "--format", "pdf", "-"})

	err := root.Execute()
	assert.ErrorContains(t, err, "unknown format")
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdoc/internal/adapters/pdf"
	"salesdoc/internal/config"
	"salesdoc/internal/export"
	"salesdoc/internal/models"
)

func testApp(t *testing.T, stdin string) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer
	return &App{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
		LoadConfig: func() (*config.Config, error) {
			return &config.Config{
				Environment: "test",
				Host:        "127.0.0.1",
				Port:        "8081",
				LogLevel:    "error",
				Money:       config.MoneyConfig{Currency: "NGN", Locale: "en-NG"},
				Export: config.ExportConfig{
					ReleaseDelay:   time.Minute,
					ShareChannel:   "whatsapp",
					SerialTemplate: "{KIND}-{SEQ4}",
				},
				Storage:   config.StorageConfig{Type: "memory", PublicBaseURL: "http://127.0.0.1:8081"},
				RateLimit: config.RateLimitConfig{RPS: 10, Burst: 10},
				Tax:       config.TaxSystemConfig{CountryCode: "NG"},
			}, nil
		},
	}, &out, &errOut
}

func scenarioJSON(t *testing.T) string {
	t.Helper()

	doc := models.NewDocument(models.KindReceipt, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 7)
	doc.Business.Name = "Mama Put"
	doc.Customer.Phone = "+234 801 000 0000"
	doc.Items = []models.LineItem{
		*models.NewCustomLineItem("Jollof rice", decimal.NewFromInt(1500), 2, ""),
		*models.NewCustomLineItem("Chicken", decimal.NewFromInt(2300), 1, ""),
	}
	doc.Adjustments.VATEnabled = true
	doc.Payment.AmountPaid = decimal.NewFromInt(6000)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

func run(app *App, args ...string) error {
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestNew(t *testing.T) {
	app, out, _ := testApp(t, "")
	require.NoError(t, run(app, "new", "invoice"))

	var doc models.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, models.KindInvoice, doc.Kind)
	assert.Equal(t, "INV-0001", doc.Serial)
	assert.Equal(t, "NGN", doc.Currency)

	assert.Error(t, run(app, "new", "memo"))
}

func TestTotals(t *testing.T) {
	app, out, _ := testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "totals"))

	text := out.String()
	assert.Contains(t, text, "₦5,300.00")
	assert.Contains(t, text, "₦397.50")
	assert.Contains(t, text, "₦5,697.50")
	assert.Contains(t, text, "Change due")
	assert.Contains(t, text, "₦302.50")
}

func TestTotals_FromFileAsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(scenarioJSON(t)), 0o600))

	app, out, _ := testApp(t, "")
	require.NoError(t, run(app, "totals", "-f", path, "--json"))

	var resp struct {
		Formatted map[string]string `json:"formatted"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "₦5,697.50", resp.Formatted["total"])
}

func TestTotals_InvalidDocument(t *testing.T) {
	app, _, _ := testApp(t, `{"id":"d1","kind":"memo"}`)
	assert.Error(t, run(app, "totals"))

	app, _, _ = testApp(t, `not json`)
	assert.Error(t, run(app, "totals"))
}

func TestRender(t *testing.T) {
	app, out, _ := testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "render", "--template", "thermal"))
	assert.Contains(t, out.String(), "Mama Put")
	assert.Contains(t, out.String(), "₦5,697.50")

	app, out, _ = testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "render", "--format", "html"))
	assert.True(t, strings.HasPrefix(out.String(), "<!doctype html>"))

	app, _, _ = testApp(t, scenarioJSON(t))
	assert.Error(t, run(app, "render", "--format", "docx"))
}

func TestValidate(t *testing.T) {
	app, out, _ := testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "validate"))
	assert.Contains(t, out.String(), "ok")
}

func TestTemplates(t *testing.T) {
	app, out, _ := testApp(t, "")
	require.NoError(t, run(app, "templates"))
	assert.Contains(t, out.String(), "* classic")
	assert.Contains(t, out.String(), "thermal")
}

func TestExport_Download(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.pdf")

	app, out, _ := testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "export", "--type", "download", "-o", path))
	assert.Contains(t, out.String(), "Saved "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, pdf.IsPDF(data))
}

func TestExport_Print(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.html")

	app, out, _ := testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "export", "--type", "print", "--template", "thermal", "-o", path, "--json"))

	var result export.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, export.StrategyPrint, result.Strategy)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mama Put")
}

func TestExport_Share(t *testing.T) {
	app, out, _ := testApp(t, scenarioJSON(t))
	require.NoError(t, run(app, "export", "--type", "share", "--channel", "sms"))

	assert.Contains(t, out.String(), "Mama Put")
	assert.Contains(t, out.String(), "sms:+2348010000000?body=")
}

func TestExport_InvalidType(t *testing.T) {
	app, _, errOut := testApp(t, scenarioJSON(t))
	err := run(app, "export", "--type", "fax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Contains(t, errOut.String(), export.RemedyFixRequest)
}

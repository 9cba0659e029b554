package printsurface

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdoc/internal/calculator"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

func sampleTree(t *testing.T, templateID string) *render.VisualTree {
	t.Helper()

	doc := models.NewDocument(models.KindReceipt, time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC), 3)
	doc.Business.Name = "Tom & Jerry's <Grill>"
	doc.Items = []models.LineItem{*models.NewCustomLineItem("Suya", decimal.NewFromInt(1200), 2, "")}

	tree, err := render.NewResolver(money.New("NGN", "en"), nil).Render(doc, calculator.Compute(doc), templateID)
	require.NoError(t, err)
	return tree
}

func TestRender(t *testing.T) {
	tree := sampleTree(t, render.TemplateClassic)

	html, err := NewRenderer(false).Render(tree)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "Tom &amp; Jerry&#39;s &lt;Grill&gt;")
	assert.NotContains(t, html, "<Grill>")
	assert.Contains(t, html, "₦2,400.00")
	assert.Contains(t, html, "grid-column: span 6")
	assert.Contains(t, html, "size: A4")
	assert.NotContains(t, html, "window.addEventListener")
}

func TestRender_ThermalAutoPrint(t *testing.T) {
	html, err := NewRenderer(true).Render(sampleTree(t, render.TemplateThermal))
	require.NoError(t, err)

	assert.Contains(t, html, "80mm auto")
	assert.Contains(t, html, "Courier")
	assert.Contains(t, html, "window.addEventListener")
}

func TestRender_EmptyTree(t *testing.T) {
	_, err := NewRenderer(false).Render(nil)
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestCSSColor(t *testing.T) {
	assert.Equal(t, "#0f766e", string(cssColor("#0f766e")))
	assert.Equal(t, "#111827", string(cssColor("red; background: url(x)")))
}

func TestBrowserLauncher(t *testing.T) {
	var opened string
	l := &BrowserLauncher{open: func(url string) error {
		opened = url
		return nil
	}}
	require.NoError(t, l.Launch(context.Background(), "http://127.0.0.1:8081/print/x"))
	assert.Equal(t, "http://127.0.0.1:8081/print/x", opened)

	l.open = func(string) error { return errors.New("xdg-open: not found") }
	assert.ErrorIs(t, l.Launch(context.Background(), "http://x"), ErrLaunchBlocked)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Launch(ctx, "http://x"), context.Canceled)
}

func TestClientLauncher(t *testing.T) {
	assert.NoError(t, ClientLauncher{}.Launch(context.Background(), "http://x"))
}

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"salesdoc/internal/adapters/printsurface"
	"salesdoc/internal/config"
	"salesdoc/internal/models"
	"salesdoc/pkg/server"
)

func newNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "new receipt|invoice|quote",
		Short:     "Print a new document with the next serial and configured defaults",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(models.KindReceipt), string(models.KindInvoice), string(models.KindQuote)},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.container()
			if err != nil {
				return err
			}
			defer c.Close()

			return app.printJSON(c.DocumentService.NewDocument(models.DocumentKind(args[0])))
		},
	}
}

func newTotalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Compute the totals of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, doc, err := app.loadDocument(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp := c.DocumentService.FormatTotals(doc, c.DocumentService.ComputeTotals(doc))
			if jsonOutput(cmd) {
				return app.printJSON(resp)
			}

			rows := []struct{ label, key string }{
				{"Subtotal", "subtotal"},
				{"Discount", "discount_amount"},
				{resp.Formatted["tax_label"], "tax_amount"},
				{"Delivery", "delivery_fee"},
				{"Service charge", "service_charge"},
				{"Total", "total"},
				{"Change due", "change_due"},
			}
			for _, row := range rows {
				value, ok := resp.Formatted[row.key]
				if !ok {
					continue
				}
				label := row.label
				if label == "" {
					label = "Tax"
				}
				fmt.Fprintf(app.Out, "%-16s %16s\n", label, value)
			}
			return nil
		},
	}
	addDocumentFlag(cmd)
	return cmd
}

func newRenderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a document through a template",
		Long: `Render a document. The text format prints the rendered rows, html prints
the print surface page and json prints the visual tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID, _ := cmd.Flags().GetString("template")
			format, _ := cmd.Flags().GetString("format")

			c, doc, err := app.loadDocument(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if templateID == "" {
				templateID = doc.TemplateID
			}
			tree, err := c.DocumentService.RenderDocument(doc, c.DocumentService.ComputeTotals(doc), templateID)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				format = "json"
			}
			switch strings.ToLower(format) {
			case "json":
				return app.printJSON(tree)
			case "html":
				page, err := printsurface.NewRenderer(false).Render(tree)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(app.Out, page)
				return err
			case "text", "":
				_, err = fmt.Fprintln(app.Out, tree.Text())
				return err
			default:
				return fmt.Errorf("unknown format %q: use text, html or json", format)
			}
		},
	}
	addDocumentFlag(cmd)
	cmd.Flags().StringP("template", "t", "", "Template identifier (default: the document's, then the configured default)")
	cmd.Flags().String("format", "text", "Output format: text, html or json")
	return cmd
}

func newValidateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a document and check it against the tax regime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, doc, err := app.loadDocument(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.TaxService.ValidateDocumentCompliance(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				if err := app.printJSON(result); err != nil {
					return err
				}
			} else {
				for _, e := range result.Errors {
					fmt.Fprintf(app.Out, "error:   %s\n", e)
				}
				for _, w := range result.Warnings {
					fmt.Fprintf(app.Out, "warning: %s\n", w)
				}
				if result.IsCompliant {
					fmt.Fprintln(app.Out, "ok")
				}
			}
			if !result.IsCompliant {
				return fmt.Errorf("document is not compliant with the %s regime", c.TaxService.Config().GetTaxName())
			}
			return nil
		},
	}
	addDocumentFlag(cmd)
	return cmd
}

func newTemplatesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List registered templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.container()
			if err != nil {
				return err
			}
			defer c.Close()

			templates := c.DocumentService.Templates()
			if jsonOutput(cmd) {
				return app.printJSON(templates)
			}

			sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
			defaultID := c.Resolver.DefaultID()
			for _, t := range templates {
				marker := " "
				if t.ID == defaultID {
					marker = "*"
				}
				fmt.Fprintf(app.Out, "%s %-20s %-20s %s\n", marker, t.ID, t.Name, t.Renderer)
			}
			return nil
		},
	}
}

// loadDocument builds the container, then reads and validates the document
// named by the --file flag
func (a *App) loadDocument(cmd *cobra.Command) (*server.Container, *models.Document, error) {
	return a.loadDocumentWith(cmd, nil)
}

func (a *App) loadDocumentWith(cmd *cobra.Command, extra func(*config.Config) []server.Option) (*server.Container, *models.Document, error) {
	path, _ := cmd.Flags().GetString("file")
	doc, err := a.readDocument(path)
	if err != nil {
		return nil, nil, err
	}

	c, err := a.build(extra)
	if err != nil {
		return nil, nil, err
	}

	if err := c.DocumentService.ValidateDocument(cmd.Context(), doc); err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, doc, nil
}

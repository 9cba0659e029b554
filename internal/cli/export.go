package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"salesdoc/internal/adapters/printsurface"
	"salesdoc/internal/config"
	"salesdoc/internal/export"
	"salesdoc/internal/models"
	"salesdoc/pkg/server"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download, preview, print or share a document",
		Long: `Export a document. Downloads are written as PDF; when PDF rendering is
unavailable the print surface is used instead and written as HTML. With
--open the print surface or share link is opened in the system browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runExport(cmd)
		},
	}
	addDocumentFlag(cmd)
	cmd.Flags().String("type", string(export.TypeDownload), "Export type: download, preview, print or share")
	cmd.Flags().String("device", string(export.DeviceDesktop), "Device class: desktop, mobile or tablet")
	cmd.Flags().StringP("template", "t", "", "Template identifier")
	cmd.Flags().String("channel", "", "Share channel: whatsapp, sms, email or clipboard")
	cmd.Flags().StringP("out", "o", "", "Output path (default: a name derived from the document)")
	cmd.Flags().Bool("open", false, "Open print surfaces and share links in the browser (default from EXPORT_OPEN_BROWSER)")
	cmd.Flags().Duration("hold", 10*time.Second, "How long to keep an opened print surface before releasing it")
	return cmd
}

func (a *App) runExport(cmd *cobra.Command) error {
	typ, _ := cmd.Flags().GetString("type")
	device, _ := cmd.Flags().GetString("device")
	templateID, _ := cmd.Flags().GetString("template")
	channel, _ := cmd.Flags().GetString("channel")
	out, _ := cmd.Flags().GetString("out")
	hold, _ := cmd.Flags().GetDuration("hold")

	var opened bool
	c, doc, err := a.loadDocumentWith(cmd, func(cfg *config.Config) []server.Option {
		opened = cfg.Export.OpenBrowser
		if cmd.Flags().Changed("open") {
			opened, _ = cmd.Flags().GetBool("open")
		}
		if !opened {
			return nil
		}
		launcher := printsurface.NewBrowserLauncher()
		return []server.Option{
			server.WithLauncher(launcher),
			server.WithShareOpener(launcher.Launch),
		}
	})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result := c.DocumentService.ExportDocument(ctx, doc, export.Request{
		Type:         export.RequestType(typ),
		Device:       export.DeviceClass(device),
		TemplateID:   templateID,
		ShareChannel: channel,
	})

	if jsonOutput(cmd) {
		if err := a.printJSON(result); err != nil {
			return err
		}
	}
	if !result.OK() {
		if result.Remedy != "" {
			fmt.Fprintf(a.Err, "%s\n", result.Remedy)
		}
		return fmt.Errorf("export %s: %s", result.Status, result.Reason)
	}
	if result.Degraded {
		fmt.Fprintf(a.Err, "PDF rendering unavailable, used the %s fallback\n", result.Strategy)
	}

	return a.deliver(ctx, cmd, doc, result.Artifact, out, opened, hold)
}

// deliver writes or presents an artifact after a successful export
func (a *App) deliver(ctx context.Context, cmd *cobra.Command, doc *models.Document, artifact *models.Artifact, out string, opened bool, hold time.Duration) error {
	quiet := jsonOutput(cmd)

	switch artifact.Kind {
	case models.ArtifactFile:
		if out == "" {
			out = artifact.SuggestedName
		}
		if err := os.WriteFile(out, artifact.Blob, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		if !quiet {
			fmt.Fprintf(a.Out, "Saved %s (%d bytes)\n", out, artifact.Size)
		}

	case models.ArtifactPrintSurface:
		if opened && artifact.URL != "" {
			if !quiet {
				fmt.Fprintf(a.Out, "Opened %s\n", artifact.URL)
			}
			// The browser reads the page from the store; keep it until the
			// page has had time to load
			select {
			case <-time.After(hold):
			case <-ctx.Done():
			}
			if out == "" {
				return nil
			}
		}
		if out == "" {
			out = export.SuggestedName(doc, "html")
		}
		if err := os.WriteFile(out, []byte(artifact.Markup), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		if !quiet {
			fmt.Fprintf(a.Out, "Saved %s, open it in a browser and use Print\n", out)
		}

	case models.ArtifactText:
		if out != "" {
			if err := os.WriteFile(out, []byte(artifact.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
		}
		if !quiet {
			fmt.Fprintln(a.Out, artifact.Content)
			if artifact.ShareLink != "" {
				fmt.Fprintf(a.Out, "\n%s\n", artifact.ShareLink)
			}
		}
	}
	return nil
}

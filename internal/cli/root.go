// Package cli implements the salesdoc command line: composing, totalling,
// rendering and exporting documents without the HTTP surface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"salesdoc/internal/config"
	"salesdoc/internal/models"
	"salesdoc/pkg/server"
)

// App carries the IO and configuration shared by every command
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// LoadConfig defaults to config.Load
	LoadConfig func() (*config.Config, error)

	// Options are appended to every container the commands build
	Options []server.Option
}

// NewApp creates an App bound to the process standard streams
func NewApp() *App {
	return &App{
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		LoadConfig: config.Load,
	}
}

// Execute runs the root command with os.Args
func Execute() error {
	return NewRootCommand(NewApp()).Execute()
}

// NewRootCommand builds the command tree
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "salesdoc",
		Short: "Compose, total, render and export sales documents",
		Long: `salesdoc computes totals for receipts, invoices and quotes, renders them
through the registered templates and exports them as PDF files, print
surfaces or share links. Documents are read as JSON from a file or stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(app.In)
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	rootCmd.PersistentFlags().Bool("json", false, "Print machine readable JSON")

	rootCmd.AddCommand(
		newNewCmd(app),
		newTotalsCmd(app),
		newRenderCmd(app),
		newValidateCmd(app),
		newExportCmd(app),
		newTemplatesCmd(app),
		newServeCmd(app),
	)
	return rootCmd
}

// container loads configuration and wires the application. Info logs are
// dropped; debug and trace levels pass through.
func (a *App) container(extra ...server.Option) (*server.Container, error) {
	return a.build(func(*config.Config) []server.Option { return extra })
}

// build is container with options that depend on the loaded configuration
func (a *App) build(extra func(cfg *config.Config) []server.Option) (*server.Container, error) {
	load := a.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(a.Err)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil || level == logrus.InfoLevel {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.Storage.Type == "local" && cfg.Storage.LocalPath != "" {
		if abs, err := filepath.Abs(cfg.Storage.LocalPath); err == nil {
			opts = append(opts, server.WithPrintURL("file://"+filepath.ToSlash(abs)))
		}
	}
	opts = append(opts, a.Options...)
	if extra != nil {
		opts = append(opts, extra(cfg)...)
	}

	return server.NewContainer(cfg, opts...)
}

// readDocument decodes a document from path, or stdin when path is "" or "-"
func (a *App) readDocument(path string) (*models.Document, error) {
	var src io.Reader = a.In
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		src = f
	}

	var doc models.Document
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (a *App) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func addDocumentFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "-", "Document JSON file, - for stdin")
}

package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/adapters/pdf"
	"salesdoc/internal/adapters/printsurface"
	"salesdoc/internal/adapters/share"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

// Strategy names
const (
	StrategyFile  = "file"
	StrategyPrint = "print"
	StrategyShare = "share"
)

var errUnusableArtifact = errors.New("renderer produced an unusable artifact")

// Strategy produces an artifact for a job. A strategy may return an artifact
// together with a recovered error; the artifact wins and the error becomes
// the result's reason.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, job *Job) (*models.Artifact, error)
}

// PDFGenerator turns a visual tree into PDF bytes
type PDFGenerator interface {
	Generate(ctx context.Context, tree *render.VisualTree) ([]byte, error)
}

// MarkupRenderer turns a visual tree into a print surface page
type MarkupRenderer interface {
	Render(tree *render.VisualTree) (string, error)
}

// handles stores artifacts in the blob store and schedules their release
type handles struct {
	store    blobstore.Store
	releaser *blobstore.Releaser
}

func (h handles) put(ctx context.Context, job *Job, data []byte, contentType, ext, name string) (key, url string, expires *time.Time, err error) {
	if h.store == nil {
		return "", "", nil, nil
	}

	key = uuid.NewString() + ext
	err = h.store.Put(ctx, key, data, &blobstore.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"document_id":    job.Document.ID,
			"kind":           string(job.Document.Kind),
			"suggested_name": name,
		},
	})
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	url, err = h.store.URL(key)
	if err != nil {
		_ = h.store.Delete(ctx, key)
		return "", "", nil, fmt.Errorf("failed to address artifact: %w", err)
	}

	if h.releaser != nil {
		deadline := h.releaser.Schedule(key)
		expires = &deadline
	}
	return key, url, expires, nil
}

func (h handles) drop(ctx context.Context, key string) {
	if key == "" || h.store == nil {
		return
	}
	if h.releaser != nil {
		_ = h.releaser.Release(ctx, key)
		return
	}
	_ = h.store.Delete(ctx, key)
}

// SuggestedName builds a download file name such as "invoice-inv-2026-0001.pdf"
func SuggestedName(doc *models.Document, ext string) string {
	base := slug.Make(strings.TrimSpace(string(doc.Kind) + " " + doc.Serial))
	if base == "" {
		base = "document"
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// FileStrategy renders the document to a PDF and stores it as a downloadable
// file
type FileStrategy struct {
	generator PDFGenerator
	handles   handles
}

// NewFileStrategy creates a FileStrategy. store and releaser may be nil, in
// which case the blob is returned inline only.
func NewFileStrategy(generator PDFGenerator, store blobstore.Store, releaser *blobstore.Releaser) *FileStrategy {
	return &FileStrategy{generator: generator, handles: handles{store: store, releaser: releaser}}
}

// Name returns the strategy name
func (s *FileStrategy) Name() string { return StrategyFile }

// Execute renders and stores the PDF
func (s *FileStrategy) Execute(ctx context.Context, job *Job) (*models.Artifact, error) {
	tree, err := job.Tree()
	if err != nil {
		return nil, wrap(ErrRenderingUnavailable, err)
	}

	data, err := s.generator.Generate(ctx, tree)
	if err != nil {
		return nil, wrap(ErrRenderingUnavailable, err)
	}
	if !pdf.IsPDF(data) {
		return nil, wrap(ErrRenderingUnavailable, errUnusableArtifact)
	}

	name := SuggestedName(job.Document, "pdf")
	key, url, expires, err := s.handles.put(ctx, job, data, pdf.ContentType, ".pdf", name)
	if err != nil {
		return nil, wrap(ErrArtifactStore, err)
	}

	artifact := models.NewFileArtifact(data, name, pdf.ContentType)
	artifact.Handle = key
	artifact.URL = url
	artifact.ExpiresAt = expires
	return artifact, nil
}

// PrintStrategy renders the print surface markup, stores it and opens it so
// the user can print or save as PDF
type PrintStrategy struct {
	markup   MarkupRenderer
	launcher printsurface.Launcher
	handles  handles
	baseURL  string
}

// NewPrintStrategy creates a PrintStrategy
func NewPrintStrategy(markup MarkupRenderer, launcher printsurface.Launcher, store blobstore.Store, releaser *blobstore.Releaser) *PrintStrategy {
	if launcher == nil {
		launcher = printsurface.ClientLauncher{}
	}
	return &PrintStrategy{markup: markup, launcher: launcher, handles: handles{store: store, releaser: releaser}}
}

// WithBaseURL serves print surfaces from base/key instead of the store URL
func (s *PrintStrategy) WithBaseURL(base string) *PrintStrategy {
	s.baseURL = strings.TrimRight(base, "/")
	return s
}

// Name returns the strategy name
func (s *PrintStrategy) Name() string { return StrategyPrint }

// Execute produces and opens the print surface
func (s *PrintStrategy) Execute(ctx context.Context, job *Job) (*models.Artifact, error) {
	tree, err := job.Tree()
	if err != nil {
		return nil, wrap(ErrPrintSurfaceFailed, err)
	}

	page, err := s.markup.Render(tree)
	if err != nil {
		return nil, wrap(ErrPrintSurfaceFailed, err)
	}

	key, url, expires, err := s.handles.put(ctx, job, []byte(page), printsurface.ContentType, ".html", SuggestedName(job.Document, "html"))
	if err != nil {
		return nil, wrap(ErrArtifactStore, err)
	}
	if s.baseURL != "" && key != "" {
		url = s.baseURL + "/" + key
	}

	if url != "" {
		if err := s.launcher.Launch(ctx, url); err != nil {
			s.handles.drop(context.WithoutCancel(ctx), key)
			return nil, wrap(ErrFallbackBlocked, err)
		}
	}

	artifact := models.NewPrintSurfaceArtifact(page, url)
	artifact.Handle = key
	artifact.ExpiresAt = expires
	return artifact, nil
}

// ShareStrategy hands a text summary to a messaging target
type ShareStrategy struct {
	formatter      *money.Formatter
	surface        share.Surface
	defaultChannel share.Channel
}

// NewShareStrategy creates a ShareStrategy. A nil surface always degrades to
// clipboard text.
func NewShareStrategy(formatter *money.Formatter, surface share.Surface, defaultChannel share.Channel) *ShareStrategy {
	if defaultChannel == "" {
		defaultChannel = share.ChannelWhatsApp
	}
	return &ShareStrategy{formatter: formatter, surface: surface, defaultChannel: defaultChannel}
}

// Name returns the strategy name
func (s *ShareStrategy) Name() string { return StrategyShare }

// Execute builds the summary and shares it
func (s *ShareStrategy) Execute(ctx context.Context, job *Job) (*models.Artifact, error) {
	doc := job.Document
	text := render.Summary(doc, job.Totals, s.formatter)

	channel := s.defaultChannel
	if job.Request.ShareChannel != "" {
		c, err := share.ParseChannel(job.Request.ShareChannel)
		if err != nil {
			return models.NewTextArtifact(text, ""), wrap(ErrShareUnsupported, err)
		}
		channel = c
	}

	if s.surface == nil {
		return models.NewTextArtifact(text, ""), ErrShareUnsupported
	}

	msg := share.Message{
		Subject:   strings.TrimSpace(doc.Kind.Title() + " " + doc.Serial),
		Body:      text,
		Recipient: recipient(doc.Customer, channel),
	}

	link, err := s.surface.Share(ctx, channel, msg)
	switch {
	case err == nil:
		return models.NewTextArtifact(text, link), nil
	case errors.Is(err, share.ErrUnsupported):
		return models.NewTextArtifact(text, ""), wrap(ErrShareUnsupported, err)
	default:
		return nil, wrap(ErrShareBlocked, err)
	}
}

// recipient picks the customer address that matches the channel. Email
// without a customer email leaves the address for the user to fill in.
func recipient(c models.Customer, channel share.Channel) string {
	switch channel {
	case share.ChannelEmail:
		return c.Email
	case share.ChannelWhatsApp, share.ChannelSMS:
		return c.Phone
	default:
		return ""
	}
}

package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/adapters/pdf"
	"salesdoc/internal/adapters/printsurface"
	"salesdoc/internal/adapters/share"
	"salesdoc/internal/calculator"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

func testJob(req Request) *Job {
	doc := testDocument()
	doc.Customer.Phone = "+234 801 000 0000"
	resolver := render.NewResolver(money.New("NGN", "en"), nullLogger())
	return NewJob(doc, calculator.Compute(doc), req.Normalize(), resolver)
}

func TestFileStrategy_StoresAndReleases(t *testing.T) {
	store := blobstore.NewMemoryStore("")
	releaser := blobstore.NewReleaser(store, 50*time.Millisecond, nullLogger())
	s := NewFileStrategy(pdf.NewGenerator(), store, releaser)

	artifact, err := s.Execute(context.Background(), testJob(Request{Type: TypeDownload}))
	require.NoError(t, err)

	assert.Equal(t, models.ArtifactFile, artifact.Kind)
	assert.True(t, pdf.IsPDF(artifact.Blob))
	assert.Equal(t, pdf.ContentType, artifact.ContentType)
	assert.True(t, strings.HasPrefix(artifact.SuggestedName, "receipt-rcp-"))
	assert.True(t, strings.HasSuffix(artifact.Handle, ".pdf"))
	assert.Equal(t, "memory://"+artifact.Handle, artifact.URL)
	require.NotNil(t, artifact.ExpiresAt)

	info, err := store.Stat(context.Background(), artifact.Handle)
	require.NoError(t, err)
	assert.Equal(t, artifact.SuggestedName, info.Metadata["suggested_name"])

	assert.Eventually(t, func() bool {
		ok, _ := store.Exists(context.Background(), artifact.Handle)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileStrategy_WithoutStore(t *testing.T) {
	s := NewFileStrategy(pdf.NewGenerator(), nil, nil)

	artifact, err := s.Execute(context.Background(), testJob(Request{Type: TypeDownload}))
	require.NoError(t, err)
	assert.Empty(t, artifact.Handle)
	assert.Empty(t, artifact.URL)
	assert.Nil(t, artifact.ExpiresAt)
}

type brokenGenerator struct{ data []byte }

func (b brokenGenerator) Generate(context.Context, *render.VisualTree) ([]byte, error) {
	if b.data == nil {
		return nil, errors.New("out of memory")
	}
	return b.data, nil
}

func TestFileStrategy_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  PDFGenerator
	}{
		{"generator error", brokenGenerator{}},
		{"not a pdf", brokenGenerator{data: []byte("GIF89a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blobstore.NewMemoryStore("")
			s := NewFileStrategy(tt.gen, store, nil)

			_, err := s.Execute(context.Background(), testJob(Request{Type: TypeDownload}))
			assert.ErrorIs(t, err, ErrRenderingUnavailable)
			assert.Equal(t, 0, store.Len())
		})
	}
}

type fullStore struct {
	*blobstore.MemoryStore
}

func (fullStore) Put(context.Context, string, []byte, *blobstore.PutOptions) error {
	return errors.New("disk full")
}

func TestFileStrategy_StoreFailure(t *testing.T) {
	s := NewFileStrategy(pdf.NewGenerator(), fullStore{blobstore.NewMemoryStore("")}, nil)

	_, err := s.Execute(context.Background(), testJob(Request{Type: TypeDownload}))
	assert.ErrorIs(t, err, ErrArtifactStore)
	assert.NotErrorIs(t, err, ErrRenderingUnavailable)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPrintStrategy_StoreFailure(t *testing.T) {
	launched := false
	launcher := printsurface.LauncherFunc(func(context.Context, string) error {
		launched = true
		return nil
	})
	s := NewPrintStrategy(printsurface.NewRenderer(false), launcher, fullStore{blobstore.NewMemoryStore("")}, nil)

	_, err := s.Execute(context.Background(), testJob(Request{Type: TypePrint}))
	assert.ErrorIs(t, err, ErrArtifactStore)
	assert.NotErrorIs(t, err, ErrFallbackBlocked)
	assert.False(t, IsBlocked(err))
	assert.False(t, launched)
}

func TestPrintStrategy(t *testing.T) {
	store := blobstore.NewMemoryStore("http://127.0.0.1:8081/api/v1/files")
	var launched string
	launcher := printsurface.LauncherFunc(func(ctx context.Context, url string) error {
		launched = url
		return nil
	})
	s := NewPrintStrategy(printsurface.NewRenderer(true), launcher, store, blobstore.NewReleaser(store, time.Minute, nullLogger())).
		WithBaseURL("http://127.0.0.1:8081/print/")

	artifact, err := s.Execute(context.Background(), testJob(Request{Type: TypePrint, TemplateID: render.TemplateThermal}))
	require.NoError(t, err)

	assert.Equal(t, models.ArtifactPrintSurface, artifact.Kind)
	assert.Contains(t, artifact.Markup, "Mama Put")
	assert.Equal(t, "http://127.0.0.1:8081/print/"+artifact.Handle, artifact.URL)
	assert.Equal(t, artifact.URL, launched)
	assert.True(t, strings.HasSuffix(artifact.Handle, ".html"))
	assert.Equal(t, 1, store.Len())
}

func TestPrintStrategy_LaunchBlocked(t *testing.T) {
	store := blobstore.NewMemoryStore("")
	launcher := printsurface.LauncherFunc(func(context.Context, string) error {
		return printsurface.ErrLaunchBlocked
	})
	s := NewPrintStrategy(printsurface.NewRenderer(false), launcher, store, nil)

	_, err := s.Execute(context.Background(), testJob(Request{Type: TypePrint}))
	assert.ErrorIs(t, err, ErrFallbackBlocked)
	assert.ErrorIs(t, err, printsurface.ErrLaunchBlocked)
	assert.Equal(t, 0, store.Len())
}

func TestShareStrategy(t *testing.T) {
	s := NewShareStrategy(money.New("NGN", "en"), share.NewLinkSurface(nil), "")

	artifact, err := s.Execute(context.Background(), testJob(Request{Type: TypeShare}))
	require.NoError(t, err)

	assert.Equal(t, models.ArtifactText, artifact.Kind)
	assert.Contains(t, artifact.Content, "*Mama Put*")
	assert.True(t, strings.HasPrefix(artifact.ShareLink, "https://wa.me/2348010000000?text="))
}

func TestShareStrategy_EmailUsesCustomerEmail(t *testing.T) {
	s := NewShareStrategy(money.New("NGN", "en"), share.NewLinkSurface(nil), share.ChannelWhatsApp)

	job := testJob(Request{Type: TypeShare, ShareChannel: "email"})
	artifact, err := s.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.ShareLink, "mailto:?subject="), artifact.ShareLink)

	job.Document.Customer.Email = "ada@example.com"
	artifact, err = s.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.ShareLink, "mailto:ada@example.com?subject="), artifact.ShareLink)

	artifact, err = s.Execute(context.Background(), testJob(Request{Type: TypeShare, ShareChannel: "sms"}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.ShareLink, "sms:+2348010000000?body="), artifact.ShareLink)
}

func TestShareStrategy_Degrades(t *testing.T) {
	tests := []struct {
		name    string
		surface share.Surface
		channel string
		wantErr error
	}{
		{"clipboard", share.NewLinkSurface(nil), "clipboard", ErrShareUnsupported},
		{"unknown channel", share.NewLinkSurface(nil), "fax", ErrShareUnsupported},
		{"no surface", nil, "sms", ErrShareUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShareStrategy(money.New("NGN", "en"), tt.surface, share.ChannelWhatsApp)

			artifact, err := s.Execute(context.Background(), testJob(Request{Type: TypeShare, ShareChannel: tt.channel}))
			assert.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, artifact)
			assert.NotEmpty(t, artifact.Content)
			assert.Empty(t, artifact.ShareLink)
		})
	}
}

func TestShareStrategy_Blocked(t *testing.T) {
	surface := share.NewLinkSurface(func(context.Context, string) error {
		return errors.New("no app registered")
	})
	s := NewShareStrategy(money.New("NGN", "en"), surface, share.ChannelSMS)

	artifact, err := s.Execute(context.Background(), testJob(Request{Type: TypeShare}))
	assert.Nil(t, artifact)
	assert.ErrorIs(t, err, ErrShareBlocked)
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	store := blobstore.NewMemoryStore("")
	releaser := blobstore.NewReleaser(store, time.Hour, nullLogger())
	metrics := NewMetrics(nil)
	o, flag := newTestOrchestrator(Strategies{
		File:  NewFileStrategy(pdf.NewGenerator(), store, releaser),
		Print: NewPrintStrategy(printsurface.NewRenderer(false), printsurface.ClientLauncher{}, store, releaser),
		Share: NewShareStrategy(money.New("NGN", "en"), share.NewLinkSurface(nil), share.ChannelWhatsApp),
	}, WithReleaser(releaser), WithMetrics(metrics))

	for _, typ := range []RequestType{TypeDownload, TypePreview, TypePrint, TypeShare} {
		res := o.Export(context.Background(), testDocument(), Request{Type: typ})
		require.True(t, res.OK(), "%s: %s", typ, res.Reason)
	}
	assert.False(t, flag.IsSet())
	assert.Equal(t, 3, releaser.Pending())

	require.NoError(t, o.Close(context.Background()))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, releaser.Pending())
}

func TestSuggestedName(t *testing.T) {
	doc := &models.Document{Kind: models.KindInvoice, Serial: "INV/2026/0001"}
	assert.Equal(t, "invoice-inv-2026-0001.pdf", SuggestedName(doc, "pdf"))
	assert.Equal(t, "invoice-inv-2026-0001.html", SuggestedName(doc, ".html"))
	assert.Equal(t, "document.pdf", SuggestedName(&models.Document{}, "pdf"))
}

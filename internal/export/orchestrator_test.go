package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdoc/internal/adapters/pdf"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

type fakeStrategy struct {
	name string
	fn   func(ctx context.Context, job *Job) (*models.Artifact, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Execute(ctx context.Context, job *Job) (*models.Artifact, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, job)
}

func (f *fakeStrategy) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func pdfStrategy() *fakeStrategy {
	return &fakeStrategy{name: StrategyFile, fn: func(ctx context.Context, job *Job) (*models.Artifact, error) {
		return models.NewFileArtifact([]byte("%PDF-1.7 "+job.Document.Business.Name), "receipt.pdf", pdf.ContentType), nil
	}}
}

func failingFile(err error) *fakeStrategy {
	return &fakeStrategy{name: StrategyFile, fn: func(context.Context, *Job) (*models.Artifact, error) {
		return nil, err
	}}
}

func printOK() *fakeStrategy {
	return &fakeStrategy{name: StrategyPrint, fn: func(context.Context, *Job) (*models.Artifact, error) {
		return models.NewPrintSurfaceArtifact("<html></html>", "http://127.0.0.1/print/x.html"), nil
	}}
}

func printBlocked() *fakeStrategy {
	return &fakeStrategy{name: StrategyPrint, fn: func(context.Context, *Job) (*models.Artifact, error) {
		return nil, wrap(ErrFallbackBlocked, errors.New("pop-up blocked"))
	}}
}

func nullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestOrchestrator(s Strategies, opts ...Option) (*Orchestrator, *DegradeFlag) {
	flag := &DegradeFlag{}
	resolver := render.NewResolver(money.New("NGN", "en"), nullLogger())
	opts = append([]Option{WithLogger(nullLogger()), WithDegradeFlag(flag)}, opts...)
	return NewOrchestrator(resolver, s, opts...), flag
}

func testDocument() *models.Document {
	doc := models.NewDocument(models.KindReceipt, time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC), 7)
	doc.Business.Name = "Mama Put"
	doc.Items = []models.LineItem{
		*models.NewCustomLineItem("Jollof rice", decimal.NewFromInt(1500), 2, ""),
		*models.NewCustomLineItem("Chicken", decimal.NewFromInt(2300), 1, ""),
	}
	doc.Adjustments.VATEnabled = true
	doc.Adjustments.VATRate = decimal.RequireFromString("7.5")
	return doc
}

func TestExport_PrimarySucceeds(t *testing.T) {
	file, printer := pdfStrategy(), printOK()
	o, flag := newTestOrchestrator(Strategies{File: file, Print: printer})

	res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, StrategyFile, res.Strategy)
	assert.False(t, res.Degraded)
	assert.Len(t, res.Attempts, 1)
	assert.Equal(t, models.ArtifactFile, res.Artifact.Kind)
	assert.Equal(t, 0, printer.Calls())
	assert.False(t, flag.IsSet())
}

func TestExport_DegradesToPrint(t *testing.T) {
	file, printer := failingFile(errors.New("font cache corrupt")), printOK()
	o, flag := newTestOrchestrator(Strategies{File: file, Print: printer})

	res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, StrategyPrint, res.Strategy)
	assert.True(t, res.Degraded)
	require.Len(t, res.Attempts, 2)
	assert.Contains(t, res.Attempts[0].Error, "font cache corrupt")
	assert.Equal(t, models.ArtifactPrintSurface, res.Artifact.Kind)
	assert.True(t, flag.IsSet())
	assert.True(t, o.Degraded())
}

func TestExport_AfterDegradeSkipsPrimary(t *testing.T) {
	file, printer := failingFile(errors.New("boom")), printOK()
	o, _ := newTestOrchestrator(Strategies{File: file, Print: printer})

	o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})
	for i := 0; i < 3; i++ {
		res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})
		require.True(t, res.OK())
		assert.True(t, res.Degraded)
		assert.Len(t, res.Attempts, 1)
	}
	res := o.Export(context.Background(), testDocument(), Request{Type: TypePreview})
	require.True(t, res.OK())

	assert.Equal(t, 1, file.Calls())
	assert.Equal(t, 5, printer.Calls())
}

func TestExport_DegradeFlagSharedAcrossOrchestrators(t *testing.T) {
	flag := &DegradeFlag{}
	first, _ := newTestOrchestrator(Strategies{File: failingFile(errors.New("boom")), Print: printOK()}, WithDegradeFlag(flag))
	file := pdfStrategy()
	second, _ := newTestOrchestrator(Strategies{File: file, Print: printOK()}, WithDegradeFlag(flag))

	first.Export(context.Background(), testDocument(), Request{Type: TypeDownload})
	res := second.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	require.True(t, res.OK())
	assert.Equal(t, StrategyPrint, res.Strategy)
	assert.Equal(t, 0, file.Calls())
}

func TestExport_UnusableArtifactDegrades(t *testing.T) {
	tests := []struct {
		name     string
		artifact *models.Artifact
	}{
		{"empty blob", models.NewFileArtifact(nil, "x.pdf", pdf.ContentType)},
		{"missing header", models.NewFileArtifact([]byte("<html>"), "x.pdf", pdf.ContentType)},
		{"nil artifact", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &fakeStrategy{name: StrategyFile, fn: func(context.Context, *Job) (*models.Artifact, error) {
				return tt.artifact, nil
			}}
			o, flag := newTestOrchestrator(Strategies{File: file, Print: printOK()})

			res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

			require.True(t, res.OK())
			assert.Equal(t, StrategyPrint, res.Strategy)
			assert.True(t, flag.IsSet())
			assert.Contains(t, res.Attempts[0].Error, ErrRenderingUnavailable.Error())
		})
	}
}

func TestExport_FallbackBlocked(t *testing.T) {
	o, _ := newTestOrchestrator(Strategies{File: failingFile(errors.New("boom")), Print: printBlocked()})

	res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	assert.Equal(t, StatusFailed, res.Status)
	assert.Nil(t, res.Artifact)
	assert.Equal(t, StrategyPrint, res.Strategy)
	assert.Equal(t, RemedyAllowPopups, res.Remedy)
	assert.Contains(t, res.Reason, "pop-up blocked")
	assert.ErrorIs(t, res.Err, ErrFallbackBlocked)
	assert.True(t, IsBlocked(res.Err))
	assert.Equal(t, RemedyAllowPopups, RemedyFor(res.Err))
}

func TestExport_StoreFailureKeepsFileRendering(t *testing.T) {
	file, printer := failingFile(wrap(ErrArtifactStore, errors.New("disk full"))), printOK()
	o, flag := newTestOrchestrator(Strategies{File: file, Print: printer})

	res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, StrategyPrint, res.Strategy)
	assert.True(t, res.Degraded)
	assert.False(t, flag.IsSet())

	o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})
	assert.Equal(t, 2, file.Calls())
}

func TestExport_PrintStoreFailureIsNotBlocked(t *testing.T) {
	printer := &fakeStrategy{name: StrategyPrint, fn: func(context.Context, *Job) (*models.Artifact, error) {
		return nil, wrap(ErrArtifactStore, errors.New("disk full"))
	}}
	prompted := false
	confirmer := ConfirmerFunc(func(context.Context, Prompt) (Decision, error) {
		prompted = true
		return DecisionRetry, nil
	})
	o, _ := newTestOrchestrator(Strategies{File: failingFile(errors.New("boom")), Print: printer}, WithConfirmer(confirmer))

	res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, RemedyRetry, res.Remedy)
	assert.NotEqual(t, RemedyAllowPopups, res.Remedy)
	assert.ErrorIs(t, res.Err, ErrArtifactStore)
	assert.False(t, IsBlocked(res.Err))
	assert.False(t, prompted)
	assert.Equal(t, 1, printer.Calls())
}

func TestExport_PrintRequestHasNoFallback(t *testing.T) {
	file := pdfStrategy()
	o, flag := newTestOrchestrator(Strategies{File: file, Print: printBlocked()})

	res := o.Export(context.Background(), testDocument(), Request{Type: TypePrint})

	assert.Equal(t, StatusFailed, res.Status)
	assert.Len(t, res.Attempts, 1)
	assert.Equal(t, 0, file.Calls())
	assert.False(t, flag.IsSet())
}

func TestExport_HandheldPreviewUsesPrint(t *testing.T) {
	for _, device := range []DeviceClass{DeviceMobile, DeviceTablet} {
		t.Run(string(device), func(t *testing.T) {
			file, printer := pdfStrategy(), printOK()
			o, flag := newTestOrchestrator(Strategies{File: file, Print: printer})

			res := o.Export(context.Background(), testDocument(), Request{Type: TypePreview, Device: device})

			require.True(t, res.OK())
			assert.Equal(t, StrategyPrint, res.Strategy)
			assert.False(t, res.Degraded)
			assert.Equal(t, 0, file.Calls())
			assert.False(t, flag.IsSet())

			res = o.Export(context.Background(), testDocument(), Request{Type: TypeDownload, Device: device})
			require.True(t, res.OK())
			assert.Equal(t, StrategyFile, res.Strategy)
		})
	}
}

func TestExport_BusyWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	file := &fakeStrategy{name: StrategyFile, fn: func(ctx context.Context, job *Job) (*models.Artifact, error) {
		if job.Document.Business.Name == "Mama Put" {
			close(started)
			<-unblock
		}
		return models.NewFileArtifact([]byte("%PDF-1.7 "+job.Document.Business.Name), "r.pdf", pdf.ContentType), nil
	}}
	o, _ := newTestOrchestrator(Strategies{File: file, Print: printOK()})

	doc := testDocument()
	done := make(chan Result, 1)
	go func() {
		done <- o.Export(context.Background(), doc, Request{Type: TypeDownload})
	}()
	<-started

	busy := o.Export(context.Background(), doc, Request{Type: TypeDownload})
	assert.Equal(t, StatusBusy, busy.Status)
	assert.Equal(t, RemedyWait, busy.Remedy)
	assert.True(t, IsBusy(busy.Err))
	assert.Nil(t, busy.Artifact)
	assert.Equal(t, 1, o.InFlight())

	other := testDocument()
	other.Business.Name = "Other"
	res := o.Export(context.Background(), other, Request{Type: TypeDownload})
	require.True(t, res.OK())

	doc.Business.Name = "Edited mid-export"
	doc.Items[0].Quantity = 99
	close(unblock)

	res = <-done
	require.True(t, res.OK())
	assert.Equal(t, "%PDF-1.7 Mama Put", string(res.Artifact.Blob))
	assert.Equal(t, 2, file.Calls())
	assert.Equal(t, 0, o.InFlight())

	again := o.Export(context.Background(), doc, Request{Type: TypeDownload})
	assert.Equal(t, StatusOK, again.Status)
	assert.Equal(t, "%PDF-1.7 Edited mid-export", string(again.Artifact.Blob))
}

func TestExport_SnapshotTotals(t *testing.T) {
	var seen models.Totals
	file := &fakeStrategy{name: StrategyFile, fn: func(ctx context.Context, job *Job) (*models.Artifact, error) {
		seen = job.Totals
		return models.NewFileArtifact([]byte("%PDF-1.7"), "r.pdf", pdf.ContentType), nil
	}}
	o, _ := newTestOrchestrator(Strategies{File: file, Print: printOK()})

	o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	assert.Equal(t, "5697.5", seen.Total.String())
}

func TestExport_Share(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		link       string
		wantStatus Status
		wantReason string
	}{
		{"handed off", nil, "https://wa.me/?text=x", StatusOK, ""},
		{"unsupported", ErrShareUnsupported, "", StatusOK, "share surface unsupported"},
		{"blocked", wrap(ErrShareBlocked, errors.New("no handler")), "", StatusFailed, "no handler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeStrategy{name: StrategyShare, fn: func(ctx context.Context, job *Job) (*models.Artifact, error) {
				if errors.Is(tt.err, ErrShareBlocked) {
					return nil, tt.err
				}
				return models.NewTextArtifact("summary", tt.link), tt.err
			}}
			o, _ := newTestOrchestrator(Strategies{Share: s})

			res := o.Export(context.Background(), testDocument(), Request{Type: TypeShare})

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Contains(t, res.Reason, tt.wantReason)
			if tt.wantStatus == StatusOK {
				assert.Equal(t, tt.link, res.Artifact.ShareLink)
			} else {
				assert.Equal(t, RemedyCopyText, res.Remedy)
			}
		})
	}
}

func TestExport_ConfirmerRetry(t *testing.T) {
	var attempts int
	printer := &fakeStrategy{name: StrategyPrint, fn: func(context.Context, *Job) (*models.Artifact, error) {
		attempts++
		if attempts == 1 {
			return nil, wrap(ErrFallbackBlocked, errors.New("pop-up blocked"))
		}
		return models.NewPrintSurfaceArtifact("<html></html>", ""), nil
	}}

	var prompt Prompt
	confirmer := ConfirmerFunc(func(ctx context.Context, p Prompt) (Decision, error) {
		prompt = p
		return DecisionRetry, nil
	})
	o, _ := newTestOrchestrator(Strategies{Print: printer}, WithConfirmer(confirmer))

	res := o.Export(context.Background(), testDocument(), Request{Type: TypePrint})

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, 2, printer.Calls())
	assert.Equal(t, RemedyAllowPopups, prompt.Remedy)
	assert.Equal(t, StrategyPrint, prompt.Strategy)
}

func TestExport_ConfirmerAcknowledge(t *testing.T) {
	printer := printBlocked()
	confirmer := ConfirmerFunc(func(context.Context, Prompt) (Decision, error) {
		return DecisionAcknowledge, nil
	})
	o, _ := newTestOrchestrator(Strategies{Print: printer}, WithConfirmer(confirmer))

	res := o.Export(context.Background(), testDocument(), Request{Type: TypePrint})

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, printer.Calls())
}

func TestExport_ConfirmerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	confirmer := ConfirmerFunc(func(ctx context.Context, p Prompt) (Decision, error) {
		cancel()
		<-ctx.Done()
		return DecisionRetry, ctx.Err()
	})
	printer := printBlocked()
	o, _ := newTestOrchestrator(Strategies{Print: printer}, WithConfirmer(confirmer))

	res := o.Export(ctx, testDocument(), Request{Type: TypePrint})

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, printer.Calls())
	assert.Contains(t, res.Reason, context.Canceled.Error())
}

func TestExport_CancelledContextDoesNotDegrade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	file := &fakeStrategy{name: StrategyFile, fn: func(ctx context.Context, _ *Job) (*models.Artifact, error) {
		return nil, ctx.Err()
	}}
	printer := printOK()
	o, flag := newTestOrchestrator(Strategies{File: file, Print: printer})

	res := o.Export(ctx, testDocument(), Request{Type: TypeDownload})

	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, flag.IsSet())
	assert.Equal(t, 0, printer.Calls())
}

func TestExport_PanickingStrategy(t *testing.T) {
	file := &fakeStrategy{name: StrategyFile, fn: func(context.Context, *Job) (*models.Artifact, error) {
		panic("nil map")
	}}
	o, _ := newTestOrchestrator(Strategies{File: file, Print: printOK()})

	res := o.Export(context.Background(), testDocument(), Request{Type: TypeDownload})

	require.True(t, res.OK())
	assert.Contains(t, res.Attempts[0].Error, "panicked")
}

func TestExport_InvalidRequests(t *testing.T) {
	o, _ := newTestOrchestrator(Strategies{File: pdfStrategy(), Print: printOK()})

	tests := []struct {
		name string
		doc  *models.Document
		req  Request
	}{
		{"unknown type", testDocument(), Request{Type: "fax"}},
		{"unknown device", testDocument(), Request{Type: TypeDownload, Device: "watch"}},
		{"nil document", nil, Request{Type: TypeDownload}},
		{"no share strategy", testDocument(), Request{Type: TypeShare}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := o.Export(context.Background(), tt.doc, tt.req)
			assert.Equal(t, StatusFailed, res.Status)
			assert.ErrorIs(t, res.Err, ErrInvalidRequest)
			assert.Equal(t, RemedyFixRequest, res.Remedy)
		})
	}
}

func TestRequest_Normalize(t *testing.T) {
	r := Request{Type: " Download ", ShareChannel: "SMS"}.Normalize()
	assert.Equal(t, TypeDownload, r.Type)
	assert.Equal(t, DeviceDesktop, r.Device)
	assert.Equal(t, "sms", r.ShareChannel)
	assert.NoError(t, r.Validate())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateGenerating, true},
		{StateGenerating, StateSucceeded, true},
		{StateGenerating, StateDegrading, true},
		{StateDegrading, StateGenerating, true},
		{StateGenerating, StateFailed, true},
		{StateIdle, StateSucceeded, false},
		{StateSucceeded, StateGenerating, false},
		{StateFailed, StateDegrading, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateDegrading.Terminal())
}

func TestDegradeFlag(t *testing.T) {
	var f DegradeFlag
	assert.False(t, f.IsSet())
	assert.True(t, f.Set())
	assert.False(t, f.Set())
	assert.True(t, f.IsSet())
	assert.Same(t, ProcessDegradeFlag(), ProcessDegradeFlag())
}

func TestError(t *testing.T) {
	err := NewError("download", StrategyPrint, ErrFallbackBlocked, RemedyAllowPopups)
	assert.True(t, strings.Contains(err.Error(), "print strategy"))
	assert.ErrorIs(t, err, ErrFallbackBlocked)
	assert.Equal(t, "", RemedyFor(errors.New("plain")))
}

package printsurface

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pkg/browser"
)

// ErrLaunchBlocked means the print surface could not be opened
var ErrLaunchBlocked = errors.New("print surface blocked")

// Launcher opens a print surface URL for the user
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(ctx context.Context, url string) error

// Launch calls f
func (f LauncherFunc) Launch(ctx context.Context, url string) error {
	return f(ctx, url)
}

// BrowserLauncher opens URLs in the system browser
type BrowserLauncher struct {
	open func(url string) error
}

// NewBrowserLauncher creates a launcher backed by the system browser. Output
// of the browser process is discarded.
func NewBrowserLauncher() *BrowserLauncher {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &BrowserLauncher{open: browser.OpenURL}
}

// Launch opens url, wrapping any failure in ErrLaunchBlocked
func (b *BrowserLauncher) Launch(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.open(url); err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchBlocked, err)
	}
	return nil
}

// ClientLauncher leaves opening to the client: the URL travels back in the
// export result and the caller navigates to it. Used by the HTTP surface.
type ClientLauncher struct{}

// Launch always succeeds
func (ClientLauncher) Launch(ctx context.Context, url string) error {
	return ctx.Err()
}

// Package share hands a document summary to a messaging target through a
// deep link.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Channel names a share target
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelSMS       Channel = "sms"
	ChannelEmail     Channel = "email"
	ChannelClipboard Channel = "clipboard"
)

var (
	// ErrUnsupported means the channel cannot hand off; the caller should
	// fall back to clipboard text
	ErrUnsupported = errors.New("share surface unsupported")

	// ErrBlocked means the runtime refused to open the share target
	ErrBlocked = errors.New("share surface blocked")
)

// Message is what gets shared
type Message struct {
	Subject   string
	Body      string
	Recipient string
}

// Opener hands a URL to the operating system or browser
type Opener func(ctx context.Context, rawURL string) error

// Surface hands off a message and returns the link that was used
type Surface interface {
	Share(ctx context.Context, channel Channel, msg Message) (string, error)
}

// LinkSurface builds deep links. When an Opener is set the link is also
// opened; otherwise the link is returned for the caller to present.
type LinkSurface struct {
	Open Opener
}

// NewLinkSurface creates a LinkSurface
func NewLinkSurface(open Opener) *LinkSurface {
	return &LinkSurface{Open: open}
}

// ParseChannel normalizes a channel name. Unknown names are rejected.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelWhatsApp, ChannelSMS, ChannelEmail, ChannelClipboard:
		return c, nil
	case "":
		return ChannelWhatsApp, nil
	default:
		return "", fmt.Errorf("unknown share channel %q", s)
	}
}

// Share builds the deep link for channel and opens it when possible
func (s *LinkSurface) Share(ctx context.Context, channel Channel, msg Message) (string, error) {
	link, err := Link(channel, msg)
	if err != nil {
		return "", err
	}

	if s.Open != nil {
		if err := s.Open(ctx, link); err != nil {
			return link, fmt.Errorf("%w: %v", ErrBlocked, err)
		}
	}
	return link, nil
}

// Link returns the deep link for a channel. Clipboard has no link and
// reports ErrUnsupported.
func Link(channel Channel, msg Message) (string, error) {
	body := strings.TrimSpace(msg.Body)

	switch channel {
	case ChannelWhatsApp:
		return "https://wa.me/" + digits(msg.Recipient) + "?text=" + escape(body), nil
	case ChannelSMS:
		return "sms:" + phone(msg.Recipient) + "?body=" + escape(body), nil
	case ChannelEmail:
		q := "subject=" + escape(msg.Subject) + "&body=" + escape(body)
		return "mailto:" + url.PathEscape(strings.TrimSpace(msg.Recipient)) + "?" + q, nil
	case ChannelClipboard:
		return "", ErrUnsupported
	default:
		return "", fmt.Errorf("%w: channel %q", ErrUnsupported, channel)
	}
}

// escape percent-encodes for a query value using %20 for spaces, which
// messaging apps decode more reliably than '+'
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func phone(s string) string {
	d := digits(s)
	if d != "" && strings.HasPrefix(strings.TrimSpace(s), "+") {
		return "+" + d
	}
	return d
}

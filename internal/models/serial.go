package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// DefaultSerialTemplate is used when no SERIAL_TEMPLATE is configured
const DefaultSerialTemplate = "{KIND}-{YYYY}{MM}{DD}-{SEQ4}"

// FormatSerial formats a human-readable serial number from a template, the
// document kind, the issue time and a monotonic sequence.
//
// Supported tokens: {KIND} {YYYY} {YY} {MM} {DD} {SEQ} {SEQn}
func FormatSerial(template string, kind DocumentKind, issuedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("serial template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid serial sequence: %d", seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{KIND}", kind.SerialPrefix())
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in serial format: %s", out)
	}

	return out, nil
}

package models

import "time"

// ArtifactKind tags the variant held by an Artifact
type ArtifactKind string

const (
	ArtifactFile         ArtifactKind = "file"
	ArtifactText         ArtifactKind = "text"
	ArtifactPrintSurface ArtifactKind = "printSurface"
)

// Artifact is the delivered output of an export request. Exactly one variant
// is populated, selected by Kind.
type Artifact struct {
	Kind ArtifactKind `json:"kind"`

	// file
	Blob          []byte `json:"-"`
	SuggestedName string `json:"suggested_name,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	Handle        string `json:"handle,omitempty"`
	Size          int    `json:"size,omitempty"`

	// text
	Content   string `json:"content,omitempty"`
	ShareLink string `json:"share_link,omitempty"`

	// printSurface
	Markup string `json:"markup,omitempty"`

	// URL is the transient location of a file or an opened print surface
	URL string `json:"url,omitempty"`

	// ExpiresAt is when the stored handle is released
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewFileArtifact creates a file artifact
func NewFileArtifact(blob []byte, suggestedName, contentType string) *Artifact {
	return &Artifact{
		Kind:          ArtifactFile,
		Blob:          blob,
		SuggestedName: suggestedName,
		ContentType:   contentType,
		Size:          len(blob),
	}
}

// NewTextArtifact creates a text artifact
func NewTextArtifact(content, shareLink string) *Artifact {
	return &Artifact{
		Kind:      ArtifactText,
		Content:   content,
		ShareLink: shareLink,
	}
}

// NewPrintSurfaceArtifact creates a print surface artifact
func NewPrintSurfaceArtifact(markup, url string) *Artifact {
	return &Artifact{
		Kind:   ArtifactPrintSurface,
		Markup: markup,
		URL:    url,
	}
}

package export

import (
	"fmt"
	"strings"
)

// RequestType is what the user asked the export to produce
type RequestType string

const (
	TypeDownload RequestType = "download"
	TypePreview  RequestType = "preview"
	TypePrint    RequestType = "print"
	TypeShare    RequestType = "share"
)

// DeviceClass is the runtime form factor, read once per request
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
)

// Request describes one export
type Request struct {
	Type         RequestType `json:"type" validate:"required,oneof=download preview print share"`
	Device       DeviceClass `json:"device,omitempty" validate:"omitempty,oneof=desktop mobile tablet"`
	TemplateID   string      `json:"template_id,omitempty" validate:"max=64"`
	ShareChannel string      `json:"share_channel,omitempty" validate:"omitempty,oneof=whatsapp sms email clipboard"`
}

// Normalize lower-cases enum fields and fills the desktop default
func (r Request) Normalize() Request {
	r.Type = RequestType(strings.ToLower(strings.TrimSpace(string(r.Type))))
	r.Device = DeviceClass(strings.ToLower(strings.TrimSpace(string(r.Device))))
	if r.Device == "" {
		r.Device = DeviceDesktop
	}
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	r.ShareChannel = strings.ToLower(strings.TrimSpace(r.ShareChannel))
	return r
}

// Validate checks the enum fields of a normalized request
func (r Request) Validate() error {
	switch r.Type {
	case TypeDownload, TypePreview, TypePrint, TypeShare:
	default:
		return fmt.Errorf("unknown export type %q", r.Type)
	}

	switch r.Device {
	case DeviceDesktop, DeviceMobile, DeviceTablet:
	default:
		return fmt.Errorf("unknown device class %q", r.Device)
	}

	return nil
}

// IsHandheld reports whether the device is a phone or tablet
func (d DeviceClass) IsHandheld() bool {
	return d == DeviceMobile || d == DeviceTablet
}

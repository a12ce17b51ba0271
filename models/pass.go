package models

import (
	"strconv"
	"strings"
)

// GeneratePassRequest is the inbound payload for POST /generate-pass. Every
// field is optional; absent fields leave the matching template slot untouched.
type GeneratePassRequest struct {
	AppointmentDate  string   `json:"appointmentDate,omitempty"`
	AppointmentTime  string   `json:"appointmentTime,omitempty"`
	AppointmentType  string   `json:"appointmentType,omitempty"`
	ClientName       string   `json:"clientName,omitempty"`
	StaffName        string   `json:"staffName,omitempty"`
	Location         string   `json:"location,omitempty"`
	FullAddress      string   `json:"fullAddress,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	BackgroundColor  string   `json:"backgroundColor,omitempty" binding:"omitempty,rgbcolor"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	NotificationTime *int     `json:"notificationTime,omitempty" binding:"omitempty,gte=0"`
	Duration         *FlexInt `json:"duration,omitempty"`
	StripImage       string   `json:"stripImage,omitempty"`
	StripImageType   string   `json:"stripImageType,omitempty"`
}

// FlexInt accepts a JSON number or a numeric string. A value that cannot be
// coerced to an integer is treated as absent rather than rejected.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		f.Value = v
		f.Valid = true
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = int(v)
		f.Valid = true
	}
	return nil
}

func (f *FlexInt) MarshalJSON() ([]byte, error) {
	if f == nil || !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

type GeneratePassResponse struct {
	Success             bool   `json:"success"`
	PassURL             string `json:"passUrl"`
	PassID              string `json:"passId"`
	NotificationTime    string `json:"notificationTime,omitempty"`
	AuthenticationToken string `json:"authenticationToken"`
	PassTypeIdentifier  string `json:"passTypeIdentifier"`
	SerialNumber        string `json:"serialNumber"`
	WebServiceURL       string `json:"webServiceURL"`
	UpdatedAt           string `json:"updatedAt"`
}

// PassField is one labeled entry in a pass field list. Fields are addressed by
// key, never by position.
type PassField struct {
	Key           string `json:"key"`
	Label         string `json:"label,omitempty"`
	Value         string `json:"value"`
	ChangeMessage string `json:"changeMessage,omitempty"`
	TextAlignment string `json:"textAlignment,omitempty"`
}

type Barcode struct {
	Message         string `json:"message"`
	Format          string `json:"format"`
	MessageEncoding string `json:"messageEncoding"`
	AltText         string `json:"altText,omitempty"`
}

type Location struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RelevantText string  `json:"relevantText,omitempty"`
}

type TicketFields struct {
	HeaderFields    []PassField `json:"headerFields"`
	PrimaryFields   []PassField `json:"primaryFields"`
	SecondaryFields []PassField `json:"secondaryFields"`
	AuxiliaryFields []PassField `json:"auxiliaryFields"`
	BackFields      []PassField `json:"backFields"`
}

// PassDocument is the pass.json structure bundled into the final archive.
type PassDocument struct {
	FormatVersion       int           `json:"formatVersion"`
	PassTypeIdentifier  string        `json:"passTypeIdentifier"`
	SerialNumber        string        `json:"serialNumber"`
	TeamIdentifier      string        `json:"teamIdentifier"`
	OrganizationName    string        `json:"organizationName"`
	Description         string        `json:"description"`
	LogoText            string        `json:"logoText,omitempty"`
	ForegroundColor     string        `json:"foregroundColor,omitempty"`
	BackgroundColor     string        `json:"backgroundColor,omitempty"`
	LabelColor          string        `json:"labelColor,omitempty"`
	SuppressStripShine  bool          `json:"suppressStripShine"`
	WebServiceURL       string        `json:"webServiceURL,omitempty"`
	AuthenticationToken string        `json:"authenticationToken,omitempty"`
	RelevantDate        string        `json:"relevantDate,omitempty"`
	Locations           []Location    `json:"locations,omitempty"`
	Barcode             *Barcode      `json:"barcode,omitempty"`
	Barcodes            []Barcode     `json:"barcodes,omitempty"`
	EventTicket         *TicketFields `json:"eventTicket,omitempty"`
}

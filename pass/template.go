package pass

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/appointpass/backend-pass/models"
)

// LoadTemplate reads the fixed base template into a typed pass document.
func LoadTemplate(path string) (*models.PassDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pass template: %w", err)
	}

	var doc models.PassDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pass template: %w", err)
	}
	if doc.EventTicket == nil {
		return nil, fmt.Errorf("pass template %s has no eventTicket section", path)
	}
	return &doc, nil
}

func cloneDocument(doc *models.PassDocument) (*models.PassDocument, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("clone pass template: %w", err)
	}
	var out models.PassDocument
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone pass template: %w", err)
	}
	return &out, nil
}

// setField overwrites the value of the field with the given key. Fields are
// addressed by key so a reshaped template fails loudly instead of corrupting
// an unrelated slot.
func setField(fields []models.PassField, listName, key, value string) error {
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("pass template has no %s field with key %q", listName, key)
}

// upsertField updates the field with a matching key in place, preserving its
// position, or appends when absent.
func upsertField(fields []models.PassField, f models.PassField) []models.PassField {
	for i := range fields {
		if fields[i].Key == f.Key {
			fields[i] = f
			return fields
		}
	}
	return append(fields, f)
}

// project produces the final pass document from the base template and the
// normalized request values. Only the listed slots are touched; the rest of
// the template passes through unmodified.
func (a *Assembler) project(n *Normalized, req *models.GeneratePassRequest) (*models.PassDocument, error) {
	doc, err := cloneDocument(a.tpl)
	if err != nil {
		return nil, err
	}

	doc.PassTypeIdentifier = a.cfg.PassTypeIdentifier
	doc.TeamIdentifier = a.cfg.TeamIdentifier
	doc.OrganizationName = a.cfg.OrganizationName
	doc.SerialNumber = n.Serial
	doc.AuthenticationToken = n.AuthToken
	doc.WebServiceURL = a.cfg.BaseURL + "/api/v1/passes"
	doc.SuppressStripShine = true

	// The legacy singular barcode and the modern array carry the same
	// download link so both old and new wallet clients scan it.
	barcode := models.Barcode{
		Message:         a.downloadURL(n.Serial),
		Format:          "PKBarcodeFormatQR",
		MessageEncoding: "iso-8859-1",
	}
	doc.Barcode = &barcode
	doc.Barcodes = []models.Barcode{barcode}

	if n.HasStart {
		doc.RelevantDate = n.StartsAt.Format(time.RFC3339)
	}

	relevantText := "Your appointment is nearby"
	if req.Location != "" {
		relevantText = fmt.Sprintf("Your appointment at %s is nearby", req.Location)
	}
	doc.Locations = []models.Location{{
		Latitude:     n.Latitude,
		Longitude:    n.Longitude,
		RelevantText: relevantText,
	}}

	ticket := doc.EventTicket
	if err := setField(ticket.BackFields, "back", "directions", "Get directions: "+n.MapURL); err != nil {
		return nil, err
	}

	if req.AppointmentDate != "" {
		if err := setField(ticket.HeaderFields, "header", "date", n.DateText); err != nil {
			return nil, err
		}
	}
	if req.AppointmentType != "" {
		if err := setField(ticket.PrimaryFields, "primary", "type", req.AppointmentType); err != nil {
			return nil, err
		}
	}
	if req.AppointmentTime != "" {
		if err := setField(ticket.SecondaryFields, "secondary", "time", n.TimeText); err != nil {
			return nil, err
		}
	}
	if req.Location != "" {
		if err := setField(ticket.SecondaryFields, "secondary", "location", n.LocationText); err != nil {
			return nil, err
		}
	}
	if req.ClientName != "" {
		if err := setField(ticket.AuxiliaryFields, "auxiliary", "client", req.ClientName); err != nil {
			return nil, err
		}
	}
	if req.StaffName != "" {
		if err := setField(ticket.AuxiliaryFields, "auxiliary", "staff", req.StaffName); err != nil {
			return nil, err
		}
	}
	if req.BackgroundColor != "" {
		doc.BackgroundColor = n.ColorText
	}
	if req.FullAddress != "" {
		if err := setField(ticket.BackFields, "back", "address", n.AddressText); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		if err := setField(ticket.BackFields, "back", "notes", req.Notes); err != nil {
			return nil, err
		}
	}
	if n.DurationText != "" {
		ticket.AuxiliaryFields = upsertField(ticket.AuxiliaryFields, models.PassField{
			Key:   "duration",
			Label: "DURATION",
			Value: n.DurationText,
		})
	}

	return doc, nil
}

// Package pass implements the pass assembly pipeline: request normalization,
// template projection, asset collection and bundle emission.
package pass

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appointpass/backend-pass/models"
)

const (
	defaultLeadMinutes = 15

	defaultLatitude  = 40.7580
	defaultLongitude = -73.9855

	defaultColorR uint8 = 25
	defaultColorG uint8 = 118
	defaultColorB uint8 = 210
)

var (
	countrySuffix = regexp.MustCompile(`(?i)[\s,]*\bUSA\s*$`)
	rgbPattern    = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
)

// Normalized carries the defaulted and derived values for one request.
type Normalized struct {
	Serial    string
	AuthToken string

	StartsAt   time.Time
	HasStart   bool
	ReminderAt time.Time

	DateText     string
	TimeText     string
	LocationText string
	AddressText  string
	DurationText string

	Latitude    float64
	Longitude   float64
	LeadMinutes int
	MapURL      string

	ColorR, ColorG, ColorB uint8
	ColorText              string
}

// Normalize extracts and defaults the appointment fields and computes every
// derived value the projector and asset collector need.
func Normalize(req *models.GeneratePassRequest) *Normalized {
	n := &Normalized{
		Serial:      NewSerial(),
		AuthToken:   uuid.New().String(),
		LeadMinutes: defaultLeadMinutes,
		Latitude:    defaultLatitude,
		Longitude:   defaultLongitude,
	}

	if req.NotificationTime != nil && *req.NotificationTime >= 0 {
		n.LeadMinutes = *req.NotificationTime
	}
	if req.Latitude != nil {
		n.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		n.Longitude = *req.Longitude
	}
	n.MapURL = fmt.Sprintf("http://maps.apple.com/?ll=%.6f,%.6f", n.Latitude, n.Longitude)

	n.StartsAt, n.HasStart = CombineDateTime(req.AppointmentDate, req.AppointmentTime)
	if n.HasStart {
		n.ReminderAt = n.StartsAt.Add(-time.Duration(n.LeadMinutes) * time.Minute)
		n.DateText = n.StartsAt.Format("Mon, Jan 2")
	} else {
		n.DateText = req.AppointmentDate
	}

	if h, m, ok := parseClock(req.AppointmentTime); ok {
		n.TimeText = time.Date(2000, 1, 1, h, m, 0, 0, time.Local).Format("3:04 PM")
	} else {
		n.TimeText = req.AppointmentTime
	}

	n.LocationText = FormatAddress(req.Location)
	n.AddressText = FormatAddress(req.FullAddress)

	if req.Duration != nil && req.Duration.Valid {
		n.DurationText = FormatDuration(req.Duration.Value)
	}

	n.ColorR, n.ColorG, n.ColorB = ParseRGB(req.BackgroundColor)
	if req.BackgroundColor != "" {
		n.ColorText = fmt.Sprintf("rgb(%d,%d,%d)", n.ColorR, n.ColorG, n.ColorB)
	}

	return n
}

// NewSerial returns a request-scoped identifier, used as both the serial
// number and the bundle file name stem. The random suffix keeps serials of
// concurrently handled requests distinct, so their temp and output paths
// never collide.
func NewSerial() string {
	return fmt.Sprintf("pass-%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

// FormatAddress strips a trailing country suffix and splits the address at
// the first comma into a two-line form. Input without a comma is returned
// suffix-stripped but otherwise unchanged.
func FormatAddress(s string) string {
	addr := strings.TrimSpace(countrySuffix.ReplaceAllString(strings.TrimSpace(s), ""))
	if addr == "" {
		return ""
	}

	idx := strings.Index(addr, ",")
	if idx < 0 {
		return addr
	}

	line1 := strings.TrimSpace(addr[:idx])
	line2 := strings.TrimSpace(addr[idx+1:])
	if line2 == "" {
		return line1
	}
	return line1 + "\n" + line2
}

// FormatDuration renders a minute count as "<m> min", "<h> hr" or
// "<h> hr <m> min". Negative input yields an empty string.
func FormatDuration(minutes int) string {
	if minutes < 0 {
		return ""
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%d hr", h)
	}
	return fmt.Sprintf("%d hr %d min", h, m)
}

// ParseRGB parses an "rgb(r,g,b)" triple into byte components, falling back
// to the default pass color when the pattern does not match.
func ParseRGB(s string) (uint8, uint8, uint8) {
	m := rgbPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return defaultColorR, defaultColorG, defaultColorB
	}
	var out [3]uint8
	for i, part := range m[1:] {
		v, err := strconv.Atoi(part)
		if err != nil || v > 255 {
			return defaultColorR, defaultColorG, defaultColorB
		}
		out[i] = uint8(v)
	}
	return out[0], out[1], out[2]
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var clockLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"15:04",
}

// CombineDateTime builds the appointment instant from the date's calendar
// components and the time value's hour and minute. A date without a time is
// used as-is; without a date there is no relevant instant.
func CombineDateTime(dateStr, timeStr string) (time.Time, bool) {
	if strings.TrimSpace(dateStr) == "" {
		return time.Time{}, false
	}

	var date time.Time
	var ok bool
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, strings.TrimSpace(dateStr)); err == nil {
			date = d
			ok = true
			break
		}
	}
	if !ok {
		return time.Time{}, false
	}

	hour, minute := date.Hour(), date.Minute()
	if h, m, parsed := parseClock(timeStr); parsed {
		hour, minute = h, m
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.Local), true
}

func parseClock(timeStr string) (int, int, bool) {
	s := strings.TrimSpace(timeStr)
	if s == "" {
		return 0, 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

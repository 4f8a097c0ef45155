package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultZoneName is the merchant zone used when none is configured.
const DefaultZoneName = "Eastern Time (US & Canada)"

// ErrUnknownZone is returned when a zone name cannot be resolved.
var ErrUnknownZone = errors.New("unknown time zone")

// displayNames maps merchant-facing zone names to IANA locations.
var displayNames = map[string]string{
	"International Date Line West": "Etc/GMT+12",
	"Hawaii":                       "Pacific/Honolulu",
	"Alaska":                       "America/Juneau",
	"Pacific Time (US & Canada)":   "America/Los_Angeles",
	"Arizona":                      "America/Phoenix",
	"Mountain Time (US & Canada)":  "America/Denver",
	"Central Time (US & Canada)":   "America/Chicago",
	"Eastern Time (US & Canada)":   "America/New_York",
	"Indiana (East)":               "America/Indiana/Indianapolis",
	"Atlantic Time (Canada)":       "America/Halifax",
	"Newfoundland":                 "America/St_Johns",
	"Brasilia":                     "America/Sao_Paulo",
	"UTC":                          "Etc/UTC",
	"London":                       "Europe/London",
	"Dublin":                       "Europe/Dublin",
	"Lisbon":                       "Europe/Lisbon",
	"Paris":                        "Europe/Paris",
	"Berlin":                       "Europe/Berlin",
	"Amsterdam":                    "Europe/Amsterdam",
	"Madrid":                       "Europe/Madrid",
	"Rome":                         "Europe/Rome",
	"Athens":                       "Europe/Athens",
	"Moscow":                       "Europe/Moscow",
	"Mumbai":                       "Asia/Kolkata",
	"Singapore":                    "Asia/Singapore",
	"Hong Kong":                    "Asia/Hong_Kong",
	"Tokyo":                        "Asia/Tokyo",
	"Sydney":                       "Australia/Sydney",
	"Auckland":                     "Pacific/Auckland",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Zone is a resolved merchant time zone.
type Zone struct {
	name string
	loc  *time.Location
}

func (z Zone) Name() string { return z.name }

func (z Zone) Location() *time.Location { return z.loc }

// Parse interprets a gateway date string as wall-clock time in the zone.
func (z Zone) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, z.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q in zone %s", value, z.name)
}

// Resolver turns a configured zone name into a Zone.
type Resolver interface {
	Resolve(name string) (Zone, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (Zone, error)

func (f ResolverFunc) Resolve(name string) (Zone, error) { return f(name) }

// Default resolves display names first and falls back to IANA names.
var Default Resolver = ResolverFunc(Resolve)

// Resolve looks the name up in the display-name table, then as an IANA
// location. An empty name resolves to DefaultZoneName.
func Resolve(name string) (Zone, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultZoneName
	}
	locName, ok := displayNames[name]
	if !ok {
		locName = name
	}
	loc, err := time.LoadLocation(locName)
	if err != nil {
		return Zone{}, fmt.Errorf("%w: %s", ErrUnknownZone, name)
	}
	return Zone{name: name, loc: loc}, nil
}

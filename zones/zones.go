// Package zones enumerates the platform's IANA time zones and resolves
// the zone chosen on the form, applying the daylight savings selector.
package zones

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bradfitz/latlong"

	"github.com/devskill-org/daylight/geo"
)

const (
	// DefaultZone is preselected whenever the platform provides it.
	DefaultZone = "America/Mexico_City"
	// Auto resolves the zone from the coordinate being calculated.
	Auto = "auto"
)

var (
	ErrUnknownZone = errors.New("unknown time zone")
	ErrNoZoneInfo  = errors.New("no time zone database found")
)

// Directories searched for a zoneinfo database, in order.
var systemDirs = []string{
	"/usr/share/zoneinfo/",
	"/usr/share/lib/zoneinfo/",
	"/usr/lib/locale/TZ/",
	"/etc/zoneinfo/",
}

// Zone is a time zone identifier with its standard time abbreviation.
type Zone struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
}

// Label returns the selector label, e.g. "America/Mexico_City (CST)".
func (z Zone) Label() string {
	return fmt.Sprintf("%s (%s)", z.ID, z.Abbreviation)
}

// List returns every zone available on the platform sorted by identifier.
// If dir is not empty only that zoneinfo directory (or zip) is read.
func List(dir string) ([]Zone, error) {
	ids, err := IDs(dir)
	if err != nil {
		return nil, err
	}
	year := time.Now().Year()
	zones := make([]Zone, 0, len(ids))
	for _, id := range ids {
		loc, err := time.LoadLocation(id)
		if err != nil {
			continue
		}
		abbr, _ := StandardZone(loc, year)
		zones = append(zones, Zone{ID: id, Abbreviation: abbr})
	}
	return zones, nil
}

// IDs returns the sorted zone identifiers found in dir, or when dir is
// empty, in $ZONEINFO, the system directories and finally the zoneinfo.zip
// shipped with Go.
func IDs(dir string) ([]string, error) {
	var sources []string
	if dir != "" {
		sources = []string{dir}
	} else {
		if z := os.Getenv("ZONEINFO"); z != "" {
			sources = append(sources, z)
		}
		sources = append(sources, systemDirs...)
		sources = append(sources, filepath.Join(runtime.GOROOT(), "lib", "time", "zoneinfo.zip"))
	}
	for _, src := range sources {
		ids, err := readSource(src)
		if err != nil || len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		return ids, nil
	}
	return nil, ErrNoZoneInfo
}

func readSource(src string) ([]string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return readDir(src)
	}
	return readZip(src)
}

func readDir(dir string) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return fs.SkipDir
			}
			return nil
		}
		if !isZoneName(rel) || !isTZif(path) {
			return nil
		}
		ids = append(ids, rel)
		return nil
	})
	return ids, err
}

func readZip(name string) ([]string, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var ids []string
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") || !isZoneName(f.Name) {
			continue
		}
		ids = append(ids, f.Name)
	}
	return ids, nil
}

// isZoneName filters out the tables (zone.tab, tzdata.zi, ...) that live
// next to the zone files.
func isZoneName(name string) bool {
	if name == "" || name == "Factory" || strings.HasPrefix(name, "posix/") || strings.HasPrefix(name, "right/") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || !unicode.IsUpper([]rune(part)[0]) {
			return false
		}
	}
	return !strings.Contains(name, ".")
}

func isTZif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	return bytes.Equal(magic, []byte("TZif"))
}

// StandardZone returns the abbreviation and offset in seconds of the
// standard (non daylight savings) time of loc in the given year.
func StandardZone(loc *time.Location, year int) (string, int) {
	jan := time.Date(year, time.January, 1, 12, 0, 0, 0, loc)
	if jan.IsDST() {
		return time.Date(year, time.July, 1, 12, 0, 0, 0, loc).Zone()
	}
	return jan.Zone()
}

// StripLabel turns a selector label such as "America/Mexico_City (CST)"
// into the bare identifier.
func StripLabel(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// DefaultID returns DefaultZone if present in ids, otherwise the first id,
// otherwise UTC.
func DefaultID(ids []string) string {
	for _, id := range ids {
		if id == DefaultZone {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return "UTC"
}

// Lookup returns the zone identifier covering loc.
func Lookup(loc geo.Location) (string, error) {
	name := latlong.LookupZoneName(loc.Latitude, loc.Longitude)
	if name == "" {
		return "", fmt.Errorf("%w: no zone covers %s", ErrUnknownZone, loc)
	}
	return name, nil
}

// Resolve loads the zone for id, which may be a selector label or Auto.
// When dst is false the zone is pinned to its standard offset for the
// year of date, so clocks never show daylight savings time.
func Resolve(id string, at geo.Location, dst bool, date time.Time) (*time.Location, error) {
	id = StripLabel(id)
	if strings.EqualFold(id, Auto) {
		var err error
		if id, err = Lookup(at); err != nil {
			return nil, err
		}
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnknownZone)
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownZone, id, err)
	}
	if dst {
		return loc, nil
	}
	name, offset := StandardZone(loc, date.Year())
	return time.FixedZone(name, offset), nil
}

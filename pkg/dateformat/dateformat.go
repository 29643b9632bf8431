// Package dateformat compiles the date-time format notation used in rules
// files (YYYY-MM-DD, hh:mm:ss, ...) into Go time layouts and holds the
// catalog of formats accepted by `has value type date-time`.
//
// Matching is structural: a value matches a format only if time.Parse
// accepts it with the compiled layout, so "2001-13-01" does not match
// YYYY-MM-DD even though it has the right length.
package dateformat

import (
	"fmt"
	"strings"
	"time"
)

// Format is a compiled date-time format.
type Format struct {
	Name   string // notation as written, e.g. "YYYY-MM-DD"
	Layout string // Go reference layout, e.g. "2006-01-02"
}

// directive maps a notation token to its Go layout element.
type directive struct {
	token  string
	layout string
}

// directives is ordered longest-first so YYYY wins over YY.
var directives = []directive{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"hh", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"fff", "000"},
	{"Z", "Z07:00"},
}

// separators are copied through to the layout unchanged.
const separators = "-/.: T,"

// Compile translates a format notation into a Format.
// Unknown letters and formats without any date or time element are errors.
func Compile(notation string) (Format, error) {
	if strings.TrimSpace(notation) == "" {
		return Format{}, fmt.Errorf("empty date format")
	}

	var layout strings.Builder
	elements := 0
	rest := notation

outer:
	for rest != "" {
		for _, d := range directives {
			if strings.HasPrefix(rest, d.token) {
				layout.WriteString(d.layout)
				rest = rest[len(d.token):]
				if d.token != "Z" {
					elements++
				}
				continue outer
			}
		}

		c := rest[0]
		if strings.IndexByte(separators, c) < 0 {
			return Format{}, fmt.Errorf("invalid date format %q: unexpected %q", notation, string(c))
		}
		layout.WriteByte(c)
		rest = rest[1:]
	}

	if elements == 0 {
		return Format{}, fmt.Errorf("invalid date format %q: no date or time elements", notation)
	}

	return Format{Name: notation, Layout: layout.String()}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(notation string) Format {
	f, err := Compile(notation)
	if err != nil {
		panic(err)
	}
	return f
}

// Parse parses s with the format. The value must match the whole layout
// and render back to the same text, which rejects the fractional seconds
// and unpadded hours that time.Parse tolerates.
func (f Format) Parse(s string) (time.Time, bool) {
	if f.Layout == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(f.Layout, s)
	if err != nil {
		return time.Time{}, false
	}
	rendered := f.Render(t)
	if rendered == s {
		return t, true
	}
	// Z07:00 renders a zero offset as "Z".
	if strings.HasSuffix(f.Layout, "Z07:00") && strings.HasSuffix(rendered, "Z") {
		base := strings.TrimSuffix(rendered, "Z")
		if s == base+"+00:00" || s == base+"-00:00" {
			return t, true
		}
	}
	return time.Time{}, false
}

// Render formats t with the format's layout.
func (f Format) Render(t time.Time) string {
	return t.Format(f.Layout)
}

// String returns the format notation.
func (f Format) String() string {
	return f.Name
}

// catalog is the list of formats accepted by a bare date-time type check.
// Order matters: the first match wins, so day-first layouts precede
// month-first ones for ambiguous values like 01/02/2001.
var catalog = []Format{
	MustCompile("YYYY"),
	MustCompile("YYYY-MM"),
	MustCompile("YYYY-MM-DD"),
	MustCompile("YYYYMMDD"),
	MustCompile("YYYY/MM/DD"),
	MustCompile("DD/MM/YYYY"),
	MustCompile("MM/DD/YYYY"),
	MustCompile("DD-MM-YYYY"),
	MustCompile("DD.MM.YYYY"),
	MustCompile("YYYY-MM-DD hh:mm"),
	MustCompile("YYYY-MM-DD hh:mm:ss"),
	MustCompile("YYYY-MM-DDThh:mm:ss"),
	MustCompile("YYYY-MM-DDThh:mm:ssZ"),
	MustCompile("YYYY-MM-DDThh:mm:ss.fff"),
	MustCompile("DD/MM/YYYY hh:mm:ss"),
	MustCompile("MM/DD/YYYY hh:mm:ss"),
	MustCompile("hh:mm"),
	MustCompile("hh:mm:ss"),
}

// Catalog returns a copy of the supported catalog.
func Catalog() []Format {
	out := make([]Format, len(catalog))
	copy(out, catalog)
	return out
}

// Match returns the first catalog format that parses s.
func Match(s string) (Format, time.Time, bool) {
	for _, f := range catalog {
		if t, ok := f.Parse(s); ok {
			return f, t, true
		}
	}
	return Format{}, time.Time{}, false
}

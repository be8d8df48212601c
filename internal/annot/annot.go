// Package annot implements the text rules applied to SUMMARY and
// DESCRIPTION fields: title-casing, and the embedded duration tag
// grammar (Nh)/(Nd) that records logged hours or days.
//
// Tag matching is a small dedicated scanner rather than regexp so edge
// cases such as nested parentheses keep the exact first-match-wins
// behavior of the upstream export conventions.
package annot

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Beautify title-cases every word, then repairs the two classes of text
// that title-casing corrupts: a leading AM/PM half-day marker, and the
// unit letter of a duration tag ((2d) would come out as (2D)).
func Beautify(value string) string {
	title := titleCaser.String(value)
	if strings.HasPrefix(title, "Am ") {
		title = "AM" + title[2:]
	} else if strings.HasPrefix(title, "Pm ") {
		title = "PM" + title[2:]
	}
	return lowerTagUnits(title)
}

func lowerTagUnits(value string) string {
	var b []byte
	for i := 0; i < len(value); i++ {
		if value[i] != '(' {
			continue
		}
		if _, end, ok := tagAt(value, i, "DH"); ok {
			if b == nil {
				b = []byte(value)
			}
			b[end-2] |= 0x20
			i = end - 1
		}
	}
	if b == nil {
		return value
	}
	return string(b)
}

// HasMeridiem reports whether the text carries a leading AM/PM half-day
// marker.
func HasMeridiem(value string) bool {
	return strings.HasPrefix(value, "AM ") || strings.HasPrefix(value, "PM ")
}

// Hours returns the value of the first (Nh) tag, clamped to a minimum of
// 1 so sub-hour work is never reported as zero. Returns 0 when no hour
// tag is present.
func Hours(value string) int {
	n, ok := firstTag(value, "h")
	if !ok {
		return 0
	}
	return max(1, n)
}

// Days returns the value of the first (Nd) tag, clamped like Hours, or 0
// when absent.
func Days(value string) int {
	n, ok := firstTag(value, "d")
	if !ok {
		return 0
	}
	return max(1, n)
}

// SetHours replaces every (Nh) tag with (hours h). Text without an hour
// tag is returned unchanged.
func SetHours(value string, hours int) string {
	out, _ := replaceTags(value, "h", false, "("+strconv.Itoa(hours)+"h)")
	return out
}

// SetDays replaces every " (N[hd])" tag with " (days d)", or appends one
// when the text has no tag yet.
func SetDays(value string, days int) string {
	tag := " (" + strconv.Itoa(days) + "d)"
	out, replaced := replaceTags(value, "hd", true, tag)
	if !replaced {
		return value + tag
	}
	return out
}

// StripTags removes every " (N[hd])" tag; used for description equality
// so two events describe the same activity regardless of recorded
// duration.
func StripTags(value string) string {
	out, _ := replaceTags(value, "hd", true, "")
	return out
}

// StripHourTag removes only " (Nh)" tags, the narrower comparison the
// index variant uses.
func StripHourTag(value string) string {
	out, _ := replaceTags(value, "h", true, "")
	return out
}

// tagAt scans a "(N<unit>)" tag starting at value[i] ('('), where unit
// must be one of units. Returns the parsed number and the index one past
// the closing parenthesis.
func tagAt(value string, i int, units string) (n, end int, ok bool) {
	j := i + 1
	for j < len(value) && value[j] >= '0' && value[j] <= '9' {
		j++
	}
	if j == i+1 {
		return 0, 0, false
	}
	if j >= len(value) || strings.IndexByte(units, value[j]) < 0 {
		return 0, 0, false
	}
	if j+1 >= len(value) || value[j+1] != ')' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(value[i+1 : j])
	if err != nil {
		return 0, 0, false
	}
	return n, j + 2, true
}

func firstTag(value, units string) (int, bool) {
	for i := 0; i < len(value); i++ {
		if value[i] != '(' {
			continue
		}
		if n, _, ok := tagAt(value, i, units); ok {
			return n, true
		}
	}
	return 0, false
}

// replaceTags rewrites every tag of the given units with repl. When
// spaced is true the match includes a mandatory leading space, mirroring
// the " (Nd)" form the export writes.
func replaceTags(value, units string, spaced bool, repl string) (string, bool) {
	var b strings.Builder
	replaced := false
	i := 0
	for i < len(value) {
		start := i
		if spaced {
			if value[i] != ' ' || i+1 >= len(value) || value[i+1] != '(' {
				b.WriteByte(value[i])
				i++
				continue
			}
			if _, end, ok := tagAt(value, i+1, units); ok {
				b.WriteString(repl)
				replaced = true
				i = end
				continue
			}
		} else if value[i] == '(' {
			if _, end, ok := tagAt(value, i, units); ok {
				b.WriteString(repl)
				replaced = true
				i = end
				continue
			}
		}
		b.WriteByte(value[start])
		i++
	}
	return b.String(), replaced
}

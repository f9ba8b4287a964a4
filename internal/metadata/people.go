package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// Person is a normalized cast or crew member. Image is "" when no portrait
// is available, never absent.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CreditSet groups normalized people by role.
type CreditSet struct {
	Writers   []Person `json:"writers"`
	Directors []Person `json:"directors"`
	Stars     []Person `json:"stars"`
}

// Empty reports whether no bucket holds any person.
func (c CreditSet) Empty() bool {
	return len(c.Writers) == 0 && len(c.Directors) == 0 && len(c.Stars) == 0
}

// Field-alias lists for the shapes the metadata boundary has been seen to
// return. Ordered; the first non-empty candidate wins.
var (
	personNameFields  = []string{"name", "title", "fullName", "originalName", "displayName", "role", "character"}
	personIDFields    = []string{"id", "imdbId", "imdb_id", "externalId", "nconst", "personId"}
	personImageFields = []string{"image", "primaryImage", "photo", "picture", "avatar"}
	imageURLFields    = []string{"url", "src", "href", "imageUrl", "value", "link", "path"}
	collectionFields  = []string{"items", "list", "values", "results", "people"}
)

// nameSeparator splits delimited name strings such as "A, B and C".
var nameSeparator = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b)\s*`)

// NormalizePeople normalizes any number of raw sources into a flat person
// list. Sources may use different field names for the same concept; they are
// normalized independently, concatenated, and deduplicated by id-or-name in
// first-seen order. Unrecognized shapes are dropped, never an error.
func NormalizePeople(sources ...any) []Person {
	people := make([]Person, 0)
	for _, src := range sources {
		appendPeople(&people, src)
	}
	return dedupePeople(people)
}

// NormalizePerson normalizes a single raw entry. A plain string becomes a
// person with id and name both set to the trimmed string. An object resolves
// its name, id, and image through the alias lists. Anything else, or an
// entry with no resolvable name, reports false.
func NormalizePerson(entry any) (Person, bool) {
	switch v := entry.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Person{}, false
		}
		return Person{ID: s, Name: s}, true
	case map[string]any:
		name := firstField(v, personNameFields)
		if name == "" {
			return Person{}, false
		}
		id := firstField(v, personIDFields)
		if id == "" {
			id = name
		}
		return Person{ID: id, Name: name, Image: resolveImage(v)}, true
	default:
		return Person{}, false
	}
}

// appendPeople flattens one raw source. Strings split on delimiters, arrays
// and wrapped collections recurse, objects normalize directly.
func appendPeople(people *[]Person, v any) {
	switch val := v.(type) {
	case string:
		for _, piece := range splitNames(val) {
			if p, ok := NormalizePerson(piece); ok {
				*people = append(*people, p)
			}
		}
	case []any:
		for _, item := range val {
			appendPeople(people, item)
		}
	case map[string]any:
		for _, key := range collectionFields {
			if wrapped, ok := val[key].([]any); ok {
				appendPeople(people, wrapped)
				return
			}
		}
		if p, ok := NormalizePerson(val); ok {
			*people = append(*people, p)
		}
	}
}

func splitNames(s string) []string {
	pieces := nameSeparator.Split(s, -1)
	out := pieces[:0]
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func dedupePeople(people []Person) []Person {
	seen := make(map[string]struct{}, len(people))
	out := make([]Person, 0, len(people))
	for _, p := range people {
		key := p.ID
		if key == "" {
			key = p.Name
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// firstField returns the first non-empty stringable value among the named
// fields.
func firstField(m map[string]any, fields []string) string {
	for _, f := range fields {
		if raw, ok := m[f]; ok {
			if s := fieldString(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

func fieldString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

// resolveImage finds a portrait URL on a person object. Each candidate field
// may hold the URL directly or wrap it in an object keyed by one of the
// common URL field names.
func resolveImage(m map[string]any) string {
	for _, f := range personImageFields {
		if raw, ok := m[f]; ok {
			if s := imageString(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

func imageString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		for _, key := range imageURLFields {
			if raw, ok := val[key]; ok {
				if s := imageString(raw); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

package metadata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field-alias lists for the detail payload itself. The boundary has no fixed
// contract; these orderings are the contract.
var (
	synopsisFields     = []string{"synopsis", "plot", "plotSummary", "short"}
	synopsisTextFields = []string{"text", "plainText", "plotText", "value", "summary", "description"}
	runtimeFields      = []string{"runtimeSeconds", "durationSeconds", "runtime"}
	writerFields       = []string{"writers", "writer", "writerList", "writing"}
	directorFields     = []string{"directors", "director", "directorList", "creators"}
	starFields         = []string{"stars", "star", "starList", "cast", "actors"}
)

// extractDetails reduces a loosely-typed detail payload to the mergeable
// subset of a record. DetailsFetched is always true on the result: a fetch
// that completed counts as done even when it carried no usable fields.
func extractDetails(payload map[string]any) Details {
	d := Details{DetailsFetched: true}

	for _, field := range synopsisFields {
		if raw, ok := payload[field]; ok {
			if s := textValue(raw); s != "" {
				d.Synopsis = plainText(s)
				break
			}
		}
	}

	for _, field := range runtimeFields {
		if raw, ok := payload[field]; ok {
			if seconds, valid := secondsValue(raw); valid {
				d.Runtime = FormatRuntime(seconds)
				break
			}
		}
	}

	credits, _ := payload["credits"].(map[string]any)
	d.Credits = CreditSet{
		Writers:   NormalizePeople(creditSources(payload, credits, writerFields)...),
		Directors: NormalizePeople(creditSources(payload, credits, directorFields)...),
		Stars:     NormalizePeople(creditSources(payload, credits, starFields)...),
	}

	return d
}

// creditSources gathers every value present under the bucket's aliases, both
// inside the credits object and at the payload's top level.
func creditSources(payload, credits map[string]any, fields []string) []any {
	sources := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if credits != nil {
			if v, ok := credits[field]; ok {
				sources = append(sources, v)
			}
		}
		if v, ok := payload[field]; ok {
			sources = append(sources, v)
		}
	}
	return sources
}

// textValue reduces a nested text shape to a plain string: strings pass
// through trimmed, arrays yield their first non-empty element, objects are
// probed through the text-like field names.
func textValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		for _, item := range val {
			if s := textValue(item); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, field := range synopsisTextFields {
			if raw, ok := val[field]; ok {
				if s := textValue(raw); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// plainText reduces HTML markup in a synopsis to its text content. Plain
// strings pass through untouched.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	if text := strings.TrimSpace(doc.Text()); text != "" {
		return text
	}
	return s
}

func secondsValue(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// FormatRuntime renders a duration in seconds as "2h 22m", "2h", "55m", or
// "0m" for anything under a minute.
func FormatRuntime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return "0m"
	}
}

package catalog

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `123`, "123"},
		{"string", `"123"`, "123"},
		{"opaque string", `"abc-7"`, "abc-7"},
		{"float", `7.5`, "7.5"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ID
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestID_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		want string
	}{
		{"digits become a number", "9", `9`},
		{"long digits stay a number", "1234567890", `1234567890`},
		{"leading zero stays a string", "007", `"007"`},
		{"opaque stays a string", "abc-7", `"abc-7"`},
		{"empty stays a string", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.id)
			if err != nil {
				t.Fatalf("Marshal(%q) error = %v", tt.id, err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal(%q) = %s, want %s", tt.id, got, tt.want)
			}
		})
	}
}

func TestID_NumberRoundTrip(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`9`), &id); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	out, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != `9` {
		t.Errorf("round trip = %s, want bare 9", out)
	}
}

func TestYear_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Year
	}{
		{`2010`, "2010"},
		{`"2010"`, "2010"},
		{`null`, ""},
	}

	for _, tt := range tests {
		var got Year
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMovieDecode(t *testing.T) {
	raw := `{"id":123,"title":"Inception","year":2010,"posterUrl":"https://img.example/123.jpg","imdbId":null}`

	var m Movie
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	if m.ID != "123" {
		t.Errorf("ID = %q, want %q", m.ID, "123")
	}
	if m.Year != "2010" {
		t.Errorf("Year = %q, want %q", m.Year, "2010")
	}
	if m.IMDBID != nil {
		t.Errorf("IMDBID = %v, want nil passthrough", m.IMDBID)
	}
}

func TestUpstreamError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  UpstreamError
		want string
	}{
		{"body text wins", UpstreamError{Op: "search", Status: 500, Body: "db unavailable"}, "db unavailable"},
		{"body is trimmed", UpstreamError{Op: "search", Status: 500, Body: "  db unavailable \n"}, "db unavailable"},
		{"fallback on empty body", UpstreamError{Op: "get versions", Status: 502}, "get versions failed (502)"},
		{"fallback on blank body", UpstreamError{Op: "download movie", Status: 503, Body: "   "}, "download movie failed (503)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a catalog identifier. The catalog emits ids as JSON strings or
// numbers interchangeably; both decode to the string form, and values that
// are purely digits re-encode as bare numbers so request bodies match what
// the catalog originally sent.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if s := string(id); isBareNumber(s) {
		return []byte(s), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// isBareNumber reports whether s can stand alone as a JSON number token:
// all digits, no leading zero.
func isBareNumber(s string) bool {
	if s == "" {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Year is a release year as the catalog sends it, string or number.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*y = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = Year(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = Year(n.String())
	return nil
}

func (y Year) String() string {
	return string(y)
}

// Movie is one title row in a movie search or picks response. IMDBID is
// kept exactly as received (string, number, or null) for the identifier
// normalizer to interpret.
type Movie struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Year      Year   `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	IMDBID    any    `json:"imdbId,omitempty"`
}

// Show is one title row in a TV search response.
type Show struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Year      Year   `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	IMDBID    any    `json:"imdbId,omitempty"`
}

// Version is one downloadable release of a title.
type Version struct {
	ID            ID      `json:"id"`
	Quality       string  `json:"quality"`
	Codec         string  `json:"codec"`
	Container     string  `json:"container"`
	Source        string  `json:"source"`
	Resolution    string  `json:"resolution"`
	Scene         bool    `json:"scene"`
	RemasterTitle string  `json:"remasterTitle"`
	GoldenPopcorn bool    `json:"goldenPopcorn"`
	Checked       bool    `json:"checked"`
	Seeders       int     `json:"seeders"`
	Snatched      int     `json:"snatched"`
	SizeGB        float64 `json:"sizeGB"`
}

// DownloadRequest identifies the movie version to start downloading.
type DownloadRequest struct {
	TorrentID  ID     `json:"torrentId"`
	MovieTitle string `json:"movieTitle"`
}

// ShowDownloadRequest identifies the show version to start downloading.
type ShowDownloadRequest struct {
	TorrentID ID     `json:"torrentId"`
	ShowTitle string `json:"showTitle"`
}

// DownloadResult is the catalog's answer to a download request.
type DownloadResult struct {
	OK      bool   `json:"ok"`
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}

// UpstreamError is a non-2xx response from the catalog. Its message is the
// response body when the catalog sent one, so upstream diagnostics reach
// the user verbatim.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s failed (%d)", e.Op, e.Status)
}

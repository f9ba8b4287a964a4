package metadata

import "sync"

// Record is the cached metadata for one catalog title. Fields are filled in
// progressively: search scans seed the light fields, enrichment adds the
// rest. A populated field is never weakened back to empty by a later write.
type Record struct {
	CatalogID      string    `json:"catalogId"`
	PosterURL      string    `json:"posterUrl"`
	Title          string    `json:"title"`
	Year           string    `json:"year"`
	Runtime        string    `json:"runtime"`
	IMDBID         *string   `json:"imdbId"`
	Synopsis       string    `json:"synopsis"`
	Credits        CreditSet `json:"credits"`
	DetailsFetched bool      `json:"detailsFetched"`
}

// LightRecord is the seed written for every title in a search result set.
// IMDBIDRaw carries the identifier exactly as the catalog sent it (string,
// number, or nil); it is normalized on the way into the cache.
type LightRecord struct {
	CatalogID string
	PosterURL string
	Title     string
	Year      string
	IMDBIDRaw any
}

// Details is the enrichment subset merged after a metadata fetch.
type Details struct {
	Synopsis       string
	Runtime        string
	Credits        CreditSet
	DetailsFetched bool
}

// Cache is the process-wide store of metadata records, keyed by catalog id.
// Records live for the lifetime of the process; there is no TTL and no
// eviction. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		records: make(map[string]*Record),
	}
}

// Get returns a copy of the record for the given catalog id.
func (c *Cache) Get(catalogID string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[catalogID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// RememberLight merges search-result seeds into the cache. Populated fields
// overwrite, empty ones leave the existing value alone. The raw external id
// is normalized first; an unknown result never disturbs a stored id, and a
// known-absent one only records the absence while the id is still unknown.
func (c *Cache) RememberLight(records []LightRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, in := range records {
		if in.CatalogID == "" {
			continue
		}

		rec, ok := c.records[in.CatalogID]
		if !ok {
			rec = &Record{CatalogID: in.CatalogID}
			c.records[in.CatalogID] = rec
		}

		if in.PosterURL != "" {
			rec.PosterURL = in.PosterURL
		}
		if in.Title != "" {
			rec.Title = in.Title
		}
		if in.Year != "" {
			rec.Year = in.Year
		}

		if id, known := NormalizeIMDBID(in.IMDBIDRaw); known {
			if id != "" || rec.IMDBID == nil {
				v := id
				rec.IMDBID = &v
			}
		}
	}
}

// MergeDetails merges an enrichment result into the record for catalogID,
// creating the record when the id has never been seen. For each field the
// non-empty side wins, with the incoming value taking precedence when both
// are non-empty. Credit buckets merge independently. DetailsFetched is
// sticky: once true it stays true.
func (c *Cache) MergeDetails(catalogID string, d Details) {
	if catalogID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[catalogID]
	if !ok {
		rec = &Record{CatalogID: catalogID}
		c.records[catalogID] = rec
	}

	if d.Synopsis != "" {
		rec.Synopsis = d.Synopsis
	}
	if d.Runtime != "" {
		rec.Runtime = d.Runtime
	}
	if len(d.Credits.Writers) > 0 {
		rec.Credits.Writers = d.Credits.Writers
	}
	if len(d.Credits.Directors) > 0 {
		rec.Credits.Directors = d.Credits.Directors
	}
	if len(d.Credits.Stars) > 0 {
		rec.Credits.Stars = d.Credits.Stars
	}
	if d.DetailsFetched {
		rec.DetailsFetched = true
	}
}

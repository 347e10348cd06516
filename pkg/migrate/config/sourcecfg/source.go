package sourcecfg

// Source : one named origin of tabular data. Leaving URL empty makes it a flat file source
// whose .csv files live under a directory with the same name.
type Source struct {
	Name         string `json:"name"`
	Driver       string `json:"driver"`
	URL          string `json:"url"`
	UseView      bool   `json:"use_view"`
	QueryLogging bool   `json:"query_log"`
}

// IsRelational : true when the source is backed by a database connection
func (s *Source) IsRelational() bool {
	return s.URL != ""
}

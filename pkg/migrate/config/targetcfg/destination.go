package targetcfg

// S3Options : where to pull the script root from when it is not on local disk
type S3Options struct {
	Bucket         string
	PrefixOverride string
}

// Destination : the single database every table gets ported into. Name is also the
// directory holding destination scripts.
type Destination struct {
	Name         string `json:"name"`
	Driver       string `json:"driver"`
	URL          string `json:"url"`
	QueryLogging bool   `json:"query_log"`
}

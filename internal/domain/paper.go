package domain

// Paper is one pending-notification row produced by the upstream collector.
// OpenAlexID is the stable deduplication key; PublicationDate is a lexically
// sortable ISO-like string and may be empty.
type Paper struct {
	OpenAlexID      string
	Title           string
	Authors         string
	Journal         string
	DOI             string
	PublicationDate string
}

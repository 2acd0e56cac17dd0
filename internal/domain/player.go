package domain

// Player is a single record from the player feed.
type Player struct {
	PlayerID   int    `json:"PlayerID"`
	FirstName  string `json:"FirstName"`
	LastName   string `json:"LastName"`
	Team       string `json:"Team"`
	Position   string `json:"Position"`
	Experience int    `json:"Experience"`
	Height     int    `json:"Height"`
	Weight     int    `json:"Weight"`
	Salary     int    `json:"Salary"`
}

// PlayerBatch is an ordered sequence of players as returned by the feed.
type PlayerBatch []Player

// FetchStatus distinguishes a usable batch from an empty feed and a failed fetch.
type FetchStatus string

const (
	FetchOK     FetchStatus = "OK"
	FetchEmpty  FetchStatus = "EMPTY"
	FetchFailed FetchStatus = "FAILED"
)

// FetchResult is returned by the ingestor. Batch is always empty unless Status is FetchOK.
type FetchResult struct {
	Status FetchStatus
	Batch  PlayerBatch
	Err    error
}

// HasData reports whether there is anything to upload.
func (r FetchResult) HasData() bool {
	return r.Status == FetchOK && len(r.Batch) > 0
}

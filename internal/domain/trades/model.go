package trades

// User is a platform account resolved from a username.
type User struct {
	ID       string
	Username string
}

// League is one fantasy league a user belongs to in a season.
type League struct {
	ID   string
	Name string
}

// Directory maps player ids to their raw platform records. An empty
// directory is a valid degraded state: names fall back to raw ids.
type Directory map[string]any

// Transaction is a raw platform transaction record. The upstream shape is
// heterogeneous (optional fields, ids as strings or numbers), so it stays a
// loose map and readers go through alternate-key helpers.
type Transaction map[string]any

// TradedPick is a raw draft-pick transfer record from the dedicated
// traded-picks endpoint.
type TradedPick map[string]any

// AssetFlow is the per-user outcome of resolving one transaction:
// ordered, deduplicated asset descriptions gained and lost.
type AssetFlow struct {
	Gained []string
	Lost   []string
}

// Empty reports whether the flow carries no asset movement at all.
func (f AssetFlow) Empty() bool {
	return len(f.Gained) == 0 && len(f.Lost) == 0
}

// Entry is one normalized row of the trade feed.
type Entry struct {
	LeagueID      string  `json:"league_id"`
	LeagueName    string  `json:"league_name"`
	TransactionID *string `json:"transaction_id"`
	// Date is an ISO-8601 UTC string, nil when the source record carried no
	// usable timestamp. Nil dates sort after all dated entries.
	Date         *string  `json:"date"`
	AssetsGained []string `json:"assets_gained"`
	AssetsLost   []string `json:"assets_lost"`
	Raw          any      `json:"raw"`
}

package footballdata

type matchesEnvelope struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	ID       int64    `json:"id"`
	UTCDate  string   `json:"utcDate"`
	Status   string   `json:"status"`
	Matchday int      `json:"matchday"`
	HomeTeam apiTeam  `json:"homeTeam"`
	AwayTeam apiTeam  `json:"awayTeam"`
	Score    apiScore `json:"score"`
}

type apiTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest"`
}

type apiScore struct {
	Winner   string       `json:"winner"`
	FullTime apiScoreLine `json:"fullTime"`
}

// apiScoreLine carries nulls until a match kicks off.
type apiScoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

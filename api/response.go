package api

// RankedRow is a standing with its computed place.
type RankedRow struct {
	Rank int `json:"rank"`
	Standing
}

// RanklistSnapshot is a point-in-time export of one contest's ranklist.
type RanklistSnapshot struct {
	ContestID   int64       `json:"contest_id"`
	ContestType string      `json:"contest_type"`
	Problems    []int64     `json:"problems"`
	TakenAt     string      `json:"taken_at"`
	Rows        []RankedRow `json:"rows"`
}

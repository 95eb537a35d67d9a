package api

// JudgedSubm is the message the judging system delivers once a submission
// has a final verdict.
type JudgedSubm struct {
	SubmUuid string `json:"subm_uuid"`

	ContestID    int64 `json:"contest_id"`
	CompetitorID int64 `json:"competitor_id"`
	ProblemID    int64 `json:"problem_id"`

	// Unix seconds at which the competitor submitted, not when judging finished.
	SubmitTime int64 `json:"submit_time"`

	Verdict Verdict `json:"verdict"`
	Score   int     `json:"score"`
}

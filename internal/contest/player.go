package contest

import (
	"maps"

	"github.com/programme-lv/contester/api"
)

// JudgedSubm is a single judged submission event. The judging system owns it.
type JudgedSubm struct {
	ID           string
	ContestID    int64
	CompetitorID int64
	ProblemID    int64
	SubmitTime   int64
	Status       api.Verdict
	Score        int
}

func JudgedSubmFromAPI(m api.JudgedSubm) JudgedSubm {
	return JudgedSubm{
		ID:           m.SubmUuid,
		ContestID:    m.ContestID,
		CompetitorID: m.CompetitorID,
		ProblemID:    m.ProblemID,
		SubmitTime:   m.SubmitTime,
		Status:       m.Verdict,
		Score:        m.Score,
	}
}

// ProblemResult is a competitor's state on one problem. Which fields carry
// meaning depends on the contest type's scoring rule.
type ProblemResult struct {
	Score        int         `json:"score"`
	Status       api.Verdict `json:"status"`
	SubmissionID string      `json:"submission_id"`
	SubmitTime   int64       `json:"submit_time"`

	Accepted   bool  `json:"accepted"`
	AcceptTime int64 `json:"accept_time"`
	// Rejected counts verdicts other than AC received before the first AC.
	Rejected int `json:"rejected"`

	Submissions int `json:"submissions"`
}

// Player is the competitor score state for one (contest, competitor) pair.
type Player struct {
	ContestID    int64
	CompetitorID int64
	Results      map[int64]ProblemResult
}

func NewPlayer(contestID, competitorID int64) *Player {
	return &Player{
		ContestID:    contestID,
		CompetitorID: competitorID,
		Results:      make(map[int64]ProblemResult),
	}
}

// Result returns the stored result for a problem or nil if there is none.
func (p *Player) Result(problemID int64) *ProblemResult {
	r, ok := p.Results[problemID]
	if !ok {
		return nil
	}
	return &r
}

func (p *Player) Clone() *Player {
	res := &Player{
		ContestID:    p.ContestID,
		CompetitorID: p.CompetitorID,
		Results:      maps.Clone(p.Results),
	}
	if res.Results == nil {
		res.Results = make(map[int64]ProblemResult)
	}
	return res
}

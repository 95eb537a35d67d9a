package api

import "time"

// MsgType is a message type for published ranklist events
type MsgType string

const (
	StandingUpdatedMsg MsgType = "standing_updated"
)

// Header is the common header for all published messages
type Header struct {
	ContestID int64   `json:"contest_id"`
	MsgType   MsgType `json:"msg_type"`
}

// ProblemCell is one problem column of a ranklist row.
type ProblemCell struct {
	ProblemID int64   `json:"problem_id"`
	Verdict   Verdict `json:"verdict"`
	Score     *int    `json:"score,omitempty"`
	Accepted  bool    `json:"accepted"`
	Rejected  int     `json:"rejected"`
}

// Standing is a competitor's row as stored in the ranklist.
type Standing struct {
	CompetitorID int64         `json:"competitor_id"`
	Score        int           `json:"score"`
	Solved       int           `json:"solved"`
	PenaltySecs  int64         `json:"penalty_secs"`
	LastAccept   int64         `json:"last_accept"`
	Problems     []ProblemCell `json:"problems"`
}

// StandingUpdated is published after an admission changed a competitor's row.
type StandingUpdated struct {
	Header
	SubmUuid    string   `json:"subm_uuid"`
	Standing    Standing `json:"standing"`
	PublishedAt string   `json:"published_at"`
}

func NewHeader(contestID int64, msgType MsgType) Header {
	return Header{
		ContestID: contestID,
		MsgType:   msgType,
	}
}

func NewStandingUpdated(contestID int64, submUuid string, standing Standing) StandingUpdated {
	return StandingUpdated{
		Header:      NewHeader(contestID, StandingUpdatedMsg),
		SubmUuid:    submUuid,
		Standing:    standing,
		PublishedAt: time.Now().Format(time.RFC3339),
	}
}

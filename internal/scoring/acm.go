package scoring

import (
	"github.com/programme-lv/contester/internal/contest"
)

// PenaltyPerRejection is added for every rejected attempt on a solved problem.
const PenaltyPerRejection int64 = 20 * 60

type acm struct{}

func (acm) Apply(prev *contest.ProblemResult, s contest.JudgedSubm) contest.ProblemResult {
	if prev != nil && prev.Accepted {
		res := *prev
		res.Submissions++
		return res
	}

	var res contest.ProblemResult
	if prev != nil {
		res = *prev
	}
	res.Status = s.Status
	res.SubmissionID = s.ID
	res.SubmitTime = s.SubmitTime
	res.Submissions = submissions(prev)

	if s.Status.IsAccepted() {
		res.Accepted = true
		res.AcceptTime = s.SubmitTime
		res.Score = 1
	} else {
		res.Rejected++
	}
	return res
}

func (acm) Summarize(c *contest.Contest, p *contest.Player) Summary {
	var sum Summary
	for problemID, r := range p.Results {
		if !r.Accepted || !c.Contains(problemID) {
			continue
		}
		sum.Solved++
		sum.Penalty += r.AcceptTime - c.StartTime + int64(r.Rejected)*PenaltyPerRejection
		if r.AcceptTime > sum.LastAccept {
			sum.LastAccept = r.AcceptTime
		}
	}
	sum.Score = sum.Solved
	return sum
}

// Less orders by solved count, then by the earlier last accept. Penalty is
// reported but does not affect the order.
func (acm) Less(a, b Summary) bool {
	if a.Solved != b.Solved {
		return a.Solved > b.Solved
	}
	return a.LastAccept < b.LastAccept
}

package journal

import (
	"github.com/ohada-ledger/internal/domain/shared"
)

// ProposalOf converts a queued submission into a proposal.
func ProposalOf(s *shared.EntrySubmission) Proposal {
	lines := make([]LineSpec, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = LineSpec{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return Proposal{
		Reference:   s.Reference,
		Date:        s.Date,
		Description: s.Description,
		Lines:       lines,
	}
}

// Records reports whether e holds exactly the given lines, in order.
func (e *Entry) Records(lines []LineSpec) bool {
	if len(e.Lines) != len(lines) {
		return false
	}
	for i, l := range lines {
		got := e.Lines[i]
		if got.AccountCode != l.AccountCode || !got.Debit.Equal(l.Debit) || !got.Credit.Equal(l.Credit) {
			return false
		}
	}
	return true
}

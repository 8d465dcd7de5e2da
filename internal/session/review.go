package session

// SectionSummary reports how much of one section has been answered. Purely
// derived from state; building a summary mutates nothing.
type SectionSummary struct {
	SectionID string `json:"section_id"`
	Name      string `json:"name"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
}

// BuildReviewSummary counts, per section, how many questions have a recorded
// answer. Zero-value answers (possible from older payloads) do not count.
func BuildReviewSummary(s *State, p *Plan) []SectionSummary {
	summaries := make([]SectionSummary, 0, len(p.Test.Sections))
	for i, sec := range p.Test.Sections {
		qs := p.SectionQuestions(i)
		answered := 0
		for _, q := range qs {
			if a, ok := s.Answers[q.ID]; ok && !a.IsZero() {
				answered++
			}
		}
		summaries = append(summaries, SectionSummary{
			SectionID: sec.ID,
			Name:      sec.Name,
			Answered:  answered,
			Total:     len(qs),
		})
	}
	return summaries
}

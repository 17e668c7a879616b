package core

// Summary holds whole-file figures computed while records stream past.
type Summary struct {
	Total Money
	Count int64
	First Date
	Last  Date
}

// Observe accounts for one record. On overflow the summary is left unchanged.
func (s *Summary) Observe(r Record) error {
	total, err := s.Total.Add(r.Amount)
	if err != nil {
		return err
	}
	s.Total = total
	s.Count++
	if r.Date.IsEmpty() {
		return nil
	}
	if s.First.IsEmpty() || r.Date.Before(s.First.Time) {
		s.First = r.Date
	}
	if s.Last.IsEmpty() || r.Date.After(s.Last.Time) {
		s.Last = r.Date
	}
	return nil
}

// DateRange returns "first..last", or "unknown" when no record carried a date.
func (s Summary) DateRange() string {
	if s.First.IsEmpty() {
		return "unknown"
	}
	return s.First.String() + ".." + s.Last.String()
}

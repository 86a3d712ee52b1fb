package status

// BatchStats summarises decoder verdicts over a batch of records.
type BatchStats struct {
	Total int `json:"total"`

	BySeverity map[Severity]int `json:"by_severity"`

	Refused   int `json:"refused"`
	Withdrawn int `json:"withdrawn"`
	Lapsed    int `json:"lapsed"`
	Expired   int `json:"expired"`
	Granted   int `json:"granted"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`

	// RefusalRate is Refused / Total, 0 for an empty batch.
	RefusalRate float64 `json:"refusal_rate"`
}

// Stats aggregates a slice of analyses into batch counters.
func Stats(analyses []Analysis) BatchStats {
	st := BatchStats{
		Total:      len(analyses),
		BySeverity: make(map[Severity]int, 4),
	}
	for _, a := range analyses {
		st.BySeverity[a.Severity]++
		if a.Flags.Refused {
			st.Refused++
		}
		if a.Flags.Withdrawn {
			st.Withdrawn++
		}
		if a.Flags.Lapsed {
			st.Lapsed++
		}
		if a.Flags.Expired {
			st.Expired++
		}
		if a.Flags.Granted {
			st.Granted++
		}
		if a.Flags.Pending {
			st.Pending++
		}
		if a.Flags.Active {
			st.Active++
		}
	}
	if st.Total > 0 {
		st.RefusalRate = float64(st.Refused) / float64(st.Total)
	}
	return st
}

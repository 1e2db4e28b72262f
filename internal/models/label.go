package models

type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TradeFilter narrows a trade query. Dates are inclusive trading days
// (YYYY-MM-DD); nil holding bounds and empty LabelIDs mean "no constraint".
type TradeFilter struct {
	StartDate         string  `json:"start_date,omitempty"`
	EndDate           string  `json:"end_date,omitempty"`
	MinHoldingSeconds *int64  `json:"min_holding_time,omitempty"`
	MaxHoldingSeconds *int64  `json:"max_holding_time,omitempty"`
	LabelIDs          []int64 `json:"label_ids,omitempty"`
}

func (f TradeFilter) IsEmpty() bool {
	return f.StartDate == "" && f.EndDate == "" &&
		f.MinHoldingSeconds == nil && f.MaxHoldingSeconds == nil &&
		len(f.LabelIDs) == 0
}

// Package entities holds the data shared by the party generator layers.
package entities

import (
	"time"
)

// ClassEntry is one class inside a generated class-group
type ClassEntry struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// PartyResult is one class-group of a generated party, as returned by
// the generation backend
type PartyResult struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImageID     string       `json:"image_id"`
	Classes     []ClassEntry `json:"classes"`
}

// ViewState is the state of one party generator page.
// Classes holds the most recent successful response, in response order.
type ViewState struct {
	PageID    string         `json:"page_id"`
	Classes   []*PartyResult `json:"classes"`
	Loading   bool           `json:"loading"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state
func (v *ViewState) Clone() *ViewState {
	if v == nil {
		return nil
	}

	out := *v
	out.Classes = make([]*PartyResult, 0, len(v.Classes))
	for _, result := range v.Classes {
		if result == nil {
			continue
		}
		copied := *result
		copied.Classes = append([]ClassEntry(nil), result.Classes...)
		out.Classes = append(out.Classes, &copied)
	}
	return &out
}

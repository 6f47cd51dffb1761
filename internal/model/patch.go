package model

// Patch carries the fields an update replaces. Nil fields are left alone.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
	AllDay      *bool   `json:"allDay,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Start == nil && p.End == nil && p.AllDay == nil &&
		p.Category == nil && p.Description == nil && p.Color == nil && p.Completed == nil
}

// Apply returns r with the patch fields replaced. Identity and timestamps are untouched.
func (p Patch) Apply(r Record) Record {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Start != nil {
		r.Start = *p.Start
	}
	if p.End != nil {
		r.End = *p.End
	}
	if p.AllDay != nil {
		r.AllDay = *p.AllDay
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Color != nil {
		r.Color = *p.Color
	}
	if p.Completed != nil {
		r.Completed = *p.Completed
	}
	return r
}

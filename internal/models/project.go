package models

import "time"

type Project struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Owner     *UserRef   `json:"owner"`
	Members   []*UserRef `json:"members"`
	CreatedAt time.Time  `json:"created_at"`
}

// Ref returns the populated-reference view of the project.
func (p *Project) Ref() *ProjectRef {
	if p == nil {
		return nil
	}
	return &ProjectRef{ID: p.ID, Name: p.Name, Owner: p.Owner}
}

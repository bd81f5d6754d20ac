package reporting

import "taskflow/internal/models"

// TeamMember is a contributor found on a project's records.
type TeamMember struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Department string   `json:"department"`
	Roles      []string `json:"roles"`
	TaskCount  int      `json:"taskCount"`
}

type TeamStats struct {
	TotalTasks     int `json:"totalTasks"`
	TeamSize       int `json:"teamSize"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completionRate"`
}

// TeamSummary is the team report: the status grouping plus the roster.
type TeamSummary struct {
	Result
	Members []TeamMember `json:"teamMembers"`
	Summary TeamStats    `json:"summary"`
}

// TeamMembers collects every owner and assignee across records, deduplicated
// by ID in order of first appearance; the first occurrence decides the
// displayed department and roles. A record counts once toward each member
// who owns it or is assigned to it.
func TeamMembers(records []Record) []TeamMember {
	index := make(map[int64]int)
	members := make([]TeamMember, 0)

	add := func(u *models.UserRef) {
		if u == nil || u.ID == 0 {
			return
		}
		if _, ok := index[u.ID]; ok {
			return
		}
		index[u.ID] = len(members)
		members = append(members, TeamMember{
			ID:         u.ID,
			Username:   u.Username,
			Department: u.Department,
			Roles:      u.Roles,
		})
	}

	for _, r := range records {
		add(r.Owner)
		for _, a := range r.Assignee {
			add(a)
		}
	}

	for _, r := range records {
		counted := make(map[int64]bool, len(r.Assignee)+1)
		if r.Owner != nil && r.Owner.ID != 0 {
			counted[r.Owner.ID] = true
		}
		for _, a := range r.Assignee {
			if a != nil && a.ID != 0 {
				counted[a.ID] = true
			}
		}
		for id := range counted {
			members[index[id]].TaskCount++
		}
	}
	return members
}

// BuildTeamSummary groups records with the team bucket set and attaches the
// roster and summary statistics.
func BuildTeamSummary(records []Record) TeamSummary {
	res := Aggregate(records, TeamStatuses, Options{})
	members := TeamMembers(records)

	stats := TeamStats{
		TotalTasks: res.Aggregates.Total,
		TeamSize:   len(members),
		Completed:  res.Aggregates.Counts[models.StatusCompleted],
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = stats.Completed * 100 / stats.TotalTasks
	}
	return TeamSummary{Result: res, Members: members, Summary: stats}
}

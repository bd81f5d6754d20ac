package reporting

// InDepartment reports whether the record's owner or any assignee belongs
// to dept.
func InDepartment(r Record, dept string) bool {
	if r.Owner != nil && r.Owner.Department == dept {
		return true
	}
	for _, a := range r.Assignee {
		if a != nil && a.Department == dept {
			return true
		}
	}
	return false
}

func FilterDepartment(records []Record, dept string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if InDepartment(r, dept) {
			out = append(out, r)
		}
	}
	return out
}

// DropArchived removes archived records; logged-time reports never show them.
func DropArchived(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Archived {
			out = append(out, r)
		}
	}
	return out
}

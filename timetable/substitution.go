package timetable

// CountSubstitutions counts the candidate's substitution-flagged occurrences in
// a school year. The count only grows as the year's substitutions are recorded.
func CountSubstitutions(candidate TeacherID, school SchoolID, year SchoolYearID, occurrences []Occurrence) int {
	n := 0
	for _, o := range occurrences {
		if o.Teacher == candidate && o.School == school && o.SchoolYear == year && o.Substitution {
			n++
		}
	}
	return n
}

// SubstitutionLoads counts substitution-flagged occurrences per teacher in one pass.
// Teachers with none are absent from the map.
func SubstitutionLoads(school SchoolID, year SchoolYearID, occurrences []Occurrence) map[TeacherID]int {
	loads := make(map[TeacherID]int)
	for _, o := range occurrences {
		if o.School == school && o.SchoolYear == year && o.Substitution {
			loads[o.Teacher]++
		}
	}
	return loads
}

// SubstituteSignal is what screening reports for one candidate.
// It decides nothing; an outer workflow ranks or picks.
type SubstituteSignal struct {
	Teacher            TeacherID
	HasHourBefore      bool
	HasHourAfter       bool
	SubstitutionsSoFar int
}

// Screen computes the adjacency and load signals for every candidate against
// one target occurrence. dayOccurrences are the school's occurrences on the
// target date; substitutions are the school year's substitution-flagged ones.
func Screen(target Occurrence, candidates []TeacherID, dayOccurrences, substitutions []Occurrence, grid *SlotGrid) []SubstituteSignal {
	loads := SubstitutionLoads(target.School, target.SchoolYear, substitutions)
	signals := make([]SubstituteSignal, 0, len(candidates))
	for _, c := range candidates {
		signals = append(signals, SubstituteSignal{
			Teacher:            c,
			HasHourBefore:      HasAdjacent(Before, target, c, dayOccurrences, grid),
			HasHourAfter:       HasAdjacent(After, target, c, dayOccurrences, grid),
			SubstitutionsSoFar: loads[c],
		})
	}
	return signals
}

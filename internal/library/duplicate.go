package library

// IsDuplicate reports whether existing already contains an entry covering
// the same (kind, material set) as candidate. Two entries count as the same
// physical dataset when their declared coverage matches exactly; backing
// file paths and byte content are not inspected, so two differently sourced
// files with identical declared coverage collapse to whichever was
// registered first.
func IsDuplicate(candidate Entry, existing *Library) bool {
	for _, e := range existing.Entries {
		if e.SameCoverage(candidate) {
			return true
		}
	}
	return false
}

package covlens

// Checker classifies a matched (or unmatched) leaf's NodeInfo into a
// free-form report class. The default checker returns "missing" if the
// leaf was never found, "fail" if it was found but never hit, and
// "default" otherwise. ExclusionTree.Iterate applies the negation swap
// on top of whatever a Checker returns.
type Checker func(info NodeInfo) string

// DefaultChecker implements the default classification rule of spec
// 4.8: "missing" if !found, "fail" if found && hit_count == 0, else
// "default".
func DefaultChecker(info NodeInfo) string {
	switch {
	case !info.Found:
		return "missing"
	case info.HitCount == 0:
		return "fail"
	default:
		return "default"
	}
}

// MoreThan1000Checker is a user-defined checker example from the
// original design notes: any leaf hit more than 1000 times is flagged
// distinctly instead of folding into "default".
func MoreThan1000Checker(info NodeInfo) string {
	if !info.Found {
		return "missing"
	}
	if info.HitCount > 1000 {
		return "more_than_1000"
	}
	if info.HitCount == 0 {
		return "fail"
	}
	return "default"
}

// Reporter is the capability set a report sink must implement. The
// core makes no further assumption about its shape; HTML and
// plain-log renderers both implement it (see package report).
type Reporter interface {
	Start()
	Title()
	TreeStart(label string)
	Format(info NodeInfo, class string)
	TreeEnd()
	End()
}

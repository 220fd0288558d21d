package covlens

// NodeInfo is the per-leaf descriptor stored on every excluded node of
// an ExclusionTree: kind, name, source location, hit count, found
// flag, provenance (the check/exclusion file and line that generated
// it), a free-form comment, and the negation flag.
type NodeInfo struct {
	Kind     string
	Name     string
	Location string
	Line     uint32
	HitCount int64

	Found    bool
	Expanded bool
	Negated  bool

	Generator     string
	GeneratorLine uint32

	Comment string
}

// Equal reports whether n and o are equal over the subset of fields
// that the original node_info_t::operator== compares: Location, Name,
// Kind, HitCount, Found and Expanded. Line, Negated, Generator,
// GeneratorLine and Comment are provenance/config fields, not identity.
func (n NodeInfo) Equal(o NodeInfo) bool {
	return n.Location == o.Location &&
		n.Name == o.Name &&
		n.Kind == o.Kind &&
		n.HitCount == o.HitCount &&
		n.Found == o.Found &&
		n.Expanded == o.Expanded
}

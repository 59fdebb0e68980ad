// Package blood holds the blood group vocabulary shared by donors, units,
// requests, and inventory summaries.
package blood

// Group is one of the eight ABO/Rh combinations.
type Group string

const (
	APos  Group = "A+"
	ANeg  Group = "A-"
	BPos  Group = "B+"
	BNeg  Group = "B-"
	ABPos Group = "AB+"
	ABNeg Group = "AB-"
	OPos  Group = "O+"
	ONeg  Group = "O-"
)

var groups = []Group{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}

var groupSet = func() map[Group]bool {
	m := make(map[Group]bool, len(groups))
	for _, g := range groups {
		m[g] = true
	}
	return m
}()

// ValidGroup reports whether g is a known blood group.
func ValidGroup(g Group) bool {
	return groupSet[g]
}

// Groups returns all blood groups in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

package protocol

import "slices"

// ToolFilter gates which operations are exposed by a server instance.
type ToolFilter struct {
	Allow []string `yaml:"allow,omitempty" json:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty" json:"deny,omitempty"`
}

// Allowed reports whether the named operation is exposed.
// If an allow list is set, only listed operations are exposed (deny is ignored).
// If only a deny list is set, everything except listed operations is exposed.
// If neither is set, everything is exposed.
func (f ToolFilter) Allowed(name string) bool {
	if len(f.Allow) > 0 {
		return slices.Contains(f.Allow, name)
	}
	if len(f.Deny) > 0 {
		return !slices.Contains(f.Deny, name)
	}
	return true
}

package scene

import "strings"

type MatchMode int

const (
	MatchSubstring MatchMode = iota
	MatchPrefix
)

// NamePolicy classifies node names that are raw mesh-grouping artifacts of
// the asset pipeline rather than semantically meaningful parts. The source
// assets are inconsistent about where the marker appears, so the match mode
// is configurable instead of hardcoded.
type NamePolicy struct {
	Marker string
	Mode   MatchMode
}

func DefaultNamePolicy() NamePolicy {
	return NamePolicy{Marker: "mesh_", Mode: MatchSubstring}
}

func (p NamePolicy) IsGroupingArtifact(name string) bool {
	if p.Marker == "" {
		return false
	}
	switch p.Mode {
	case MatchPrefix:
		return strings.HasPrefix(name, p.Marker)
	default:
		return strings.Contains(name, p.Marker)
	}
}

// IsSelectable decides whether a node is a selectable part: it needs a
// non-empty name, must either carry per-node metadata or group children,
// and must not be flagged by the naming policy.
func (p NamePolicy) IsSelectable(n *Node) bool {
	if n.Name == "" {
		return false
	}
	if !n.HasMetadata && len(n.Childs) == 0 {
		return false
	}
	return !p.IsGroupingArtifact(n.Name)
}

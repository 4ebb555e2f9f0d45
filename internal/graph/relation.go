package graph

import "github.com/abramin/wattson/internal/domain"

// Relation links two committed nodes. Relations are append-only: once
// added they are never mutated, and Meta.Result in particular is computed
// exactly once at commit time.
type Relation struct {
	Type     domain.RelationType `json:"type"`
	SourceID int                 `json:"sourceId"`
	TargetID int                 `json:"targetId"`
	Meta     RelationMeta        `json:"meta"`
}

// RelationMeta records how a relation came to be: the handler that wrote
// it, the raw inputs of the logical request, and the templated result
// text. MemberIDs carries the full node set for group and sequence
// relations that span more than the two endpoints.
type RelationMeta struct {
	Via       string   `json:"via"`
	UserInput []string `json:"userInput,omitempty"`
	Result    string   `json:"result,omitempty"`
	MemberIDs []int    `json:"memberIds,omitempty"`
}

func (r Relation) clone() Relation {
	out := r
	out.Meta.UserInput = append([]string(nil), r.Meta.UserInput...)
	out.Meta.MemberIDs = append([]int(nil), r.Meta.MemberIDs...)
	return out
}

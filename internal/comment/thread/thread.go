// Package thread turns a flat list of parent-pointer comments into the
// reply forest of one item.
package thread

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

// IntegrityError lists the fatal anomalies found while building a forest.
type IntegrityError struct {
	Anomalies []model.Anomaly
}

func (e *IntegrityError) Error() string {
	parts := make([]string, 0, len(e.Anomalies))
	for _, a := range e.Anomalies {
		parts = append(parts, fmt.Sprintf("%s at comment %d", a.Kind, a.CommentID))
	}
	return fmt.Sprintf("%s: %s", apperr.ErrDataIntegrity, strings.Join(parts, ", "))
}

func (e *IntegrityError) Unwrap() error {
	return apperr.ErrDataIntegrity
}

// Err returns an *IntegrityError when any anomaly is fatal, nil otherwise.
func Err(anomalies []model.Anomaly) error {
	var fatal []model.Anomaly
	for _, a := range anomalies {
		if a.Kind.Fatal() {
			fatal = append(fatal, a)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	return &IntegrityError{Anomalies: fatal}
}

// Build returns the top-level forest for itemID. Siblings keep the order of
// the input slice. Comments of other items are ignored. Broken parts of the
// graph are left out of the forest and reported as anomalies; a parent id
// that exists nowhere in the input is tolerated and the comment is shown at
// the top level.
func Build(comments []model.Comment, itemID uuid.UUID) ([]model.CommentNode, []model.Anomaly) {
	var anomalies []model.Anomaly

	owner := make(map[int64]uuid.UUID, len(comments))
	own := make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		if _, dup := owner[c.ID]; dup {
			if c.ItemID == itemID {
				anomalies = append(anomalies, anomaly(model.AnomalyDuplicateID, c))
			}
			continue
		}
		owner[c.ID] = c.ItemID
		if c.ItemID == itemID {
			own = append(own, c)
		}
	}

	children := make(map[int64][]int, len(own))
	crossItem := make(map[int64]bool)
	roots := make([]int, 0, len(own))

	for i, c := range own {
		if c.ParentID == nil {
			roots = append(roots, i)
			continue
		}

		parentItem, ok := owner[*c.ParentID]
		switch {
		case !ok:
			anomalies = append(anomalies, anomaly(model.AnomalyDanglingParent, c))
			roots = append(roots, i)
		case parentItem != itemID:
			anomalies = append(anomalies, anomaly(model.AnomalyCrossItemParent, c))
			crossItem[c.ID] = true
		default:
			children[*c.ParentID] = append(children[*c.ParentID], i)
		}
	}

	visited := make(map[int64]bool, len(own))

	var walk func(i int) model.CommentNode
	walk = func(i int) model.CommentNode {
		c := own[i]
		visited[c.ID] = true

		kids := children[c.ID]
		node := model.CommentNode{
			Comment:  c,
			Children: make([]model.CommentNode, 0, len(kids)),
		}
		for _, k := range kids {
			if visited[own[k].ID] {
				anomalies = append(anomalies, anomaly(model.AnomalyCycle, own[k]))
				continue
			}
			node.Children = append(node.Children, walk(k))
		}
		return node
	}

	forest := make([]model.CommentNode, 0, len(roots))
	for _, i := range roots {
		if visited[own[i].ID] {
			continue
		}
		forest = append(forest, walk(i))
	}

	if len(visited) < len(own) {
		anomalies = append(anomalies, unreached(own, visited, crossItem)...)
	}

	return forest, anomalies
}

// unreached reports comments that no root leads to. Replies under a
// cross-item comment were already accounted for by that comment; anything
// else is stuck on a parent cycle.
func unreached(own []model.Comment, visited, crossItem map[int64]bool) []model.Anomaly {
	parentOf := make(map[int64]*int64, len(own))
	for _, c := range own {
		parentOf[c.ID] = c.ParentID
	}

	// memo: true when the chain ends at a cross-item comment
	underCross := make(map[int64]bool, len(own))
	resolved := make(map[int64]bool, len(own))

	resolve := func(id int64) bool {
		var chain []int64
		seen := make(map[int64]bool)
		result := false

		cur := id
		for {
			if resolved[cur] {
				result = underCross[cur]
				break
			}
			if crossItem[cur] {
				result = true
				break
			}
			if seen[cur] {
				break
			}
			seen[cur] = true
			chain = append(chain, cur)

			p := parentOf[cur]
			if p == nil {
				break
			}
			if _, ok := parentOf[*p]; !ok {
				break
			}
			cur = *p
		}

		for _, n := range chain {
			resolved[n] = true
			underCross[n] = result
		}
		return result
	}

	var out []model.Anomaly
	for _, c := range own {
		if visited[c.ID] || crossItem[c.ID] {
			continue
		}
		if resolve(c.ID) {
			continue
		}
		out = append(out, anomaly(model.AnomalyCycle, c))
	}
	return out
}

func anomaly(kind model.AnomalyKind, c model.Comment) model.Anomaly {
	a := model.Anomaly{Kind: kind, CommentID: c.ID}
	if c.ParentID != nil {
		p := *c.ParentID
		a.ParentID = &p
	}
	return a
}

// Flatten lists the forest in pre-order with parent ids taken from the tree
// shape rather than from the stored comments.
func Flatten(forest []model.CommentNode) []model.Comment {
	out := make([]model.Comment, 0, Count(forest))

	var visit func(n model.CommentNode, parent *int64)
	visit = func(n model.CommentNode, parent *int64) {
		c := n.Comment
		c.ParentID = parent
		out = append(out, c)

		id := c.ID
		for _, ch := range n.Children {
			visit(ch, &id)
		}
	}

	for _, n := range forest {
		visit(n, nil)
	}
	return out
}

// Count returns the number of nodes in the forest.
func Count(forest []model.CommentNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + Count(n.Children)
	}
	return total
}

package model

import "github.com/google/uuid"

type AnomalyKind string

const (
	AnomalyCycle           AnomalyKind = "cycle"
	AnomalyCrossItemParent AnomalyKind = "cross_item_parent"
	AnomalyDuplicateID     AnomalyKind = "duplicate_id"
	AnomalyDanglingParent  AnomalyKind = "dangling_parent"
)

// Fatal reports whether the anomaly means the stored parent graph is broken.
// Dangling parents are tolerated and rendered at the top level.
func (k AnomalyKind) Fatal() bool {
	return k != AnomalyDanglingParent
}

type Anomaly struct {
	Kind      AnomalyKind `json:"kind"`
	CommentID int64       `json:"comment_id"`
	ParentID  *int64      `json:"parent_id,omitempty"`
}

type Thread struct {
	ItemID    uuid.UUID     `json:"item_id"`
	Items     []CommentNode `json:"items"`
	Count     int           `json:"count"`
	Anomalies []Anomaly     `json:"anomalies,omitempty"`
}

package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SysBoxModel 声望事件通知：趋势通过/未通过、成就解锁、等级提升
type SysBoxModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiverId"`
	Type       int8               `bson:"type" json:"type"`
	TargetID   uint64             `bson:"target_id" json:"targetId"` // 趋势ID，成就与升级通知为 0
	Content    string             `bson:"content" json:"content"`
	Payload    map[string]any     `bson:"payload" json:"payload"`
	DedupKey   string             `bson:"dedup_key,omitempty" json:"-"`
	IsRead     bool               `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

// SysBoxQuery 通知列表筛选，Type 为 0 表示全部类型
type SysBoxQuery struct {
	ReceiverID uint64
	Type       int8
	UnreadOnly bool
	Limit      int64
	Offset     int64
}

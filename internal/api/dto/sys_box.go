package dto

// SysBoxDTO 站内通知
type SysBoxDTO struct {
	ID        string         `json:"id"`
	Type      int8           `json:"type"`      // 1-趋势通过, 2-趋势未通过, 3-成就解锁, 4-等级提升
	TargetID  uint64         `json:"target_id"` // 关联的趋势ID
	Content   string         `json:"content"`
	Payload   map[string]any `json:"payload"`
	IsRead    bool           `json:"is_read"`
	CreatedAt string         `json:"created_at"`
}

// SysBoxListReq 通知列表查询
type SysBoxListReq struct {
	Page     int  `form:"page" binding:"omitempty,min=1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	Type     int8 `form:"type" binding:"omitempty,min=1,max=4"`
	Unread   bool `form:"unread"`
}

// SysBoxUnreadDTO 未读数返回，ByType 以通知类型为键
type SysBoxUnreadDTO struct {
	UnreadCount int64          `json:"unread_count"`
	ByType      map[int8]int64 `json:"by_type"`
}

// SysBoxReadReq 标记单条已读
type SysBoxReadReq struct {
	MsgID string `json:"msgId" binding:"required"`
}

// SysBoxReadAllDTO 一键已读结果
type SysBoxReadAllDTO struct {
	Updated int64 `json:"updated"`
}

package service

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/pkg/mongo"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

type SysBoxService interface {
	GetNotificationList(ctx context.Context, userID uint64, req *dto.SysBoxListReq) ([]*dto.SysBoxDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.SysBoxUnreadDTO, error)
	MarkRead(ctx context.Context, userID uint64, msgID string) error
	MarkAllRead(ctx context.Context, userID uint64) (*dto.SysBoxReadAllDTO, error)
}

type sysBoxServiceImpl struct {
	sysBoxRepo mongo.SysBoxRepo
}

func NewSysBoxService(sysBox mongo.SysBoxRepo) SysBoxService {
	return &sysBoxServiceImpl{
		sysBoxRepo: sysBox,
	}
}

// GetNotificationList 通知列表，可按类型与未读筛选
func (s *sysBoxServiceImpl) GetNotificationList(ctx context.Context, userID uint64, req *dto.SysBoxListReq) ([]*dto.SysBoxDTO, error) {
	if req.Page <= 0 || req.PageSize <= 0 {
		return nil, ErrParamInvalid
	}

	list, err := s.sysBoxRepo.ListNotifications(ctx, mongo.SysBoxQuery{
		ReceiverID: userID,
		Type:       req.Type,
		UnreadOnly: req.Unread,
		Limit:      int64(req.PageSize),
		Offset:     int64((req.Page - 1) * req.PageSize),
	})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SysBoxDTO, 0, len(list))
	for _, m := range list {
		d := &dto.SysBoxDTO{}
		_ = copier.Copy(d, m)
		d.ID = m.ID.Hex()
		d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
		res = append(res, d)
	}
	return res, nil
}

func (s *sysBoxServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.SysBoxUnreadDTO, error) {
	byType, err := s.sysBoxRepo.CountUnreadByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &dto.SysBoxUnreadDTO{ByType: byType}
	for _, n := range byType {
		res.UnreadCount += n
	}
	return res, nil
}

// MarkRead 只能标记自己的通知
func (s *sysBoxServiceImpl) MarkRead(ctx context.Context, userID uint64, msgID string) error {
	objectID, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return ErrParamInvalid
	}

	notice, err := s.sysBoxRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return ErrSysBoxNotFound
		}
		return err
	}
	if notice.ReceiverID != userID {
		return UnauthorizedError
	}
	if notice.IsRead {
		return nil
	}
	return s.sysBoxRepo.MarkAsRead(ctx, userID, objectID)
}

func (s *sysBoxServiceImpl) MarkAllRead(ctx context.Context, userID uint64) (*dto.SysBoxReadAllDTO, error) {
	n, err := s.sysBoxRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SysBoxReadAllDTO{Updated: n}, nil
}

// sysBoxNotifier 把声望事件写入 sys_box
type sysBoxNotifier struct {
	sysBoxRepo mongo.SysBoxRepo
	now        func() time.Time
}

func NewSysBoxNotifier(sysBox mongo.SysBoxRepo) Notifier {
	return &sysBoxNotifier{sysBoxRepo: sysBox, now: time.Now}
}

func (n *sysBoxNotifier) Notify(ctx context.Context, msg *Notification) error {
	created, err := n.sysBoxRepo.CreateNotification(ctx, &mongo.SysBoxModel{
		ReceiverID: msg.UserID,
		Type:       msg.Type,
		TargetID:   msg.TargetID,
		Content:    msg.Content,
		Payload:    msg.Payload,
		DedupKey:   msg.DedupKey,
		IsRead:     false,
		CreatedAt:  n.now(),
	})
	if err != nil {
		return err
	}
	if !created {
		log.DebugContext(ctx, "duplicate notification skipped", "uid", msg.UserID, "dedup_key", msg.DedupKey)
	}
	return nil
}

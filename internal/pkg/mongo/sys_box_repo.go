package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sysBoxCollection = "sys_box"

type SysBoxRepo interface {
	CreateNotification(ctx context.Context, msg *SysBoxModel) (bool, error)
	ListNotifications(ctx context.Context, q SysBoxQuery) ([]*SysBoxModel, error)
	MarkAsRead(ctx context.Context, userID uint64, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID uint64) (int64, error)
	CountUnreadByType(ctx context.Context, userID uint64) (map[int8]int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*SysBoxModel, error)
}

type sysBoxRepoImpl struct {
	col *mongo.Collection
}

func NewSysBoxRepo(db *mongo.Database) SysBoxRepo {
	return &sysBoxRepoImpl{
		col: db.Collection(sysBoxCollection),
	}
}

// CreateNotification 带 DedupKey 的通知按键 upsert，已存在时返回 false
func (s *sysBoxRepoImpl) CreateNotification(ctx context.Context, msg *SysBoxModel) (bool, error) {
	if msg.DedupKey == "" {
		res, err := s.col.InsertOne(ctx, msg)
		if err != nil {
			return false, err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			msg.ID = id
		}
		return true, nil
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"dedup_key": msg.DedupKey},
		bson.M{"$setOnInsert": msg},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return res.UpsertedCount > 0, nil
}

// ListNotifications 按时间倒序分页
func (s *sysBoxRepoImpl) ListNotifications(ctx context.Context, q SysBoxQuery) ([]*SysBoxModel, error) {
	filter := bson.M{"receiver_id": q.ReceiverID}
	if q.Type != 0 {
		filter["type"] = q.Type
	}
	if q.UnreadOnly {
		filter["is_read"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(q.Limit).
		SetSkip(q.Offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*SysBoxModel, 0, q.Limit)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *sysBoxRepoImpl) MarkAsRead(ctx context.Context, userID uint64, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "receiver_id": userID}
	result, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllAsRead 返回本次置为已读的条数
func (s *sysBoxRepoImpl) MarkAllAsRead(ctx context.Context, userID uint64) (int64, error) {
	filter := bson.M{"receiver_id": userID, "is_read": false}
	res, err := s.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnreadByType 按通知类型聚合未读数
func (s *sysBoxRepoImpl) CountUnreadByType(ctx context.Context, userID uint64) (map[int8]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"receiver_id": userID, "is_read": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var rows []struct {
		Type  int8  `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	res := make(map[int8]int64, len(rows))
	for _, r := range rows {
		res[r.Type] = r.Count
	}
	return res, nil
}

func (s *sysBoxRepoImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*SysBoxModel, error) {
	var msg SysBoxModel
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

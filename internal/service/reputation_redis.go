package service

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/pkg/consts"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	redisv9 "github.com/redis/go-redis/v9"
)

// redisLeaderboard 积分排行榜，score 为用户当前总积分
type redisLeaderboard struct {
	rdb *redisv9.Client
}

func NewRedisLeaderboard(rdb *redisv9.Client) Leaderboard {
	return &redisLeaderboard{rdb: rdb}
}

func (l *redisLeaderboard) Update(ctx context.Context, userID uint64, points int) error {
	return l.rdb.ZAdd(ctx, consts.ReputationLeaderboardKey, redisv9.Z{
		Score:  float64(points),
		Member: strconv.FormatUint(userID, 10),
	}).Err()
}

func (l *redisLeaderboard) Top(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, consts.ReputationLeaderboardKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	res := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		uid, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		res = append(res, LeaderboardEntry{UserID: uid, Points: int(z.Score)})
	}
	return res, nil
}

// redisSummaryCache 声望概览的短时缓存
type redisSummaryCache struct {
	rdb *redisv9.Client
	ttl time.Duration
}

func NewRedisSummaryCache(rdb *redisv9.Client, ttl time.Duration) SummaryCache {
	return &redisSummaryCache{rdb: rdb, ttl: ttl}
}

func summaryKey(userID uint64) string {
	return consts.ReputationSummaryKey + strconv.FormatUint(userID, 10)
}

func (c *redisSummaryCache) Get(ctx context.Context, userID uint64) (*dto.ReputationDTO, error) {
	val, err := c.rdb.Get(ctx, summaryKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redisv9.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var res dto.ReputationDTO
	if err = json.Unmarshal(val, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, userID uint64, summary *dto.ReputationDTO) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, summaryKey(userID), b, c.ttl).Err()
}

func (c *redisSummaryCache) Invalidate(ctx context.Context, userID uint64) error {
	return c.rdb.Del(ctx, summaryKey(userID)).Err()
}

// redisDirtyMarker 积分变化的用户进入脏集合，由对账任务消费
type redisDirtyMarker struct {
	rdb *redisv9.Client
}

func NewRedisDirtyMarker(rdb *redisv9.Client) DirtyMarker {
	return &redisDirtyMarker{rdb: rdb}
}

func (d *redisDirtyMarker) MarkDirty(ctx context.Context, userID uint64) error {
	return d.rdb.SAdd(ctx, consts.PointsDirtyKey, strconv.FormatUint(userID, 10)).Err()
}

// redisSkipGuard 多实例共享的连续跳过计数，会话闲置超过 ttl 后自动清零
type redisSkipGuard struct {
	rdb *redisv9.Client
	ttl time.Duration
}

func NewRedisSkipGuard(rdb *redisv9.Client, ttl time.Duration) SkipGuard {
	return &redisSkipGuard{rdb: rdb, ttl: ttl}
}

func skipKey(userID uint64) string {
	return consts.ValidationSkipKey + strconv.FormatUint(userID, 10)
}

func (g *redisSkipGuard) Count(ctx context.Context, userID uint64) (int, error) {
	n, err := g.rdb.Get(ctx, skipKey(userID)).Int()
	if err != nil {
		if errors.Is(err, redisv9.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// reserveSkipScript INCR 后超限立即回退，未超限时续期
var reserveSkipScript = redisv9.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n > tonumber(ARGV[1]) then
	redis.call('DECR', KEYS[1])
	return 0
end
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

var releaseSkipScript = redisv9.NewScript(`
local n = redis.call('DECR', KEYS[1])
if n <= 0 then
	redis.call('DEL', KEYS[1])
end
return n
`)

func (g *redisSkipGuard) Reserve(ctx context.Context, userID uint64, limit int) (bool, error) {
	ok, err := reserveSkipScript.Run(ctx, g.rdb, []string{skipKey(userID)}, limit, g.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return ok == 1, nil
}

func (g *redisSkipGuard) Release(ctx context.Context, userID uint64) error {
	return releaseSkipScript.Run(ctx, g.rdb, []string{skipKey(userID)}).Err()
}

func (g *redisSkipGuard) Reset(ctx context.Context, userID uint64) error {
	return g.rdb.Del(ctx, skipKey(userID)).Err()
}

package reputation

import (
	"errors"
	"fmt"
	"math"
)

// Unbounded 最高等级的上限
const Unbounded = math.MaxInt

// Level 等级区间，[Min, Max] 闭区间
type Level struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// IsTerminal 是否为最高等级
func (l Level) IsTerminal() bool {
	return l.Max == Unbounded
}

// Progress 距离下一等级的进度
type Progress struct {
	PointsNeeded int     `json:"points_needed"`
	Percentage   float64 `json:"percentage"`
}

// LevelTable 升序、连续、无空洞的等级表
type LevelTable []Level

var ErrLevelTableInvalid = errors.New("level table is not contiguous")

// DefaultLevelTable bronze / silver / gold / diamond / platinum
func DefaultLevelTable() LevelTable {
	return LevelTable{
		{Name: "bronze", Min: 0, Max: 999},
		{Name: "silver", Min: 1000, Max: 4999},
		{Name: "gold", Min: 5000, Max: 19999},
		{Name: "diamond", Min: 20000, Max: 49999},
		{Name: "platinum", Min: 50000, Max: Unbounded},
	}
}

// Validate 校验等级表从 0 开始、相邻区间首尾相接且最后一级无上限
func (t LevelTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrLevelTableInvalid)
	}
	if t[0].Min != 0 {
		return fmt.Errorf("%w: first band starts at %d", ErrLevelTableInvalid, t[0].Min)
	}
	for i, l := range t {
		if l.Max < l.Min {
			return fmt.Errorf("%w: band %s has max < min", ErrLevelTableInvalid, l.Name)
		}
		if i > 0 && t[i-1].Max+1 != l.Min {
			return fmt.Errorf("%w: gap between %s and %s", ErrLevelTableInvalid, t[i-1].Name, l.Name)
		}
	}
	if !t[len(t)-1].IsTerminal() {
		return fmt.Errorf("%w: last band is bounded", ErrLevelTableInvalid)
	}
	return nil
}

// LevelFor 返回包含 points 的唯一区间，负数按 0 处理
func (t LevelTable) LevelFor(points int) Level {
	if points < 0 {
		points = 0
	}
	for _, l := range t {
		if points >= l.Min && points <= l.Max {
			return l
		}
	}
	return t[len(t)-1]
}

// Progress 计算到下一等级所需积分以及当前区间内的百分比
func (t LevelTable) Progress(points int) Progress {
	if points < 0 {
		points = 0
	}
	cur := t.LevelFor(points)
	if cur.IsTerminal() {
		return Progress{PointsNeeded: 0, Percentage: 100}
	}

	width := float64(cur.Max - cur.Min + 1)
	pct := float64(points-cur.Min) / width * 100
	pct = math.Max(0, math.Min(100, pct))

	return Progress{
		PointsNeeded: cur.Max + 1 - points,
		Percentage:   math.Round(pct*100) / 100,
	}
}

package kafka

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const canalInsert = "INSERT"

// canal 以数据库本地时间输出 datetime，可能带小数秒
const canalTimeLayout = "2006-01-02 15:04:05"

var (
	ErrTableMismatch = errors.New("table name not match")
	ErrEmptyData     = errors.New("data is empty")
)

// CanalMessage canal flatMessage，只保留消费端用到的字段
type CanalMessage struct {
	Database string     `json:"database"`
	Table    string     `json:"table"`
	IsDDL    bool       `json:"isDdl"`
	Type     string     `json:"type"`
	TS       int64      `json:"ts"`
	Data     []CanalRow `json:"data"`
	Old      []CanalRow `json:"old"`
}

// CanalRow 一行变更，列值为字符串，NULL 为 nil
type CanalRow map[string]any

func (r CanalRow) Uint64(col string) uint64 {
	switch v := r[col].(type) {
	case string:
		n, _ := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		return n
	case float64:
		return uint64(v)
	default:
		return 0
	}
}

func (r CanalRow) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Time 无法解析时返回零值
func (r CanalRow) Time(col string) time.Time {
	s, ok := r[col].(string)
	if !ok || s == "" {
		return time.Time{}
	}
	if len(s) > len(canalTimeLayout) {
		s = s[:len(canalTimeLayout)]
	}
	t, err := time.ParseInLocation(canalTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ToCanalMessage 解析消息并校验表名，DDL 与空数据同样视为无需处理
func ToCanalMessage(value []byte, tableName string) (*CanalMessage, error) {
	var msg CanalMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return nil, errors.Wrap(err, "unmarshal canal message")
	}
	if msg.Table != tableName {
		return nil, errors.Wrapf(ErrTableMismatch, "want %s got %s", tableName, msg.Table)
	}
	if msg.IsDDL || len(msg.Data) == 0 {
		return nil, ErrEmptyData
	}
	return &msg, nil
}

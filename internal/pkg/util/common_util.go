package util

import (
	"regexp"
	"strconv"
	"strings"
)

var tagRegex = regexp.MustCompile(`#(\S+)`)

const tagPunct = ".,，。!?！？"

// ExtractTags 描述里的 #话题，按出现顺序去重
func ExtractTags(rawContent string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, m := range tagRegex.FindAllStringSubmatch(rawContent, -1) {
		tag := strings.Trim(m[1], tagPunct)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// StrSliceToUInt64Slice 批量转换 Redis 集合中的 ID
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	res := make([]uint64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

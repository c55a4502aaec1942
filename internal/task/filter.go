package task

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"tasktracker/internal/model"
)

// 过滤器输入错误，属于调用方可修正的校验错误。
var (
	ErrInvalidStatus = errors.New("invalid task status")
	ErrEmptySearch   = errors.New("search text must not be empty")
)

// Filter 描述一次列表查询的可选过滤条件。零值表示不过滤。
//
// Status 由存储层下推到 SQL 做精确匹配；Search 在进程内按
// 区分大小写的子串匹配（见 Match），两个条件同时出现时取交集。
type Filter struct {
	Status *model.TaskStatus
	Search string
}

// ParseFilter 将查询参数编译为 Filter。
//
// status 大小写不敏感，必须是 OPEN / IN_PROGRESS / DONE 之一；
// search 出现时必须含有非空白字符。校验之外不做任何改写，
// 匹配使用原始文本（首尾空白也参与子串匹配）。
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	if q.Has("status") {
		st, err := ParseStatus(q.Get("status"))
		if err != nil {
			return Filter{}, err
		}
		f.Status = &st
	}
	if q.Has("search") {
		raw := q.Get("search")
		if strings.TrimSpace(raw) == "" {
			return Filter{}, ErrEmptySearch
		}
		f.Search = raw
	}
	return f, nil
}

// ParseStatus 校验并规范化任务状态字符串（大小写不敏感）。
func ParseStatus(raw string) (model.TaskStatus, error) {
	switch model.TaskStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case model.StatusOpen:
		return model.StatusOpen, nil
	case model.StatusInProgress:
		return model.StatusInProgress, nil
	case model.StatusDone:
		return model.StatusDone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Match 判断任务是否命中搜索文本：标题或描述包含即命中。
// 标题与描述之间是"或"的关系，这是有意为之（单个搜索框同时匹配两个字段）。
func (f Filter) Match(t *model.Task) bool {
	if f.Search == "" {
		return true
	}
	return strings.Contains(t.Title, f.Search) || strings.Contains(t.Description, f.Search)
}

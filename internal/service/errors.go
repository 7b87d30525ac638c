package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	TooManyRequests     = 429
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrUserNotFound     = errors.New("用户不存在")
	ErrTrendNotFound    = errors.New("趋势不存在")
	ErrTrendDuplicate   = errors.New("该链接已在验证队列中")
	ErrTrendClosed      = errors.New("该趋势已结束验证")
	ErrVoteInvalid      = errors.New("投票类型无效")
	ErrVoteOwnTrend     = errors.New("不能验证自己提交的趋势")
	ErrAlreadyVoted     = errors.New("已经验证过该趋势")
	ErrTooManySkips     = errors.New("连续跳过次数过多，请先对当前趋势做出判断")
	ErrActionUnknown    = errors.New("未知的积分行为")
	ErrActionDuplicate  = errors.New("重复操作")
	ErrReferralSelf     = errors.New("不能邀请自己")
	ErrConcurrentUpdate = errors.New("数据更新冲突，请稍后重试")
	ErrSysBoxNotFound   = errors.New("通知不存在")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrUserNotFound:     NotFound,
	ErrTrendNotFound:    NotFound,
	ErrTrendDuplicate:   Conflict,
	ErrTrendClosed:      Conflict,
	ErrVoteInvalid:      BadRequest,
	ErrVoteOwnTrend:     BadRequest,
	ErrAlreadyVoted:     Conflict,
	ErrTooManySkips:     TooManyRequests,
	ErrActionUnknown:    BadRequest,
	ErrActionDuplicate:  BadRequest,
	ErrReferralSelf:     BadRequest,
	ErrConcurrentUpdate: Conflict,
	ErrSysBoxNotFound:   NotFound,
	UnauthorizedError:   Unauthorized,
	UnExpectedError:     InternalServerError,
}

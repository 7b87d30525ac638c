package consts

const (
	ReputationSummaryKey     = "reputation:summary:"
	ReputationLeaderboardKey = "reputation:leaderboard"
	ValidationSkipKey        = "validation:skip:"
	PointsDirtyKey           = "points:dirty"
	// TokenBlacklistKey 账号服务注销 Token 时写入签名
	TokenBlacklistKey = "auth:blacklist:"
)

const (
	PointsReconcileLock = "lock:points:reconcile"
	TrendContestedLock  = "lock:trend:contested"
)

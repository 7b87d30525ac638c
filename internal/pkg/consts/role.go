package consts

// 账号服务签发的角色
const (
	RoleUser  = "USER"
	RoleAudit = "AUDIT"
	RoleAdmin = "ADMIN"
)

package model

// 账号类型
const (
	AccountTypeDonor = "donor"
	AccountTypeStaff = "staff"
)

// Session 当前登录会话：由 JWT 声明还原，随请求上下文传递
type Session struct {
	AccountID    string
	AccountType  string
	HospitalCode string // 仅 staff
}

// IsDonor 是否献血者会话
func (s Session) IsDonor() bool { return s.AccountType == AccountTypeDonor }

// IsStaff 是否医院员工会话
func (s Session) IsStaff() bool { return s.AccountType == AccountTypeStaff }

package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// Identifier 可以是邮箱、手机号或医院代码
type LoginRequest struct {
	Identifier string `json:"identifier"  binding:"required"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterDonorRequest 献血者注册请求
// 字段校验在 service 层完成：重复邮箱必须优先于其他字段校验被拒绝
type RegisterDonorRequest struct {
	FirstName       string `json:"first_name"       validate:"required,max=100"`
	LastName        string `json:"last_name"        validate:"required,max=100"`
	Email           string `json:"email"            validate:"required,email,max=255"`
	Phone           string `json:"phone"            validate:"required,max=30"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	DateOfBirth     string `json:"date_of_birth"    validate:"required,date"`
	AgreeTerms      bool   `json:"agree_terms"`
}

// RegisterStaffRequest 医院员工注册请求
type RegisterStaffRequest struct {
	HospitalCode    string `json:"hospital_code"    validate:"required"`
	Email           string `json:"email"            validate:"omitempty,email,max=255"`
	Phone           string `json:"phone"            validate:"omitempty,max=30"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	AgreeTerms      bool   `json:"agree_terms"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest 找回密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // Access Token 有效期（秒）
	Account      AccountResponse `json:"account"`
}

// AccountResponse 当前会话账号信息（脱敏）
type AccountResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"` // donor | staff
	Name         string `json:"name,omitempty"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	HospitalCode string `json:"hospital_code,omitempty"`
	BloodType    string `json:"blood_type,omitempty"`
	Status       string `json:"status,omitempty"`
}

// RegisterResponse 献血者注册成功响应（需重新登录）
type RegisterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ForgotPasswordResponse 找回密码结果
type ForgotPasswordResponse struct {
	Exists      bool   `json:"exists"`
	AccountType string `json:"account_type,omitempty"`
}

package dto

// ── 献血者资料 DTO ──

// UpdateProfileRequest 更新资料请求
// FullName 按第一个空格拆分为名与姓
type UpdateProfileRequest struct {
	FullName    string `json:"full_name"     binding:"required,max=200"`
	Email       string `json:"email"         binding:"required,email,max=255"`
	Phone       string `json:"phone"         binding:"required,max=30"`
	Address     string `json:"address"       binding:"max=500"`
	BloodType   string `json:"blood_type"    binding:"omitempty,bloodtype"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,date"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// DonorProfileResponse 献血者资料
type DonorProfileResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Address     string `json:"address"`
	BloodType   string `json:"blood_type"`
	Status      string `json:"status"`
	JoinedAt    string `json:"joined_at"`
}

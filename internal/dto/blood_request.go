package dto

// ── 用血申请 DTO ──

// CreateBloodRequestRequest 提交用血申请（公开接口）
// Units 为预设血量（ml）或 "custom"，后者使用 CustomAmount
type CreateBloodRequestRequest struct {
	PatientName    string `json:"patient_name"    binding:"required,max=100"`
	Phone          string `json:"phone"           binding:"required,max=30"`
	Email          string `json:"email"           binding:"omitempty,email,max=255"`
	BloodType      string `json:"blood_type"      binding:"required,bloodtype"`
	Units          string `json:"units"           binding:"required,max=20"`
	CustomAmount   int    `json:"custom_amount"   binding:"omitempty,min=1"`
	Hospital       string `json:"hospital"        binding:"required,max=200"`
	Urgency        string `json:"urgency"` // 缺失时由 service 返回 ErrUrgencyRequired
	RequiredDate   string `json:"required_date"   binding:"required,date"`
	AdditionalInfo string `json:"additional_info" binding:"max=2000"`
}

// ListBloodRequestsRequest 用血申请列表查询
type ListBloodRequestsRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=all pending scheduled accepted fulfilled cancelled"`
}

// ScheduleDonorRequest 为用血申请排定献血者
type ScheduleDonorRequest struct {
	DonorName    string `json:"donor_name"    binding:"required,max=100"`
	DonorContact string `json:"donor_contact" binding:"required,contact"`
	Date         string `json:"date"          binding:"required,date"`
	Time         string `json:"time"          binding:"required,clock"`
	Message      string `json:"message"       binding:"max=1000"`
}

// BloodRequestResponse 用血申请详情
type BloodRequestResponse struct {
	ID                    string `json:"id"`
	PatientName           string `json:"patient_name"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	BloodType             string `json:"blood_type"`
	Units                 string `json:"units"`
	BloodNeededML         int    `json:"blood_needed_ml"`
	Hospital              string `json:"hospital"`
	Urgency               string `json:"urgency"`
	RequiredDate          string `json:"required_date"`
	AdditionalInfo        string `json:"additional_info"`
	Status                string `json:"status"`
	RequestDate           string `json:"request_date"`
	ScheduledDonor        string `json:"scheduled_donor"`
	ScheduledDonorContact string `json:"scheduled_donor_contact"`
	ScheduledDate         string `json:"scheduled_date"`
	ScheduledTime         string `json:"scheduled_time"`
	DonorResponse         string `json:"donor_response"`
	FulfilledAt           string `json:"fulfilled_at,omitempty"`
}

// ScheduleDonorResponse 排班结果：更新后的申请与发出的通知
type ScheduleDonorResponse struct {
	Request      BloodRequestResponse `json:"request"`
	Notification NotificationResponse `json:"notification"`
}

// RequestStatsResponse 用血申请统计
type RequestStatsResponse struct {
	Pending   int64 `json:"pending"`
	Urgent    int64 `json:"urgent"` // High 且 pending
	Scheduled int64 `json:"scheduled"`
	Fulfilled int64 `json:"fulfilled"`
}

package dto

// ── 献血预约 DTO ──

// CreateAppointmentRequest 献血者预约
type CreateAppointmentRequest struct {
	Date     string `json:"date"      binding:"required,date"`
	Time     string `json:"time"      binding:"required,clock"`
	AmountML int    `json:"amount_ml" binding:"required,min=1,max=1000"`
}

// ListAppointmentsRequest 预约列表查询
type ListAppointmentsRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=all pending confirmed rejected completed"`
}

// AppointmentResponse 预约详情
type AppointmentResponse struct {
	ID             string `json:"id"`
	DonorID        string `json:"donor_id"`
	DonorName      string `json:"donor_name"`
	DonorEmail     string `json:"donor_email"`
	DonorPhone     string `json:"donor_phone"`
	DonorBloodType string `json:"donor_blood_type"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	AmountML       int    `json:"amount_ml"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// DashboardStatsResponse 员工首页统计
type DashboardStatsResponse struct {
	PendingAppointments int64 `json:"pending_appointments"`
	ConfirmedToday      int64 `json:"confirmed_today"`
	TotalRequests       int64 `json:"total_requests"`
	ActiveDonors        int64 `json:"active_donors"`
}

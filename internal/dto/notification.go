package dto

// ── 通知 DTO ──

// RespondNotificationRequest 献血者响应排班
type RespondNotificationRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

// ScheduleDataResponse 通知中的排班数据
type ScheduleDataResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Hospital  string `json:"hospital"`
	RequestID string `json:"request_id"`
	Note      string `json:"note,omitempty"`
}

// NotificationResponse 通知详情
type NotificationResponse struct {
	ID           string               `json:"id"`
	DonorContact string               `json:"donor_contact"`
	Type         string               `json:"type"`
	Title        string               `json:"title"`
	Message      string               `json:"message"`
	ScheduleData ScheduleDataResponse `json:"schedule_data"`
	Status       string               `json:"status"`
	IsRead       bool                 `json:"is_read"`
	CreatedAt    string               `json:"created_at"`
	RespondedAt  string               `json:"responded_at,omitempty"`
}

// NotificationListResponse 我的通知列表
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	PendingCount  int64                  `json:"pending_count"`
}

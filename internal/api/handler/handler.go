package handler

import "lifeblood/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Donor        *DonorHandler
	BloodRequest *BloodRequestHandler
	Appointment  *AppointmentHandler
	Notification *NotificationHandler
	Leaderboard  *LeaderboardHandler
	Stats        *StatsHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Donor:        NewDonorHandler(svc.Donor),
		BloodRequest: NewBloodRequestHandler(svc.BloodRequest),
		Appointment:  NewAppointmentHandler(svc.Appointment),
		Notification: NewNotificationHandler(svc.Notification),
		Leaderboard:  NewLeaderboardHandler(svc.Leaderboard),
		Stats:        NewStatsHandler(svc.Stats),
		Export:       NewExportHandler(svc.Export),
	}
}

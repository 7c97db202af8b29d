package service

import (
	"time"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
)

// ── 模型 → 响应 DTO ──

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toDonorAccount(d *model.Donor) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        d.DonorID,
		Type:      model.AccountTypeDonor,
		Name:      d.FullName(),
		Email:     d.Email,
		Phone:     d.Phone,
		BloodType: d.BloodType,
		Status:    d.Status,
	}
}

func toStaffAccount(s *model.HospitalStaff) dto.AccountResponse {
	return dto.AccountResponse{
		ID:           s.StaffID,
		Type:         model.AccountTypeStaff,
		Email:        s.Email,
		Phone:        s.Phone,
		HospitalCode: s.HospitalCode,
	}
}

func toDonorProfile(d *model.Donor) *dto.DonorProfileResponse {
	return &dto.DonorProfileResponse{
		ID:          d.DonorID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		DateOfBirth: model.FormatDate(d.DateOfBirth),
		Address:     d.Address,
		BloodType:   d.BloodType,
		Status:      d.Status,
		JoinedAt:    formatTimestamp(&d.JoinedAt),
	}
}

func toBloodRequestResponse(r *model.BloodRequest) dto.BloodRequestResponse {
	return dto.BloodRequestResponse{
		ID:                    r.RequestID,
		PatientName:           r.PatientName,
		Phone:                 r.Phone,
		Email:                 r.Email,
		BloodType:             r.BloodType,
		Units:                 r.Units,
		BloodNeededML:         r.BloodNeededML,
		Hospital:              r.Hospital,
		Urgency:               r.Urgency,
		RequiredDate:          model.FormatDate(&r.RequiredDate),
		AdditionalInfo:        r.AdditionalInfo,
		Status:                r.Status,
		RequestDate:           model.FormatDate(&r.RequestDate),
		ScheduledDonor:        r.ScheduledDonor,
		ScheduledDonorContact: r.ScheduledDonorContact,
		ScheduledDate:         model.FormatDate(r.ScheduledDate),
		ScheduledTime:         r.ScheduledTime,
		DonorResponse:         r.DonorResponse,
		FulfilledAt:           formatTimestamp(r.FulfilledAt),
	}
}

func toBloodRequestResponses(list []model.BloodRequest) []dto.BloodRequestResponse {
	result := make([]dto.BloodRequestResponse, 0, len(list))
	for i := range list {
		result = append(result, toBloodRequestResponse(&list[i]))
	}
	return result
}

func toAppointmentResponse(a *model.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:             a.AppointmentID,
		DonorID:        a.DonorID,
		DonorName:      a.DonorName,
		DonorEmail:     a.DonorEmail,
		DonorPhone:     a.DonorPhone,
		DonorBloodType: a.DonorBloodType,
		Date:           model.FormatDate(&a.Date),
		Time:           a.Time,
		AmountML:       a.AmountML,
		Status:         a.Status,
		CreatedAt:      formatTimestamp(&a.CreatedAt),
	}
}

func toAppointmentResponses(list []model.Appointment) []dto.AppointmentResponse {
	result := make([]dto.AppointmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toAppointmentResponse(&list[i]))
	}
	return result
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:           n.NotificationID,
		DonorContact: n.DonorContact,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		ScheduleData: dto.ScheduleDataResponse{
			Date:      model.FormatDate(&n.ScheduleData.Date),
			Time:      n.ScheduleData.Time,
			Hospital:  n.ScheduleData.Hospital,
			RequestID: n.ScheduleData.RequestID,
			Note:      n.ScheduleData.Note,
		},
		Status:      n.Status,
		IsRead:      n.IsRead,
		CreatedAt:   formatTimestamp(&n.CreatedAt),
		RespondedAt: formatTimestamp(n.RespondedAt),
	}
}

func toTopDonorResponses(list []model.TopDonor) []dto.TopDonorResponse {
	result := make([]dto.TopDonorResponse, 0, len(list))
	for i := range list {
		d := &list[i]
		result = append(result, dto.TopDonorResponse{
			Rank:          i + 1,
			Name:          d.Name,
			BloodType:     d.BloodType,
			DonationCount: d.DonationCount,
			FirstDonation: model.FormatDate(d.FirstDonation),
			LastDonation:  model.FormatDate(d.LastDonation),
		})
	}
	return result
}

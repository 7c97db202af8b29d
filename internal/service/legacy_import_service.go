package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
	"lifeblood/backend/pkg/legacy"
	"lifeblood/backend/pkg/validate"
)

// LegacyImportService 浏览器本地存储数据导入
//
// 导入规则：
//   - 全部集合在同一事务内导入，任一基础设施错误整体回滚
//   - 明文密码使用 bcrypt 加密
//   - 已存在的记录（邮箱/手机号/医院代码重复）跳过
//   - 旧 ID 不保留，按导入顺序建立旧 ID → 新 UUID 映射，用于关联预约与通知
//   - 会话（currentUser）不导入，导入后需重新登录
type LegacyImportService interface {
	Import(ctx context.Context, dump *legacy.Dump) (*dto.LegacyImportResult, error)
}

type legacyImportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewLegacyImportService 创建 LegacyImportService 实例
func NewLegacyImportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) LegacyImportService {
	return &legacyImportService{cfg: cfg, repo: repo, logger: logger, now: zonedClock(time.Now, cfg.Database.Timezone)}
}

// importRun 单次导入的状态
type importRun struct {
	tx       *repository.Repository
	result   *dto.LegacyImportResult
	donorIDs map[string]string // 旧 ID → 新 donor_id
	reqIDs   map[string]string // 旧 ID → 新 request_id
}

func (r *importRun) skip(format string, args ...interface{}) {
	r.result.Skipped++
	r.result.Warnings = append(r.result.Warnings, fmt.Sprintf(format, args...))
}

func (s *legacyImportService) Import(ctx context.Context, dump *legacy.Dump) (*dto.LegacyImportResult, error) {
	result := &dto.LegacyImportResult{Warnings: append([]string(nil), dump.Warnings...)}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		run := &importRun{
			tx:       tx,
			result:   result,
			donorIDs: make(map[string]string),
			reqIDs:   make(map[string]string),
		}
		steps := []func(context.Context, *importRun, *legacy.Dump) error{
			s.importDonors,
			s.importStaff,
			s.importRequests,
			s.importAppointments,
			s.importNotifications,
			s.importTopDonors,
		}
		for _, step := range steps {
			if err := step(ctx, run, dump); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导入旧数据失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("旧数据导入完成",
		zap.Int("donors", result.Donors),
		zap.Int("staff", result.Staff),
		zap.Int("requests", result.Requests),
		zap.Int("appointments", result.Appointments),
		zap.Int("notifications", result.Notifications),
		zap.Int("top_donors", result.TopDonors),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// ── 献血者 ──

func (s *legacyImportService) importDonors(ctx context.Context, run *importRun, dump *legacy.Dump) error {
	for _, u := range dump.Donors {
		if u.Type != "" && u.Type != model.AccountTypeDonor {
			run.skip("献血者 %s: 类型 %q 不是 donor", u.ID, u.Type)
			continue
		}
		if u.Email == "" || u.Phone == "" || u.FirstName == "" || u.Password == "" {
			run.skip("献血者 %s: 缺少必填字段", u.ID)
			continue
		}

		exists, err := donorExists(ctx, run.tx, u.Email, u.Phone)
		if err != nil {
			return err
		}
		if exists {
			run.skip("献血者 %s: 邮箱或手机号已存在", u.ID)
			continue
		}

		hash, err := hashLegacyPassword(u.Password)
		if err != nil {
			return err
		}

		donor := &model.Donor{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
			Phone:        u.Phone,
			PasswordHash: hash,
			DateOfBirth:  legacy.ParseTime(u.DateOfBirth),
			Address:      u.Address,
			BloodType:    u.BloodType,
			Status:       model.DonorStatusActive,
			JoinedAt:     s.timeOr(u.JoinDate),
		}
		if u.Status == model.DonorStatusInactive {
			donor.Status = model.DonorStatusInactive
		}
		if err := run.tx.Donor.Create(ctx, donor); err != nil {
			return err
		}
		run.donorIDs[u.ID] = donor.DonorID
		run.result.Donors++
	}
	return nil
}

// ── 医院员工 ──

func (s *legacyImportService) importStaff(ctx context.Context, run *importRun, dump *legacy.Dump) error {
	if len(dump.BloodBanks) == 0 {
		return nil
	}
	if err := run.tx.Staff.LockRegistration(ctx); err != nil {
		return err
	}

	for _, b := range dump.BloodBanks {
		if !s.cfg.Hospital.IsValidCode(b.BankCode) || b.Password == "" {
			run.skip("医院员工 %s: 医院代码无效或缺少密码", b.ID)
			continue
		}
		if _, err := run.tx.Staff.GetByHospitalCode(ctx, b.BankCode); err == nil {
			run.skip("医院员工 %s: 医院代码 %s 已注册", b.ID, b.BankCode)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		count, err := run.tx.Staff.Count(ctx)
		if err != nil {
			return err
		}
		if count >= int64(s.cfg.Hospital.MaxStaffAccounts) {
			run.skip("医院员工 %s: 员工名额已满", b.ID)
			continue
		}

		hash, err := hashLegacyPassword(b.Password)
		if err != nil {
			return err
		}
		staff := &model.HospitalStaff{
			HospitalCode: b.BankCode,
			Email:        b.Email,
			Phone:        b.Phone,
			PasswordHash: hash,
			JoinedAt:     s.timeOr(b.JoinDate),
		}
		if err := run.tx.Staff.Create(ctx, staff); err != nil {
			return err
		}
		run.result.Staff++
	}
	return nil
}

// ── 用血申请 ──

var legacyRequestStatuses = map[string]bool{
	model.RequestStatusPending:   true,
	model.RequestStatusScheduled: true,
	model.RequestStatusAccepted:  true,
	model.RequestStatusFulfilled: true,
	model.RequestStatusCancelled: true,
}

func (s *legacyImportService) importRequests(ctx context.Context, run *importRun, dump *legacy.Dump) error {
	for _, r := range dump.Requests {
		amount := legacy.ParseAmountML(r.BloodNeeded)
		if amount == 0 && r.Units == model.UnitsCustom {
			amount = legacy.ParseAmountML(r.CustomAmount)
		}
		if amount == 0 {
			amount = legacy.ParseAmountML(r.Units)
		}
		requiredDate := legacy.ParseTime(r.RequiredDate)

		switch {
		case r.PatientName == "" || r.Phone == "":
			run.skip("用血申请 %s: 缺少患者信息", r.ID)
			continue
		case validate.Default().Var(r.Urgency, "urgency") != nil:
			run.skip("用血申请 %s: 紧急程度 %q 无效", r.ID, r.Urgency)
			continue
		case amount == 0:
			run.skip("用血申请 %s: 用血量无效", r.ID)
			continue
		case requiredDate == nil:
			run.skip("用血申请 %s: 需要日期无效", r.ID)
			continue
		}

		status := r.Status
		if !legacyRequestStatuses[status] {
			status = model.RequestStatusPending
		}

		br := &model.BloodRequest{
			PatientName:           r.PatientName,
			Phone:                 r.Phone,
			Email:                 r.Email,
			BloodType:             r.BloodType,
			Units:                 r.Units,
			BloodNeededML:         amount,
			Hospital:              r.Hospital,
			Urgency:               r.Urgency,
			RequiredDate:          today(*requiredDate),
			AdditionalInfo:        r.AdditionalInfo,
			Status:                status,
			RequestDate:           today(s.timeOr(r.RequestDate)),
			ScheduledDonor:        r.ScheduledDonor,
			ScheduledDonorContact: r.ScheduledDonorContact,
			ScheduledDate:         legacy.ParseTime(r.ScheduledDate),
			ScheduledTime:         r.ScheduledTime,
			DonorResponse:         r.DonorResponse,
		}
		if r.ScheduledDonorContact != "" {
			if donor, err := run.tx.Donor.GetByContact(ctx, r.ScheduledDonorContact); err == nil {
				br.ScheduledDonorID = &donor.DonorID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if err := run.tx.BloodRequest.Create(ctx, br); err != nil {
			return err
		}
		run.reqIDs[r.ID] = br.RequestID
		run.result.Requests++
	}
	return nil
}

// ── 预约 ──

var legacyAppointmentStatuses = map[string]bool{
	model.AppointmentStatusPending:   true,
	model.AppointmentStatusConfirmed: true,
	model.AppointmentStatusRejected:  true,
	model.AppointmentStatusCompleted: true,
}

func (s *legacyImportService) importAppointments(ctx context.Context, run *importRun, dump *legacy.Dump) error {
	for _, a := range dump.Appointments {
		donorID, ok := run.donorIDs[a.DonorID]
		if !ok && a.DonorEmail != "" {
			if donor, err := run.tx.Donor.GetByEmail(ctx, a.DonorEmail); err == nil {
				donorID, ok = donor.DonorID, true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		date := legacy.ParseTime(a.Date)
		amount := legacy.ParseAmountML(a.Amount)

		switch {
		case !ok:
			run.skip("预约 %s: 找不到献血者 %s", a.ID, a.DonorID)
			continue
		case date == nil || amount == 0 || a.Time == "":
			run.skip("预约 %s: 日期、时间或血量无效", a.ID)
			continue
		}

		status := a.Status
		if !legacyAppointmentStatuses[status] {
			status = model.AppointmentStatusPending
		}

		apt := &model.Appointment{
			DonorID:        donorID,
			DonorName:      valueOr(a.DonorName, anonymousDonorName),
			DonorEmail:     a.DonorEmail,
			DonorPhone:     a.DonorPhone,
			DonorBloodType: a.DonorBloodType,
			Date:           today(*date),
			Time:           a.Time,
			AmountML:       amount,
			Status:         status,
		}
		if created := legacy.ParseTime(a.CreatedAt); created != nil {
			apt.CreatedAt = *created
		}
		if err := run.tx.Appointment.Create(ctx, apt); err != nil {
			return err
		}
		run.result.Appointments++
	}
	return nil
}

// ── 通知 ──

func (s *legacyImportService) importNotifications(ctx context.Context, run *importRun, dump *legacy.Dump) error {
	for _, n := range dump.Notifications {
		requestID, ok := run.reqIDs[n.ScheduleData.RequestID]
		date := legacy.ParseTime(n.ScheduleData.Date)
		switch {
		case !ok:
			run.skip("通知 %s: 找不到用血申请 %s", n.ID, n.ScheduleData.RequestID)
			continue
		case n.DonorContact == "" || date == nil:
			run.skip("通知 %s: 缺少联系方式或排班日期", n.ID)
			continue
		}

		status := n.Status
		if status != model.NotificationStatusAccepted && status != model.NotificationStatusRejected {
			status = model.NotificationStatusPending
		}

		notif := &model.Notification{
			DonorContact: n.DonorContact,
			Type:         valueOr(n.Type, model.NotificationTypeDonationSchedule),
			Title:        valueOr(n.Title, scheduleNotificationTitle),
			Message:      n.Message,
			ScheduleData: model.ScheduleData{
				Date:      today(*date),
				Time:      n.ScheduleData.Time,
				Hospital:  valueOr(n.ScheduleData.Hospital, s.cfg.Hospital.DefaultName),
				RequestID: requestID,
				Note:      n.ScheduleData.Message,
			},
			Status:      status,
			IsRead:      n.IsRead,
			RespondedAt: legacy.ParseTime(n.RespondedAt),
		}
		if created := legacy.ParseTime(n.CreatedAt); created != nil {
			notif.CreatedAt = *created
		}
		if donor, err := run.tx.Donor.GetByContact(ctx, n.DonorContact); err == nil {
			notif.DonorID = &donor.DonorID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := run.tx.Notification.Create(ctx, notif); err != nil {
			return err
		}
		run.result.Notifications++
	}
	return nil
}

// ── 排行榜 ──

func (s *legacyImportService) importTopDonors(ctx context.Context, run *importRun, dump *legacy.Dump) error {
	if len(dump.TopDonors) == 0 {
		return nil
	}

	for _, d := range dump.TopDonors {
		if d.DonationCount <= 0 {
			run.skip("排行榜 %s: 献血次数无效", d.ID)
			continue
		}
		if _, err := run.tx.TopDonor.FindByContact(ctx, d.Email, d.Phone); err == nil {
			run.skip("排行榜 %s: 联系方式已存在", d.ID)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry := &model.TopDonor{
			Name:          valueOr(d.Name, anonymousDonorName),
			Email:         d.Email,
			Phone:         d.Phone,
			BloodType:     valueOr(d.BloodType, unknownBloodType),
			DonationCount: d.DonationCount,
			FirstDonation: legacy.ParseTime(d.FirstDonation),
			LastDonation:  legacy.ParseTime(d.LastDonation),
		}
		donorID, err := findDonorID(ctx, run.tx, d.Email, d.Phone)
		if err != nil {
			return err
		}
		entry.DonorID = donorID
		if err := run.tx.TopDonor.Create(ctx, entry); err != nil {
			return err
		}
		run.result.TopDonors++
	}

	_, err := run.tx.TopDonor.TrimTo(ctx, s.cfg.Leaderboard.Capacity)
	return err
}

// ── 辅助函数 ──

func (s *legacyImportService) timeOr(v string) time.Time {
	if t := legacy.ParseTime(v); t != nil {
		return *t
	}
	return s.now()
}

func donorExists(ctx context.Context, repo *repository.Repository, email, phone string) (bool, error) {
	if _, err := repo.Donor.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if _, err := repo.Donor.GetByPhone(ctx, phone); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return false, nil
}

// findDonorID 按非空邮箱或手机号查找注册献血者，未找到返回 nil
func findDonorID(ctx context.Context, repo *repository.Repository, email, phone string) (*string, error) {
	for _, contact := range []string{email, phone} {
		if contact == "" {
			continue
		}
		donor, err := repo.Donor.GetByContact(ctx, contact)
		if err == nil {
			return &donor.DonorID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// hashLegacyPassword 旧数据为明文密码；已是 bcrypt 哈希的原样保留
func hashLegacyPassword(password string) (string, error) {
	if strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

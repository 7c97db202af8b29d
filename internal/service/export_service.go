package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRequests   = errors.New("暂无用血申请")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	calendarProductID     = "-//lifeblood//donor calendar//EN"
	calendarEventDuration = time.Hour
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 用血申请导出为 Excel (.xlsx)，供员工离线归档
//   - 献血者日程导出为 iCalendar (.ics)：已接受的排班 + 未被拒绝的预约
//   - 导出内容以 bytes.Buffer 返回，由 Handler 层设置响应头
type ExportService interface {
	ExportRequests(ctx context.Context) (*bytes.Buffer, string, error)
	DonorCalendar(ctx context.Context, donorID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger, now: zonedClock(time.Now, cfg.Database.Timezone)}
}

// ═══════════════════════════════════════════════════════════
// ExportRequests 用血申请导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 单个 Sheet "用血申请"，第 1 行为标题，第 2 行为表头，之后每行一条申请（按提交时间倒序）

var requestColumns = []struct {
	header string
	width  float64
	value  func(r *model.BloodRequest) interface{}
}{
	{"患者姓名", 16, func(r *model.BloodRequest) interface{} { return r.PatientName }},
	{"血型", 8, func(r *model.BloodRequest) interface{} { return r.BloodType }},
	{"用血量(ml)", 12, func(r *model.BloodRequest) interface{} { return r.BloodNeededML }},
	{"紧急程度", 10, func(r *model.BloodRequest) interface{} { return r.Urgency }},
	{"医院", 20, func(r *model.BloodRequest) interface{} { return r.Hospital }},
	{"需要日期", 12, func(r *model.BloodRequest) interface{} { return model.FormatDate(&r.RequiredDate) }},
	{"状态", 10, func(r *model.BloodRequest) interface{} { return r.Status }},
	{"排定献血者", 16, func(r *model.BloodRequest) interface{} { return r.ScheduledDonor }},
	{"献血者联系方式", 22, func(r *model.BloodRequest) interface{} { return r.ScheduledDonorContact }},
	{"排班日期", 12, func(r *model.BloodRequest) interface{} { return model.FormatDate(r.ScheduledDate) }},
	{"献血者响应", 12, func(r *model.BloodRequest) interface{} { return r.DonorResponse }},
	{"联系电话", 16, func(r *model.BloodRequest) interface{} { return r.Phone }},
	{"提交日期", 12, func(r *model.BloodRequest) interface{} { return model.FormatDate(&r.RequestDate) }},
}

func (s *exportService) ExportRequests(ctx context.Context) (*bytes.Buffer, string, error) {
	reqs, err := s.repo.BloodRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询用血申请失败", zap.Error(err))
		return nil, "", err
	}
	if len(reqs) == 0 {
		return nil, "", ErrExportNoRequests
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "用血申请"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C0392B"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	lastCol := colName(len(requestColumns) - 1)
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("用血申请导出 (%s)", s.now().Format("2006-01-02 15:04")))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, col := range requestColumns {
		name := colName(i)
		f.SetColWidth(sheetName, name, name, col.width)
		f.SetCellValue(sheetName, cell(name, 2), col.header)
	}
	f.SetCellStyle(sheetName, "A2", cell(lastCol, 2), headerStyle)

	// 数据行
	for r := range reqs {
		row := r + 3
		for i, col := range requestColumns {
			f.SetCellValue(sheetName, cell(colName(i), row), col.value(&reqs[r]))
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("blood_requests_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// DonorCalendar 献血者日程导出为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) DonorCalendar(ctx context.Context, donorID string) (*bytes.Buffer, string, error) {
	donor, err := s.repo.Donor.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrDonorNotFound
		}
		s.logger.Error("查询献血者失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, "", err
	}

	appointments, err := s.repo.Appointment.ListByDonor(ctx, donorID)
	if err != nil {
		s.logger.Error("查询预约失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, "", err
	}
	notifications, err := s.repo.Notification.ListForRecipient(ctx, donor.DonorID, donor.Contacts())
	if err != nil {
		s.logger.Error("查询通知失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, "", err
	}

	loc := s.location()
	stamp := s.now()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, apt := range appointments {
		if apt.Status == model.AppointmentStatusRejected {
			continue
		}
		start, ok := eventStart(apt.Date, apt.Time, loc)
		if !ok {
			continue
		}
		ev := cal.AddEvent("appointment-" + apt.AppointmentID + "@lifeblood")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(calendarEventDuration))
		ev.SetSummary(fmt.Sprintf("Blood donation appointment (%s)", apt.Status))
		ev.SetDescription(fmt.Sprintf("Amount: %d ml", apt.AmountML))
	}

	for _, n := range notifications {
		if n.Status != model.NotificationStatusAccepted {
			continue
		}
		start, ok := eventStart(n.ScheduleData.Date, n.ScheduleData.Time, loc)
		if !ok {
			continue
		}
		ev := cal.AddEvent("schedule-" + n.NotificationID + "@lifeblood")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(calendarEventDuration))
		ev.SetSummary(n.Title)
		ev.SetLocation(n.ScheduleData.Hospital)
		ev.SetDescription(n.Message)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "lifeblood_schedule.ics", nil
}

// ── 辅助函数 ──

func (s *exportService) location() *time.Location {
	return loadLocation(s.cfg.Database.Timezone)
}

// eventStart 日期 + HH:MM 组合为本地时间
func eventStart(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

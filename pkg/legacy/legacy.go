// Package legacy 解析浏览器本地存储导出的 JSON 数据
//
// 导出文件是一个 JSON 对象，键为原存储键名，值为 JSON 序列化后的字符串或直接的数组/对象。
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// 原存储键名
const (
	KeyDonors        = "bloodDonationUsers"
	KeyBloodBanks    = "bloodBanks"
	KeyRequests      = "bloodRequests"
	KeyAppointments  = "bloodDonationAppointments"
	KeyNotifications = "bloodDonationNotifications"
	KeyTopDonors     = "bloodDonationTopDonors"
	KeyCurrentUser   = "currentUser"
)

// Donor 献血者记录
type Donor struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	BloodType   string `json:"bloodType"`
	Status      string `json:"status"`
	JoinDate    string `json:"joinDate"`
}

// BloodBank 医院员工记录
type BloodBank struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	BankCode string `json:"bankCode"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	JoinDate string `json:"joinDate"`
}

// BloodRequest 用血申请记录
type BloodRequest struct {
	ID                    string `json:"id"`
	PatientName           string `json:"patientName"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	BloodType             string `json:"bloodType"`
	Units                 string `json:"units"`
	CustomAmount          string `json:"customAmount"`
	BloodNeeded           string `json:"bloodNeeded"`
	Hospital              string `json:"hospital"`
	Urgency               string `json:"urgency"`
	RequiredDate          string `json:"requiredDate"`
	AdditionalInfo        string `json:"additionalInfo"`
	Status                string `json:"status"`
	RequestDate           string `json:"requestDate"`
	ScheduledDonor        string `json:"scheduledDonor"`
	ScheduledDonorContact string `json:"scheduledDonorContact"`
	ScheduledDate         string `json:"scheduledDate"`
	ScheduledTime         string `json:"scheduledTime"`
	DonorResponse         string `json:"donorResponse"`
}

// Appointment 预约记录
type Appointment struct {
	ID             string `json:"id"`
	DonorID        string `json:"donorId"`
	DonorName      string `json:"donorName"`
	DonorEmail     string `json:"donorEmail"`
	DonorPhone     string `json:"donorPhone"`
	DonorBloodType string `json:"donorBloodType"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
}

// ScheduleData 通知携带的排班数据
type ScheduleData struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Hospital  string `json:"hospital"`
	RequestID string `json:"requestId"`
	Message   string `json:"message"`
}

// Notification 通知记录
type Notification struct {
	ID           string       `json:"id"`
	DonorContact string       `json:"donorContact"`
	Type         string       `json:"type"`
	Title        string       `json:"title"`
	Message      string       `json:"message"`
	ScheduleData ScheduleData `json:"scheduleData"`
	Status       string       `json:"status"`
	CreatedAt    string       `json:"createdAt"`
	IsRead       bool         `json:"isRead"`
	RespondedAt  string       `json:"respondedAt"`
}

// TopDonor 排行榜记录
type TopDonor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	BloodType     string `json:"bloodType"`
	DonationCount int    `json:"donationCount"`
	FirstDonation string `json:"firstDonation"`
	LastDonation  string `json:"lastDonation"`
}

// CurrentUser 旧会话，只保留身份字段
type CurrentUser struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Dump 解析后的完整导出内容
type Dump struct {
	Donors        []Donor
	BloodBanks    []BloodBank
	Requests      []BloodRequest
	Appointments  []Appointment
	Notifications []Notification
	TopDonors     []TopDonor
	CurrentUser   *CurrentUser // 缺少 id 或 type 时为 nil
	Warnings      []string
}

// Parse 读取导出文件
// 单个键的值损坏时记录警告并跳过该键，顶层不是 JSON 对象时返回错误
func Parse(r io.Reader) (*Dump, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析导出文件失败: %w", err)
	}

	d := &Dump{}
	targets := map[string]interface{}{
		KeyDonors:        &d.Donors,
		KeyBloodBanks:    &d.BloodBanks,
		KeyRequests:      &d.Requests,
		KeyAppointments:  &d.Appointments,
		KeyNotifications: &d.Notifications,
		KeyTopDonors:     &d.TopDonors,
	}
	for key, out := range targets {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := decodeValue(value, out); err != nil {
			d.Warnings = append(d.Warnings, fmt.Sprintf("%s: %v", key, err))
		}
	}

	if value, ok := raw[KeyCurrentUser]; ok {
		var cu CurrentUser
		if err := decodeValue(value, &cu); err != nil || cu.ID == "" || cu.Type == "" {
			d.Warnings = append(d.Warnings, KeyCurrentUser+": 会话缺少 id 或 type，已丢弃")
		} else {
			d.CurrentUser = &cu
		}
	}

	return d, nil
}

// decodeValue 值可能是 JSON 字符串（localStorage 原样导出）或直接的 JSON
func decodeValue(value json.RawMessage, out interface{}) error {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil
	}
	if value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" || s == "null" {
			return nil
		}
		value = []byte(s)
	}
	return json.Unmarshal(value, out)
}

// ParseAmountML 解析 "450 ml" / "450" 形式的血量，失败返回 0
func ParseAmountML(s string) int {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "ml"))
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// ParseTime 解析 ISO 时间或 YYYY-MM-DD 日期，失败返回 nil
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

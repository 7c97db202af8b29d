package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
)

// 所有 mock 在 GetByID 时返回副本、在 Update 时写回副本，模拟数据库读写语义

// ── Mock DonorRepository ──

type mockDonorRepo struct {
	donors map[string]*model.Donor
	seq    int
}

func newMockDonorRepo() *mockDonorRepo {
	return &mockDonorRepo{donors: make(map[string]*model.Donor)}
}

func (m *mockDonorRepo) Create(_ context.Context, donor *model.Donor) error {
	for _, d := range m.donors {
		if d.Email == donor.Email || d.Phone == donor.Phone {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if donor.DonorID == "" {
		donor.DonorID = fmt.Sprintf("donor-%d", m.seq)
	}
	if donor.JoinedAt.IsZero() {
		donor.JoinedAt = time.Now()
	}
	donor.Version = 1
	cp := *donor
	m.donors[donor.DonorID] = &cp
	return nil
}

func (m *mockDonorRepo) GetByID(_ context.Context, id string) (*model.Donor, error) {
	if d, ok := m.donors[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDonorRepo) find(match func(*model.Donor) bool) (*model.Donor, error) {
	for _, d := range m.donors {
		if match(d) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDonorRepo) GetByEmail(_ context.Context, email string) (*model.Donor, error) {
	return m.find(func(d *model.Donor) bool { return d.Email == email })
}

func (m *mockDonorRepo) GetByPhone(_ context.Context, phone string) (*model.Donor, error) {
	return m.find(func(d *model.Donor) bool { return d.Phone == phone })
}

func (m *mockDonorRepo) GetByContact(ctx context.Context, contact string) (*model.Donor, error) {
	if strings.Contains(contact, "@") {
		return m.GetByEmail(ctx, contact)
	}
	return m.GetByPhone(ctx, contact)
}

func (m *mockDonorRepo) Update(_ context.Context, donor *model.Donor) error {
	if _, ok := m.donors[donor.DonorID]; !ok {
		return gorm.ErrRecordNotFound
	}
	donor.Version++
	cp := *donor
	m.donors[donor.DonorID] = &cp
	return nil
}

func (m *mockDonorRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.donors[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.donors, id)
	return nil
}

// ── Mock HospitalStaffRepository ──

type mockStaffRepo struct {
	staff map[string]*model.HospitalStaff
	seq   int
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*model.HospitalStaff)}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.HospitalStaff) error {
	m.seq++
	if staff.StaffID == "" {
		staff.StaffID = fmt.Sprintf("staff-%d", m.seq)
	}
	cp := *staff
	m.staff[staff.StaffID] = &cp
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*model.HospitalStaff, error) {
	if s, ok := m.staff[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) find(match func(*model.HospitalStaff) bool) (*model.HospitalStaff, error) {
	for _, s := range m.staff {
		if match(s) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByHospitalCode(_ context.Context, code string) (*model.HospitalStaff, error) {
	return m.find(func(s *model.HospitalStaff) bool { return s.HospitalCode == code })
}

func (m *mockStaffRepo) GetByIdentifier(_ context.Context, identifier string) (*model.HospitalStaff, error) {
	return m.find(func(s *model.HospitalStaff) bool {
		return s.HospitalCode == identifier ||
			(s.Email != "" && s.Email == identifier) ||
			(s.Phone != "" && s.Phone == identifier)
	})
}

func (m *mockStaffRepo) GetByEmail(_ context.Context, email string) (*model.HospitalStaff, error) {
	return m.find(func(s *model.HospitalStaff) bool { return s.Email != "" && s.Email == email })
}

func (m *mockStaffRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.staff)), nil
}

func (m *mockStaffRepo) LockRegistration(_ context.Context) error { return nil }

// ── Mock BloodRequestRepository ──

type mockBloodRequestRepo struct {
	requests map[string]*model.BloodRequest
	order    []string // 插入顺序
	seq      int
}

func newMockBloodRequestRepo() *mockBloodRequestRepo {
	return &mockBloodRequestRepo{requests: make(map[string]*model.BloodRequest)}
}

func (m *mockBloodRequestRepo) Create(_ context.Context, req *model.BloodRequest) error {
	m.seq++
	if req.RequestID == "" {
		req.RequestID = fmt.Sprintf("req-%d", m.seq)
	}
	req.Version = 1
	cp := *req
	m.requests[req.RequestID] = &cp
	m.order = append(m.order, req.RequestID)
	return nil
}

func (m *mockBloodRequestRepo) GetByID(_ context.Context, id string) (*model.BloodRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBloodRequestRepo) Update(_ context.Context, req *model.BloodRequest) error {
	if _, ok := m.requests[req.RequestID]; !ok {
		return gorm.ErrRecordNotFound
	}
	req.Version++
	cp := *req
	m.requests[req.RequestID] = &cp
	return nil
}

// newestFirst 按插入顺序倒序
func (m *mockBloodRequestRepo) newestFirst() []model.BloodRequest {
	var result []model.BloodRequest
	for i := len(m.order) - 1; i >= 0; i-- {
		if r, ok := m.requests[m.order[i]]; ok {
			result = append(result, *r)
		}
	}
	return result
}

func (m *mockBloodRequestRepo) List(_ context.Context, status string, offset, limit int) ([]model.BloodRequest, int64, error) {
	var filtered []model.BloodRequest
	for _, r := range m.newestFirst() {
		if status == "" || r.Status == status {
			filtered = append(filtered, r)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockBloodRequestRepo) ListAll(_ context.Context) ([]model.BloodRequest, error) {
	return m.newestFirst(), nil
}

func (m *mockBloodRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.requests[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *mockBloodRequestRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.requests))
	m.requests = make(map[string]*model.BloodRequest)
	m.order = nil
	return n, nil
}

func (m *mockBloodRequestRepo) Counts(_ context.Context) (*repository.RequestCounts, error) {
	c := &repository.RequestCounts{}
	for _, r := range m.requests {
		c.Total++
		switch r.Status {
		case model.RequestStatusPending:
			c.Pending++
			if r.Urgency == model.UrgencyHigh {
				c.Urgent++
			}
		case model.RequestStatusScheduled:
			c.Scheduled++
		case model.RequestStatusFulfilled:
			c.Fulfilled++
		}
	}
	return c, nil
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appointments map[string]*model.Appointment
	seq          int
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[string]*model.Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	m.seq++
	if apt.AppointmentID == "" {
		apt.AppointmentID = fmt.Sprintf("apt-%d", m.seq)
	}
	apt.Version = 1
	cp := *apt
	m.appointments[apt.AppointmentID] = &cp
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := m.appointments[apt.AppointmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	apt.Version++
	cp := *apt
	m.appointments[apt.AppointmentID] = &cp
	return nil
}

func (m *mockAppointmentRepo) filter(match func(*model.Appointment) bool) []model.Appointment {
	var result []model.Appointment
	for _, a := range m.appointments {
		if match(a) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result
}

func (m *mockAppointmentRepo) ListByDonor(_ context.Context, donorID string) ([]model.Appointment, error) {
	return m.filter(func(a *model.Appointment) bool { return a.DonorID == donorID }), nil
}

func (m *mockAppointmentRepo) List(_ context.Context, status string) ([]model.Appointment, error) {
	return m.filter(func(a *model.Appointment) bool { return status == "" || a.Status == status }), nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.appointments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockAppointmentRepo) DeleteNonPending(_ context.Context) (int64, error) {
	var n int64
	for id, a := range m.appointments {
		if a.Status != model.AppointmentStatusPending {
			delete(m.appointments, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) Counts(_ context.Context, today time.Time) (*repository.AppointmentCounts, error) {
	c := &repository.AppointmentCounts{}
	donors := make(map[string]bool)
	for _, a := range m.appointments {
		donors[a.DonorID] = true
		switch {
		case a.Status == model.AppointmentStatusPending:
			c.Pending++
		case a.Status == model.AppointmentStatusConfirmed && a.Date.Equal(today):
			c.ConfirmedToday++
		}
	}
	c.ActiveDonors = int64(len(donors))
	return c, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
	order         []string
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.seq++
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	}
	n.Version = 1
	cp := *n
	m.notifications[n.NotificationID] = &cp
	m.order = append(m.order, n.NotificationID)
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	if _, ok := m.notifications[n.NotificationID]; !ok {
		return gorm.ErrRecordNotFound
	}
	n.Version++
	cp := *n
	m.notifications[n.NotificationID] = &cp
	return nil
}

func (m *mockNotificationRepo) ListForRecipient(_ context.Context, donorID string, contacts []string) ([]model.Notification, error) {
	var result []model.Notification
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.notifications[m.order[i]]
		matched := n.DonorID != nil && *n.DonorID == donorID
		for _, c := range contacts {
			matched = matched || n.DonorContact == c
		}
		if matched {
			result = append(result, *n)
		}
	}
	return result, nil
}

// ── Mock TopDonorRepository ──

type mockTopDonorRepo struct {
	entries map[string]*model.TopDonor
	seq     int
}

func newMockTopDonorRepo() *mockTopDonorRepo {
	return &mockTopDonorRepo{entries: make(map[string]*model.TopDonor)}
}

func (m *mockTopDonorRepo) FindByContact(_ context.Context, email, phone string) (*model.TopDonor, error) {
	for _, d := range m.ranked() {
		if d.Matches(email, phone) {
			cp := d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopDonorRepo) Create(_ context.Context, d *model.TopDonor) error {
	m.seq++
	if d.TopDonorID == "" {
		d.TopDonorID = fmt.Sprintf("top-%03d", m.seq)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
	}
	cp := *d
	m.entries[d.TopDonorID] = &cp
	return nil
}

func (m *mockTopDonorRepo) Update(_ context.Context, d *model.TopDonor) error {
	cp := *d
	m.entries[d.TopDonorID] = &cp
	return nil
}

// ranked donation_count DESC, created_at ASC, top_donor_id ASC
func (m *mockTopDonorRepo) ranked() []model.TopDonor {
	result := make([]model.TopDonor, 0, len(m.entries))
	for _, d := range m.entries {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.DonationCount != b.DonationCount {
			return a.DonationCount > b.DonationCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.TopDonorID < b.TopDonorID
	})
	return result
}

func (m *mockTopDonorRepo) ListRanked(_ context.Context, limit int) ([]model.TopDonor, error) {
	list := m.ranked()
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (m *mockTopDonorRepo) TrimTo(_ context.Context, capacity int) (int64, error) {
	list := m.ranked()
	var n int64
	for i := capacity; i < len(list); i++ {
		delete(m.entries, list[i].TopDonorID)
		n++
	}
	return n, nil
}

func (m *mockTopDonorRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

// ── 测试装配 ──

type mockRepos struct {
	donor        *mockDonorRepo
	staff        *mockStaffRepo
	request      *mockBloodRequestRepo
	appointment  *mockAppointmentRepo
	notification *mockNotificationRepo
	topDonor     *mockTopDonorRepo
}

func newTestRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		donor:        newMockDonorRepo(),
		staff:        newMockStaffRepo(),
		request:      newMockBloodRequestRepo(),
		appointment:  newMockAppointmentRepo(),
		notification: newMockNotificationRepo(),
		topDonor:     newMockTopDonorRepo(),
	}
	repo := &repository.Repository{
		Donor:        m.donor,
		Staff:        m.staff,
		BloodRequest: m.request,
		Appointment:  m.appointment,
		Notification: m.notification,
		TopDonor:     m.topDonor,
	}
	return repo, m
}

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Timezone: "UTC"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
			PasswordMinLength:       6,
		},
		Hospital: config.HospitalConfig{
			Codes:            []string{"08230101", "08230102", "08230103", "08230104", "08230105"},
			MaxStaffAccounts: 5,
			DefaultName:      "Samtse Hospital",
		},
		Leaderboard: config.LeaderboardConfig{Capacity: 50, DefaultLimit: 5},
	}
}

// fixedNow 测试使用的固定“当前时间”
var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

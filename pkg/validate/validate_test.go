package validate

import "testing"

type sample struct {
	BloodType string `validate:"required,bloodtype"`
	Urgency   string `validate:"required,urgency"`
	Date      string `validate:"required,date"`
	Time      string `validate:"required,clock"`
	Contact   string `validate:"required,contact"`
}

func validSample() sample {
	return sample{
		BloodType: "AB-",
		Urgency:   "High",
		Date:      "2026-03-01",
		Time:      "09:30",
		Contact:   "donor@example.com",
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(validSample()); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestStruct_InvalidFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *sample)
		field  string
		tag    string
	}{
		{"未知血型", func(s *sample) { s.BloodType = "C+" }, "BloodType", "bloodtype"},
		{"紧急程度小写", func(s *sample) { s.Urgency = "high" }, "Urgency", "urgency"},
		{"日期格式错误", func(s *sample) { s.Date = "01/03/2026" }, "Date", "date"},
		{"时间格式错误", func(s *sample) { s.Time = "9am" }, "Time", "clock"},
		{"联系方式无效", func(s *sample) { s.Contact = "abc" }, "Contact", "contact"},
		{"缺少血型", func(s *sample) { s.BloodType = "" }, "BloodType", "required"},
	}

	for _, tc := range cases {
		s := validSample()
		tc.mutate(&s)
		err := Struct(s)
		if err == nil {
			t.Errorf("%s: 期望校验失败", tc.name)
			continue
		}
		field, tag := FirstFailure(err)
		if field != tc.field || tag != tc.tag {
			t.Errorf("%s: 期望 %s/%s，实际 %s/%s", tc.name, tc.field, tc.tag, field, tag)
		}
	}
}

func TestIsContact(t *testing.T) {
	valid := []string{"a@b.com", "+975 17 123456", "17123456"}
	for _, v := range valid {
		if !IsContact(v) {
			t.Errorf("%q 应为有效联系方式", v)
		}
	}
	invalid := []string{"", "a@", "12", "phone"}
	for _, v := range invalid {
		if IsContact(v) {
			t.Errorf("%q 不应为有效联系方式", v)
		}
	}
}

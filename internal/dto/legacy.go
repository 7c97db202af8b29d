package dto

// LegacyImportResult 旧数据导入统计
type LegacyImportResult struct {
	Donors        int      `json:"donors"`
	Staff         int      `json:"staff"`
	Requests      int      `json:"requests"`
	Appointments  int      `json:"appointments"`
	Notifications int      `json:"notifications"`
	TopDonors     int      `json:"top_donors"`
	Skipped       int      `json:"skipped"`
	Warnings      []string `json:"warnings,omitempty"`
}

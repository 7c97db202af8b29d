package dto

// TopDonorsRequest 排行榜查询
type TopDonorsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// TopDonorResponse 排行榜条目（公开接口，不含联系方式）
type TopDonorResponse struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	BloodType     string `json:"blood_type"`
	DonationCount int    `json:"donation_count"`
	FirstDonation string `json:"first_donation,omitempty"`
	LastDonation  string `json:"last_donation,omitempty"`
}

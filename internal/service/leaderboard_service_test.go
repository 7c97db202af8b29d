package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"lifeblood/backend/internal/repository"
)

func setupTestLeaderboard() (LeaderboardService, *repository.Repository, *mockRepos) {
	cfg := testConfig()
	repo, mocks := newTestRepository()
	return NewLeaderboardService(&cfg.Leaderboard, repo, zap.NewNop()), repo, mocks
}

func track(t *testing.T, svc LeaderboardService, repo *repository.Repository, rec DonationRecord) {
	t.Helper()
	if rec.Date.IsZero() {
		rec.Date = fixedNow
	}
	if err := svc.TrackDonation(context.Background(), repo, rec); err != nil {
		t.Fatalf("TrackDonation 失败: %v", err)
	}
}

func TestTrackDonation_MatchesByEmailOrPhone(t *testing.T) {
	svc, repo, mocks := setupTestLeaderboard()

	track(t, svc, repo, DonationRecord{Name: "Karma", Email: "karma@example.com", BloodType: "O+"})
	track(t, svc, repo, DonationRecord{Name: "Karma D", Email: "karma@example.com", Phone: "17111111"})
	track(t, svc, repo, DonationRecord{Name: "Karma", Phone: "17111111"})

	// 第 2 次按邮箱命中第一条；第 3 次仅有手机号，而第一条没有记录手机号
	if len(mocks.topDonor.entries) != 2 {
		t.Fatalf("期望 2 个条目，实际=%d", len(mocks.topDonor.entries))
	}

	top, _ := svc.TopDonors(context.Background(), 0)
	if top[0].DonationCount != 2 || top[0].Name != "Karma" || top[0].BloodType != "O+" {
		t.Errorf("第一名错误: %+v", top[0])
	}
}

func TestTrackDonation_EmptyContactsNeverMatch(t *testing.T) {
	svc, repo, mocks := setupTestLeaderboard()

	track(t, svc, repo, DonationRecord{Name: "Walk-in 1"})
	track(t, svc, repo, DonationRecord{Name: "Walk-in 2"})
	track(t, svc, repo, DonationRecord{Phone: "17222222"})
	track(t, svc, repo, DonationRecord{Phone: "17333333"})

	if len(mocks.topDonor.entries) != 4 {
		t.Errorf("空联系方式不应合并条目，期望 4，实际=%d", len(mocks.topDonor.entries))
	}

	entry, err := mocks.topDonor.FindByContact(context.Background(), "", "17222222")
	if err != nil {
		t.Fatalf("应找到手机号条目: %v", err)
	}
	if entry.Name != anonymousDonorName || entry.BloodType != unknownBloodType {
		t.Errorf("缺省姓名/血型错误: %+v", entry)
	}
}

func TestTrackDonation_CapacityAndOrdering(t *testing.T) {
	svc, repo, mocks := setupTestLeaderboard()

	for i := 0; i < 60; i++ {
		track(t, svc, repo, DonationRecord{Name: fmt.Sprintf("Donor %02d", i), Email: fmt.Sprintf("d%02d@example.com", i)})
	}
	track(t, svc, repo, DonationRecord{Email: "d10@example.com"})

	if n, _ := mocks.topDonor.Count(context.Background()); n != 50 {
		t.Errorf("排行榜最多保留 50 条，实际=%d", n)
	}

	top, err := svc.TopDonors(context.Background(), 100)
	if err != nil {
		t.Fatalf("TopDonors 失败: %v", err)
	}
	if len(top) != 50 {
		t.Fatalf("limit 超过容量时应截断为 50，实际=%d", len(top))
	}
	if top[0].Name != "Donor 10" || top[0].DonationCount != 2 || top[0].Rank != 1 {
		t.Errorf("第一名错误: %+v", top[0])
	}
	for i := 1; i < len(top); i++ {
		if top[i].DonationCount > top[i-1].DonationCount {
			t.Fatalf("排行榜未按献血次数倒序: %d > %d", top[i].DonationCount, top[i-1].DonationCount)
		}
		if top[i].Rank != i+1 {
			t.Errorf("第 %d 条 Rank=%d", i, top[i].Rank)
		}
	}
	// 次数相同时先加入者在前，超出容量的新条目被裁掉
	if top[1].Name != "Donor 00" || top[49].Name != "Donor 49" {
		t.Errorf("同次数应按加入先后排序，第二名=%s，最后一名=%s", top[1].Name, top[49].Name)
	}
	if _, err := mocks.topDonor.FindByContact(context.Background(), "d55@example.com", ""); err == nil {
		t.Error("第 56 位献血者应已被裁掉")
	}
}

func TestTopDonors_DefaultLimitAndFeatured(t *testing.T) {
	svc, repo, _ := setupTestLeaderboard()
	ctx := context.Background()

	if _, err := svc.FeaturedDonor(ctx); !errors.Is(err, ErrLeaderboardEmpty) {
		t.Errorf("空排行榜期望 ErrLeaderboardEmpty，实际: %v", err)
	}

	for i := 0; i < 8; i++ {
		track(t, svc, repo, DonationRecord{Name: fmt.Sprintf("Donor %d", i), Phone: fmt.Sprintf("1700000%d", i)})
	}

	top, _ := svc.TopDonors(ctx, 0)
	if len(top) != 5 {
		t.Errorf("默认返回 5 条，实际=%d", len(top))
	}

	featured, err := svc.FeaturedDonor(ctx)
	if err != nil {
		t.Fatalf("FeaturedDonor 失败: %v", err)
	}
	if featured.Name != "Donor 0" {
		t.Errorf("期望 Donor 0，实际=%s", featured.Name)
	}
}

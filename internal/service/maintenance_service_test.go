package service

import (
	"context"
	"raid_checker_backend/internal/model"
	"testing"
)

func TestPruneExpiredKeepsRetentionWindow(t *testing.T) {
	f := newFixture(t, testRaid("A", model.DifficultyNormal, 1600, model.PartyTypeShadow, 1, 1000))
	ctx := context.Background()
	c := f.addCharacter(f.newAccount(), "c", "버서커", 1650, 1)
	current := f.now

	// 分别是 6 周前、3 周前和本周
	for _, weeks := range []int{6, 3, 0} {
		f.now = current.AddDate(0, 0, -7*weeks)
		if _, err := f.ledger.EnsureChecklist(ctx, c.ID); err != nil {
			t.Fatalf("EnsureChecklist(%d weeks ago) error = %v", weeks, err)
		}
		party := &model.PartyCompletion{
			RaidID:      f.raid("A 노말").ID,
			WeekKey:     f.schedule.Current(),
			CompletedAt: f.now,
			Members:     []model.PartyMember{{CharacterID: c.ID}},
		}
		if err := f.parties.Create(party); err != nil {
			t.Fatalf("create party: %v", err)
		}
	}
	f.now = current

	svc := NewMaintenanceService(f.weekly, f.parties, f.schedule, 4)
	weekly, parties, err := svc.PruneExpired()
	if err != nil {
		t.Fatalf("PruneExpired() error = %v", err)
	}
	if weekly != 1 || parties != 1 {
		t.Errorf("PruneExpired() = %d weekly / %d parties, want 1 / 1", weekly, parties)
	}

	var left int64
	f.db.Model(&model.WeeklyCompletion{}).Count(&left)
	if left != 2 {
		t.Errorf("%d weekly rows left, want 2", left)
	}
	var gates int64
	f.db.Model(&model.GateCompletion{}).Count(&gates)
	if gates != 2 {
		t.Errorf("%d gate rows left, want 2", gates)
	}

	if w, p, _ := NewMaintenanceService(f.weekly, f.parties, f.schedule, 0).PruneExpired(); w != 0 || p != 0 {
		t.Error("retention 0 must disable pruning")
	}
}

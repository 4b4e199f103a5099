package service

import (
	"context"
	"errors"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/util"
	"testing"

	"gorm.io/gorm"
)

func TestAccountSummaryExcludesLowPriorityGold(t *testing.T) {
	f := newFixture(t,
		testRaid("A", model.DifficultyNormal, 1600, model.PartyTypeKazeros, 1, 1000),
		testRaid("B", model.DifficultyNormal, 1650, model.PartyTypeKazeros, 2, 2000),
	)
	ctx := context.Background()
	svc := NewAccountService(f.accounts, f.characters, f.raids, f.weekly, f.schedule)

	acct := f.newAccount()
	main := f.addCharacter(acct, "main", "버서커", 1660, 1)
	alt := f.addCharacter(acct, "alt", "바드", 1610, 7)
	for _, c := range []model.Character{main, alt} {
		if _, err := f.ledger.EnsureChecklist(ctx, c.ID); err != nil {
			t.Fatalf("EnsureChecklist() error = %v", err)
		}
		if _, err := f.ledger.CompleteGate(ctx, f.gateID(c.ID, "A 노말", 1), false); err != nil {
			t.Fatalf("CompleteGate() error = %v", err)
		}
	}

	summary, err := svc.Summary(acct)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.WeekKey != "2026-10-14" || len(summary.Characters) != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.TotalGold != 1000 {
		t.Errorf("TotalGold = %d, want 1000 (alt has priority 7)", summary.TotalGold)
	}
	byName := map[string]CharacterSummary{}
	for _, c := range summary.Characters {
		byName[c.CharacterName] = c
	}
	if m := byName["main"]; m.CompletedCount != 1 || m.TotalRaidCount != 2 || m.CompletionRate != 50 {
		t.Errorf("main summary = %+v", m)
	}
	if a := byName["alt"]; a.EarnedGold != 1000 || a.TotalRaidCount != 1 || a.CompletionRate != 100 {
		t.Errorf("alt summary = %+v", a)
	}

	rows, err := svc.RaidComparison(acct)
	if err != nil {
		t.Fatalf("RaidComparison() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("RaidComparison() rows = %d, want 2", len(rows))
	}
	for _, status := range rows[1].Characters {
		if status.CharacterName == "alt" && status.Available {
			t.Error("alt below 1650 shown as available for B")
		}
	}

	if _, err := svc.Summary(9999); !errors.Is(err, util.ErrAccountNotFound) {
		t.Errorf("Summary(unknown) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAdminPurgeAndDelete(t *testing.T) {
	f := newFixture(t, testRaid("A", model.DifficultyNormal, 1600, model.PartyTypeShadow, 1, 1000))
	ctx := context.Background()
	admin := NewAdminService(f.accounts, f.characters, f.weekly, f.parties, f.ledger, nil, f.schedule)

	acct := f.newAccount()
	c := f.addCharacter(acct, "member", "버서커", 1650, 1)
	f.ledger.EnsureChecklist(ctx, c.ID)
	f.ledger.CompleteGate(ctx, f.gateID(c.ID, "A 노말", 1), false)

	stats, err := admin.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalAccounts != 1 || stats.TotalCharacters != 1 || stats.WeeklyCompletions != 1 || stats.CompletedGates != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	accounts, _ := admin.ListAccounts(ctx)
	if len(accounts) != 1 || accounts[0].WeeklyGold != 1000 {
		t.Errorf("ListAccounts() = %+v", accounts)
	}

	purged, err := admin.PurgeCurrentWeek()
	if err != nil || purged.WeeklyCompletions != 1 {
		t.Fatalf("PurgeCurrentWeek() = %+v, %v", purged, err)
	}
	if gold, _ := f.ledger.GetTotalGold(ctx, c.ID); gold != 0 {
		t.Errorf("gold after purge = %d", gold)
	}

	master := &model.Account{Username: "master", Password: "x", Role: model.Master}
	f.accounts.Create(master)
	if err := admin.DeleteAccount(master.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("DeleteAccount(master) error = %v, want ErrPermissionDenied", err)
	}
	if err := admin.DeleteAccount(acct); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := f.characters.FindByID(c.ID); err == nil {
		t.Error("character survived account deletion")
	}
}

func TestDeleteAccountRollsBackOnFailure(t *testing.T) {
	f := newFixture(t, testRaid("A", model.DifficultyNormal, 1600, model.PartyTypeShadow, 1, 1000))
	ctx := context.Background()
	admin := NewAdminService(f.accounts, f.characters, f.weekly, f.parties, f.ledger, nil, f.schedule)

	acct := f.newAccount()
	first := f.addCharacter(acct, "first", "버서커", 1650, 1)
	second := f.addCharacter(acct, "second", "바드", 1650, 2)
	f.ledger.EnsureChecklist(ctx, first.ID)
	f.ledger.CompleteGate(ctx, f.gateID(first.ID, "A 노말", 1), false)

	// 角色删完之后，删除账号这一步失败
	failure := errors.New("account delete failed")
	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_account_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "accounts" {
			tx.AddError(failure)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if err := admin.DeleteAccount(acct); !errors.Is(err, failure) {
		t.Fatalf("DeleteAccount() error = %v, want %v", err, failure)
	}
	for _, id := range []uint{first.ID, second.ID} {
		if _, err := f.characters.FindByID(id); err != nil {
			t.Errorf("character %d lost after a failed account delete: %v", id, err)
		}
	}
	if gold, _ := f.ledger.GetTotalGold(ctx, first.ID); gold != 1000 {
		t.Errorf("ledger after failed delete = %d gold, want 1000", gold)
	}
	if _, err := f.accounts.FindByID(acct); err != nil {
		t.Errorf("account lost: %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/service/mock"
	"raid_checker_backend/internal/util"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"
)

func (f *fixture) partyService(ledger LedgerPort) *PartyService {
	return NewPartyService(f.db, f.characters, f.raids, f.parties, f.eligibility, ledger, f.schedule)
}

// roster 每个账号一个角色，先建输出再建辅助
func (f *fixture) roster(prefix string, dealers, supports int, itemLevel float64) []uint {
	var ids []uint
	for i := 0; i < dealers; i++ {
		c := f.addCharacter(f.newAccount(), fmt.Sprintf("%s-dps-%d", prefix, i), "버서커", itemLevel, 1)
		ids = append(ids, c.ID)
	}
	for i := 0; i < supports; i++ {
		c := f.addCharacter(f.newAccount(), fmt.Sprintf("%s-sup-%d", prefix, i), "홀리나이트", itemLevel, 1)
		ids = append(ids, c.ID)
	}
	return ids
}

func (f *fixture) partyCount() int64 {
	f.t.Helper()
	var count int64
	f.db.Model(&model.PartyCompletion{}).Count(&count)
	return count
}

func kazerosCatalog() []model.Raid {
	return []model.Raid{
		testRaid("K", model.DifficultyNormal, 1600, model.PartyTypeKazeros, 1, 1000, 2000),
		testRaid("K", model.DifficultyHard, 1650, model.PartyTypeKazeros, 2, 1500, 2500),
	}
}

func TestCompleteAndCancelParty(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	svc := f.partyService(f.ledger)
	normal := f.raid("K 노말")
	ids := f.roster("p", 6, 2, 1680)

	avail, err := svc.GetAvailableCharacters(ctx, normal.ID)
	if err != nil {
		t.Fatalf("GetAvailableCharacters() error = %v", err)
	}
	if avail.DealerCount != 6 || avail.SupportCount != 2 || avail.TotalAvailable != 8 {
		t.Fatalf("available = %d DPS / %d SUP / %d", avail.DealerCount, avail.SupportCount, avail.TotalAvailable)
	}
	rec, err := svc.RecommendParties(ctx, normal.ID)
	if err != nil || len(rec.Parties) != 1 {
		t.Fatalf("RecommendParties() = %v, %v; want one party", rec, err)
	}

	party, err := svc.CompleteParty(ctx, normal.ID, ids, false)
	if err != nil {
		t.Fatalf("CompleteParty() error = %v", err)
	}
	if len(party.Members) != 8 || party.WeekKey != "2026-10-14" {
		t.Errorf("party = %d members in week %s", len(party.Members), party.WeekKey)
	}
	for _, id := range ids {
		if gold, _ := f.ledger.GetTotalGold(ctx, id); gold != 3000 {
			t.Errorf("character %d earned %d, want 3000", id, gold)
		}
	}

	// 整个副本组本周都不可用，困难难度也一样
	for _, name := range []string{"K 노말", "K 하드"} {
		avail, _ = svc.GetAvailableCharacters(ctx, f.raid(name).ID)
		if avail.TotalAvailable != 0 {
			t.Errorf("%s still offers %d characters", name, avail.TotalAvailable)
		}
	}
	listed, _ := svc.ListCompletedParties(ctx, normal.ID)
	if len(listed) != 1 || len(listed[0].Characters) != 8 {
		t.Errorf("ListCompletedParties() = %+v", listed)
	}
	groups, _ := svc.ListAllCompletedParties(ctx)
	if len(groups) != 1 || groups[0].RaidGroup != "K" || groups[0].Difficulty != model.DifficultyNormal {
		t.Errorf("ListAllCompletedParties() = %+v", groups)
	}

	if err := svc.CancelPartyCompletion(ctx, party.ID); err != nil {
		t.Fatalf("CancelPartyCompletion() error = %v", err)
	}
	for _, id := range ids {
		if gold, _ := f.ledger.GetTotalGold(ctx, id); gold != 0 {
			t.Errorf("character %d kept %d gold after cancel", id, gold)
		}
	}
	avail, _ = svc.GetAvailableCharacters(ctx, normal.ID)
	if avail.TotalAvailable != 8 {
		t.Errorf("after cancel %d available, want 8", avail.TotalAvailable)
	}
	if f.partyCount() != 0 {
		t.Error("party completion row survived cancellation")
	}
	if err := svc.CancelPartyCompletion(ctx, party.ID); !errors.Is(err, util.ErrPartyCompletionNotFound) {
		t.Errorf("second cancel error = %v, want ErrPartyCompletionNotFound", err)
	}
}

func TestCancelPartyPromotesCappedGate(t *testing.T) {
	f := newFixture(t,
		testRaid("S", model.DifficultyNormal, 1600, model.PartyTypeShadow, 1, 1000),
		testRaid("A", model.DifficultyNormal, 1600, model.PartyTypeKazeros, 2, 1000),
		testRaid("B", model.DifficultyNormal, 1600, model.PartyTypeKazeros, 3, 1000),
		testRaid("C", model.DifficultyNormal, 1600, model.PartyTypeKazeros, 4, 1000),
	)
	ctx := context.Background()
	svc := f.partyService(f.ledger)
	ids := f.roster("s", 3, 1, 1680)
	x := ids[0]
	if _, err := f.ledger.EnsureChecklist(ctx, x); err != nil {
		t.Fatalf("EnsureChecklist() error = %v", err)
	}

	party, err := svc.CompleteParty(ctx, f.raid("S 노말").ID, ids, false)
	if err != nil {
		t.Fatalf("CompleteParty() error = %v", err)
	}
	for _, name := range []string{"A 노말", "B 노말", "C 노말"} {
		if _, err := f.ledger.CompleteGate(ctx, f.gateID(x, name, 1), false); err != nil {
			t.Fatalf("CompleteGate(%s) error = %v", name, err)
		}
	}
	cGate := f.gateID(x, "C 노말", 1)
	if g := f.gate(cGate); g.EarnedGold != 0 {
		t.Fatalf("C earned %d before cancel, want 0", g.EarnedGold)
	}

	if err := svc.CancelPartyCompletion(ctx, party.ID); err != nil {
		t.Fatalf("CancelPartyCompletion() error = %v", err)
	}
	if g := f.gate(cGate); g.EarnedGold != 1000 {
		t.Errorf("C earned %d after cancel, want 1000", g.EarnedGold)
	}
	sGate := f.gate(f.gateID(x, "S 노말", 1))
	if sGate.Completed || sGate.PartyCompletionID != nil {
		t.Errorf("party gate not reverted: %+v", sGate)
	}
	if gold, _ := f.ledger.GetTotalGold(ctx, x); gold != 3000 {
		t.Errorf("total = %d, want 3000", gold)
	}
}

func TestCompletePartyIsAllOrNothing(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	svc := f.partyService(f.ledger)
	ids := f.roster("p", 6, 2, 1680)
	y := ids[len(ids)-1]

	// y 已经在困难难度通关第 1 关，普通难度不能再完成
	f.ledger.EnsureChecklist(ctx, y)
	if _, err := f.ledger.CompleteGate(ctx, f.gateID(y, "K 하드", 1), false); err != nil {
		t.Fatalf("CompleteGate() error = %v", err)
	}

	_, err := svc.CompleteParty(ctx, f.raid("K 노말").ID, ids, true)
	if !errors.Is(err, util.ErrCrossDifficultyConflict) {
		t.Fatalf("CompleteParty() error = %v, want ErrCrossDifficultyConflict", err)
	}
	if f.partyCount() != 0 {
		t.Error("party row written despite the failure")
	}
	for _, id := range ids[:len(ids)-1] {
		if gold, _ := f.ledger.GetTotalGold(ctx, id); gold != 0 {
			t.Errorf("character %d credited %d by a failed party", id, gold)
		}
		list, _ := f.ledger.GetChecklist(ctx, id)
		if len(list) != 0 {
			t.Errorf("character %d has %d ledger rows from a failed party", id, len(list))
		}
	}
}

func TestCompletePartyValidation(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	svc := f.partyService(f.ledger)
	raidID := f.raid("K 노말").ID

	shared := f.newAccount()
	a := f.addCharacter(shared, "alt-a", "버서커", 1680, 1)
	b := f.addCharacter(shared, "alt-b", "바드", 1680, 2)
	low := f.addCharacter(f.newAccount(), "low", "버서커", 1500, 1)
	ready := f.addCharacter(f.newAccount(), "ready", "홀리나이트", 1680, 1)
	crowd := f.roster("crowd", 10, 2, 1680)

	tests := []struct {
		name    string
		raidID  uint
		ids     []uint
		wantErr error
	}{
		{"empty", raidID, nil, util.ErrEmptyParty},
		{"same account", raidID, []uint{a.ID, b.ID}, util.ErrDuplicateAccount},
		{"same character twice", raidID, []uint{a.ID, a.ID}, util.ErrDuplicateCharacter},
		{"single member", raidID, []uint{ready.ID}, util.ErrInvalidPartySize},
		{"larger than the raid", raidID, crowd, util.ErrInvalidPartySize},
		{"under item level", raidID, []uint{low.ID, ready.ID}, util.ErrNotEligible},
		{"unknown character", raidID, []uint{a.ID, 9999}, util.ErrCharacterNotFound},
		{"unknown raid", 9999, []uint{a.ID}, util.ErrRaidNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CompleteParty(ctx, tt.raidID, tt.ids, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("CompleteParty() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if f.partyCount() != 0 {
		t.Error("a rejected party was recorded")
	}
}

func TestCreateManualParty(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	svc := f.partyService(f.ledger)
	ids := f.roster("m", 3, 1, 1680)

	party, err := svc.CreateManualParty(ctx, f.raid("K 노말").ID, ids)
	if err != nil {
		t.Fatalf("CreateManualParty() error = %v", err)
	}
	if len(party.Dealers) != 3 || len(party.Supports) != 1 || party.Full {
		t.Errorf("manual party = %d DPS / %d SUP full=%v", len(party.Dealers), len(party.Supports), party.Full)
	}
	if party.Quota.Size() != 8 {
		t.Errorf("quota size = %d, want 8", party.Quota.Size())
	}

	shared := f.newAccount()
	a := f.addCharacter(shared, "main", "버서커", 1680, 1)
	b := f.addCharacter(shared, "alt", "도화가", 1680, 2)
	if _, err := svc.CreateManualParty(ctx, 0, []uint{a.ID, b.ID}); !errors.Is(err, util.ErrDuplicateAccount) {
		t.Errorf("shared account error = %v, want ErrDuplicateAccount", err)
	}

	crowd := f.roster("crowd", 8, 1, 1680)
	if _, err := svc.CreateManualParty(ctx, f.raid("K 노말").ID, crowd); !errors.Is(err, util.ErrInvalidPartySize) {
		t.Errorf("nine-member manual party error = %v, want ErrInvalidPartySize", err)
	}
	if _, err := svc.CreateManualParty(ctx, 0, crowd); err != nil {
		t.Errorf("manual party without a raid error = %v", err)
	}
}

func TestConcurrentOverlappingParties(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	svc := f.partyService(f.ledger)
	raidID := f.raid("K 노말").ID
	ids := f.roster("race", 6, 2, 1680)
	// ids[3] 同时出现在两支队伍里
	first := ids[:4]
	second := ids[3:]

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, members := range [][]uint{first, second} {
		wg.Add(1)
		go func(i int, members []uint) {
			defer wg.Done()
			_, errs[i] = svc.CompleteParty(ctx, raidID, members, false)
		}(i, members)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, util.ErrAlreadyCompleted):
			t.Errorf("losing party error = %v, want ErrAlreadyCompleted", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d parties succeeded, want exactly 1 (errors %v)", succeeded, errs)
	}
	if f.partyCount() != 1 {
		t.Errorf("party rows = %d, want 1", f.partyCount())
	}

	winner, loser := first, second
	if errs[0] != nil {
		winner, loser = second, first
	}
	for _, id := range winner {
		if gold, _ := f.ledger.GetTotalGold(ctx, id); gold != 3000 {
			t.Errorf("winner %d earned %d, want 3000", id, gold)
		}
	}
	for _, id := range loser {
		if id == ids[3] {
			continue
		}
		if gold, _ := f.ledger.GetTotalGold(ctx, id); gold != 0 {
			t.Errorf("losing member %d credited %d", id, gold)
		}
	}
}

func TestCompletePartyLocksInIDOrder(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	ledger := mock.NewMockLedgerPort(ctrl)
	svc := f.partyService(ledger)
	ids := f.roster("g", 2, 1, 1680)
	raidID := f.raid("K 노말").ID
	week := model.WeekKey("2026-10-14")

	var calls []any
	for _, id := range ids {
		calls = append(calls, ledger.EXPECT().CreditRaid(gomock.Any(), id, gomock.Any(), week, true, gomock.Any()).Return(nil))
	}
	for _, id := range ids {
		calls = append(calls, ledger.EXPECT().Replay(gomock.Any(), id, week).Return(nil))
	}
	gomock.InOrder(calls...)

	requested := []uint{ids[2], ids[0], ids[1]}
	party, err := svc.CompleteParty(ctx, raidID, requested, true)
	if err != nil {
		t.Fatalf("CompleteParty() error = %v", err)
	}
	for i, m := range party.Members {
		if m.CharacterID != requested[i] || m.Position != i {
			t.Errorf("member %d = character %d at %d, want %d", i, m.CharacterID, m.Position, requested[i])
		}
	}
}

func TestCompletePartyRollsBackOnLedgerFailure(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	ledger := mock.NewMockLedgerPort(ctrl)
	svc := f.partyService(ledger)
	ids := f.roster("r", 2, 0, 1680)

	gomock.InOrder(
		ledger.EXPECT().CreditRaid(gomock.Any(), ids[0], gomock.Any(), gomock.Any(), false, gomock.Any()).Return(nil),
		ledger.EXPECT().CreditRaid(gomock.Any(), ids[1], gomock.Any(), gomock.Any(), false, gomock.Any()).Return(util.ErrAlreadyCompleted),
	)

	_, err := svc.CompleteParty(ctx, f.raid("K 노말").ID, ids, false)
	if !errors.Is(err, util.ErrAlreadyCompleted) {
		t.Fatalf("CompleteParty() error = %v, want ErrAlreadyCompleted", err)
	}
	if f.partyCount() != 0 {
		t.Error("party row committed after a ledger failure")
	}
}

func TestCancelPartyReplaysEveryMember(t *testing.T) {
	f := newFixture(t, kazerosCatalog()...)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	ledger := mock.NewMockLedgerPort(ctrl)
	svc := f.partyService(ledger)
	ids := f.roster("c", 2, 0, 1680)

	party := &model.PartyCompletion{
		RaidID:      f.raid("K 노말").ID,
		WeekKey:     "2026-10-14",
		CompletedAt: f.now,
		Members:     []model.PartyMember{{CharacterID: ids[0], Position: 0}, {CharacterID: ids[1], Position: 1}},
	}
	if err := f.parties.Create(party); err != nil {
		t.Fatalf("create party: %v", err)
	}

	ledger.EXPECT().DebitParty(gomock.Any(), party.ID).Return(ids, nil)
	ledger.EXPECT().Replay(gomock.Any(), ids[0], model.WeekKey("2026-10-14")).Return(nil)
	ledger.EXPECT().Replay(gomock.Any(), ids[1], model.WeekKey("2026-10-14")).Return(nil)

	if err := svc.CancelPartyCompletion(ctx, party.ID); err != nil {
		t.Fatalf("CancelPartyCompletion() error = %v", err)
	}
	if f.partyCount() != 0 {
		t.Error("party row not deleted")
	}
}

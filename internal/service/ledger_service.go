package service

import (
	"context"
	"errors"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"
	"raid_checker_backend/pkg/logger"
	"raid_checker_backend/pkg/monitoring"
	"raid_checker_backend/pkg/tracing"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService 管理每个角色的每周关卡清单和金币
type LedgerService struct {
	DB          *gorm.DB
	Characters  *repository.CharacterRepository
	Raids       *repository.RaidRepository
	Weekly      *repository.WeeklyCompletionRepository
	Eligibility *EligibilityResolver
	Schedule    *ResetSchedule
	GroupCap    int
}

func NewLedgerService(
	db *gorm.DB,
	characters *repository.CharacterRepository,
	raids *repository.RaidRepository,
	weekly *repository.WeeklyCompletionRepository,
	eligibility *EligibilityResolver,
	schedule *ResetSchedule,
	groupCap int,
) *LedgerService {
	return &LedgerService{
		DB:          db,
		Characters:  characters,
		Raids:       raids,
		Weekly:      weekly,
		Eligibility: eligibility,
		Schedule:    schedule,
		GroupCap:    groupCap,
	}
}

var _ LedgerPort = (*LedgerService)(nil)

func (s *LedgerService) findCharacter(id uint) (*model.Character, error) {
	character, err := s.Characters.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCharacterNotFound
	}
	return character, err
}

func (s *LedgerService) lockCharacter(tx *gorm.DB, id uint) error {
	locked, err := s.Characters.WithTx(tx).LockByIDs([]uint{id})
	if err != nil {
		return err
	}
	if len(locked) == 0 {
		return util.ErrCharacterNotFound
	}
	return nil
}

func newWeeklyCompletion(characterID uint, raid *model.Raid, week model.WeekKey) *model.WeeklyCompletion {
	wc := &model.WeeklyCompletion{
		CharacterID: characterID,
		RaidID:      raid.ID,
		WeekKey:     week,
	}
	for _, gate := range raid.Gates {
		wc.GateCompletions = append(wc.GateCompletions, model.GateCompletion{
			RaidGateID: gate.ID,
			GateNumber: gate.GateNumber,
		})
	}
	return wc
}

// EnsureChecklist 为角色装等够的每个副本创建本周记录，已存在的不动
func (s *LedgerService) EnsureChecklist(ctx context.Context, characterID uint) ([]model.WeeklyCompletion, error) {
	ctx, span := tracing.Tracer.Start(ctx, "LedgerService.EnsureChecklist")
	defer span.End()
	span.SetAttributes(attribute.Int64("character.id", int64(characterID)))

	character, err := s.findCharacter(characterID)
	if err != nil {
		return nil, err
	}
	raids, err := s.Raids.FindAvailable(character.ItemLevel)
	if err != nil {
		return nil, err
	}
	week := s.Schedule.Current()

	created := 0
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockCharacter(tx, characterID); err != nil {
			return err
		}
		weekly := s.Weekly.WithTx(tx)
		for i := range raids {
			exists, err := weekly.Exists(characterID, raids[i].ID, week)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := weekly.Create(newWeeklyCompletion(characterID, &raids[i], week)); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created > 0 {
		logger.Log.Info("Weekly checklist created",
			zap.Uint("character_id", characterID),
			zap.String("week_key", string(week)),
			zap.Int("raids", created))
	}
	return s.Weekly.FindByCharacterWeek(characterID, week)
}

// GetChecklist 只读取本周记录，不创建
func (s *LedgerService) GetChecklist(ctx context.Context, characterID uint) ([]model.WeeklyCompletion, error) {
	if _, err := s.findCharacter(characterID); err != nil {
		return nil, err
	}
	return s.Weekly.WithTx(s.DB.WithContext(ctx)).FindByCharacterWeek(characterID, s.Schedule.Current())
}

// loadGate 加载关卡和周记录，锁住角色后重新读取关卡，保证后续校验看到已提交的状态
func (s *LedgerService) loadGate(tx *gorm.DB, gateCompletionID uint) (*model.GateCompletion, *model.WeeklyCompletion, error) {
	weekly := s.Weekly.WithTx(tx)
	gate, err := weekly.FindGateCompletion(gateCompletionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, util.ErrGateCompletionNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	wc, err := weekly.FindByID(gate.WeeklyCompletionID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.lockCharacter(tx, wc.CharacterID); err != nil {
		return nil, nil, err
	}
	gate, err = weekly.FindGateCompletion(gateCompletionID)
	if err != nil {
		return nil, nil, err
	}
	if wc.WeekKey != s.Schedule.Current() {
		return nil, nil, util.ErrStaleWeek
	}
	return gate, wc, nil
}

// CompleteGate 将关卡标记为完成，并按副本组上限计入金币
func (s *LedgerService) CompleteGate(ctx context.Context, gateCompletionID uint, extraReward bool) (*model.GateCompletion, error) {
	ctx, span := tracing.Tracer.Start(ctx, "LedgerService.CompleteGate")
	defer span.End()
	span.SetAttributes(attribute.Int64("gate_completion.id", int64(gateCompletionID)))

	var result *model.GateCompletion
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		gate, wc, err := s.loadGate(tx, gateCompletionID)
		if err != nil {
			return err
		}
		if gate.Completed {
			return util.ErrAlreadyCompleted
		}
		if err := s.Eligibility.WithTx(tx).CheckGate(wc.CharacterID, &wc.Raid, gate.GateNumber, wc.WeekKey); err != nil {
			return err
		}

		weekly := s.Weekly.WithTx(tx)
		seq, err := weekly.NextSeq(wc.CharacterID, wc.WeekKey)
		if err != nil {
			return err
		}
		markCompleted(gate, extraReward, seq, nil)
		if err := weekly.SaveGate(gate); err != nil {
			return err
		}
		if err := s.Replay(tx, wc.CharacterID, wc.WeekKey); err != nil {
			return err
		}

		result, err = weekly.FindGateCompletion(gateCompletionID)
		return err
	})
	if err != nil {
		monitoring.GateCompletions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	outcome := "credited"
	if result.EarnedGold == 0 {
		outcome = "capped"
	}
	monitoring.GateCompletions.WithLabelValues(outcome).Inc()
	logger.Log.Info("Gate completed",
		zap.Uint("gate_completion_id", gateCompletionID),
		zap.Bool("extra_reward", extraReward),
		zap.Int("earned_gold", result.EarnedGold))
	return result, nil
}

// UncompleteGate 取消关卡完成并重放本周日志，之前因上限为 0 的关卡可以补位
func (s *LedgerService) UncompleteGate(ctx context.Context, gateCompletionID uint) (*model.GateCompletion, error) {
	ctx, span := tracing.Tracer.Start(ctx, "LedgerService.UncompleteGate")
	defer span.End()
	span.SetAttributes(attribute.Int64("gate_completion.id", int64(gateCompletionID)))

	var result *model.GateCompletion
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		gate, wc, err := s.loadGate(tx, gateCompletionID)
		if err != nil {
			return err
		}
		if !gate.Completed {
			return util.ErrNotCompleted
		}

		weekly := s.Weekly.WithTx(tx)
		markPending(gate)
		if err := weekly.SaveGate(gate); err != nil {
			return err
		}
		if err := s.Replay(tx, wc.CharacterID, wc.WeekKey); err != nil {
			return err
		}

		result, err = weekly.FindGateCompletion(gateCompletionID)
		return err
	})
	if err != nil {
		monitoring.GateCompletions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	monitoring.GateCompletions.WithLabelValues("uncompleted").Inc()
	logger.Log.Info("Gate uncompleted", zap.Uint("gate_completion_id", gateCompletionID))
	return result, nil
}

// GetTotalGold 角色本周已获得的金币
func (s *LedgerService) GetTotalGold(ctx context.Context, characterID uint) (int, error) {
	if _, err := s.findCharacter(characterID); err != nil {
		return 0, err
	}
	return s.Weekly.WithTx(s.DB.WithContext(ctx)).SumEarnedGold(characterID, s.Schedule.Current())
}

func (s *LedgerService) GetResetInfo() ResetInfo {
	return s.Schedule.Info()
}

func markCompleted(gate *model.GateCompletion, extraReward bool, seq int64, partyCompletionID *uint) {
	now := time.Now()
	gate.Completed = true
	gate.ExtraReward = extraReward
	gate.CompletionSeq = seq
	gate.CompletedAt = &now
	gate.PartyCompletionID = partyCompletionID
}

func markPending(gate *model.GateCompletion) {
	gate.Completed = false
	gate.ExtraReward = false
	gate.EarnedGold = 0
	gate.CompletionSeq = 0
	gate.CompletedAt = nil
	gate.PartyCompletionID = nil
}

// Replay 根据完成日志重算角色本周每个关卡和副本的金币，只写回有变化的行
func (s *LedgerService) Replay(tx *gorm.DB, characterID uint, week model.WeekKey) error {
	weekly := s.Weekly.WithTx(tx)
	list, err := weekly.FindByCharacterWeek(characterID, week)
	if err != nil {
		return err
	}

	var entries []CreditEntry
	for _, wc := range list {
		for _, g := range wc.GateCompletions {
			if !g.Completed {
				continue
			}
			entries = append(entries, CreditEntry{
				GateCompletionID: g.ID,
				RaidGroup:        wc.Raid.RaidGroup,
				Seq:              g.CompletionSeq,
				Payout:           g.RaidGate.Payout(g.ExtraReward),
			})
		}
	}
	earned := ReplayCredits(entries, s.GroupCap)

	for i := range list {
		wc := &list[i]
		for j := range wc.GateCompletions {
			g := &wc.GateCompletions[j]
			want := 0
			if g.Completed {
				want = earned[g.ID]
			}
			if g.EarnedGold == want {
				continue
			}
			g.EarnedGold = want
			if err := weekly.SaveGate(g); err != nil {
				return err
			}
		}

		completed, gold := wc.Completed, wc.EarnedGold
		wc.Recompute()
		if wc.Completed != completed || wc.EarnedGold != gold {
			if err := weekly.SaveWeekly(wc); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreditRaid 为队员完成副本所有未完成关卡，没有周记录时先创建
func (s *LedgerService) CreditRaid(tx *gorm.DB, characterID uint, raid *model.Raid, week model.WeekKey, extraReward bool, partyCompletionID uint) error {
	weekly := s.Weekly.WithTx(tx)
	wc, err := weekly.FindByCharacterRaidWeek(characterID, raid.ID, week)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := weekly.Create(newWeeklyCompletion(characterID, raid, week)); err != nil {
			return err
		}
		wc, err = weekly.FindByCharacterRaidWeek(characterID, raid.ID, week)
	}
	if err != nil {
		return err
	}

	var pending []*model.GateCompletion
	for i := range wc.GateCompletions {
		if !wc.GateCompletions[i].Completed {
			pending = append(pending, &wc.GateCompletions[i])
		}
	}
	if len(pending) == 0 {
		return util.ErrAlreadyCompleted
	}

	seq, err := weekly.NextSeq(characterID, week)
	if err != nil {
		return err
	}
	eligibility := s.Eligibility.WithTx(tx)
	partyID := partyCompletionID
	for _, gate := range pending {
		if err := eligibility.CheckGate(characterID, raid, gate.GateNumber, week); err != nil {
			return err
		}
		markCompleted(gate, extraReward, seq, &partyID)
		seq++
		if err := weekly.SaveGate(gate); err != nil {
			return err
		}
	}
	return nil
}

// DebitParty 撤销带有该组队标记的关卡
func (s *LedgerService) DebitParty(tx *gorm.DB, partyCompletionID uint) ([]uint, error) {
	weekly := s.Weekly.WithTx(tx)
	gates, err := weekly.FindGatesByParty(partyCompletionID)
	if err != nil {
		return nil, err
	}

	owners := make(map[uint]uint)
	for i := range gates {
		markPending(&gates[i])
		if err := weekly.SaveGate(&gates[i]); err != nil {
			return nil, err
		}
		if _, ok := owners[gates[i].WeeklyCompletionID]; ok {
			continue
		}
		wc, err := weekly.FindByID(gates[i].WeeklyCompletionID)
		if err != nil {
			return nil, err
		}
		owners[wc.ID] = wc.CharacterID
	}

	seen := make(map[uint]struct{}, len(owners))
	characterIDs := make([]uint, 0, len(owners))
	for _, id := range owners {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		characterIDs = append(characterIDs, id)
	}
	sort.Slice(characterIDs, func(i, j int) bool { return characterIDs[i] < characterIDs[j] })
	return characterIDs, nil
}

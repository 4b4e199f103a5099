package service

import (
	"context"
	"errors"
	"fmt"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"
	"raid_checker_backend/pkg/logger"
	"raid_checker_backend/pkg/monitoring"
	"raid_checker_backend/pkg/tracing"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPartySize = 2

// PartyService 用本周还能参与副本的角色组队，并通过账本记录组队通关
type PartyService struct {
	DB          *gorm.DB
	Characters  *repository.CharacterRepository
	Raids       *repository.RaidRepository
	Parties     *repository.PartyCompletionRepository
	Eligibility *EligibilityResolver
	Ledger      LedgerPort
	Schedule    *ResetSchedule
}

func NewPartyService(
	db *gorm.DB,
	characters *repository.CharacterRepository,
	raids *repository.RaidRepository,
	parties *repository.PartyCompletionRepository,
	eligibility *EligibilityResolver,
	ledger LedgerPort,
	schedule *ResetSchedule,
) *PartyService {
	return &PartyService{
		DB:          db,
		Characters:  characters,
		Raids:       raids,
		Parties:     parties,
		Eligibility: eligibility,
		Ledger:      ledger,
		Schedule:    schedule,
	}
}

type AvailableCharacters struct {
	RaidID         uint              `json:"raidId"`
	RaidName       string            `json:"raidName"`
	Dealers        []model.Character `json:"dealers"`
	Supports       []model.Character `json:"supports"`
	DealerCount    int               `json:"dealerCount"`
	SupportCount   int               `json:"supportCount"`
	TotalAvailable int               `json:"totalAvailable"`
}

type Recommendation struct {
	RaidID     uint             `json:"raidId"`
	RaidName   string           `json:"raidName"`
	RaidGroup  string           `json:"raidGroup"`
	Difficulty model.Difficulty `json:"difficulty"`
	PartyType  model.PartyType  `json:"partyType"`
	Quota      model.Quota      `json:"quota"`
	Parties    []Party          `json:"parties"`
	Dealers    int              `json:"availableDealers"`
	Supports   int              `json:"availableSupports"`
}

type CompletedParty struct {
	ID          uint              `json:"id"`
	RaidID      uint              `json:"raidId"`
	RaidName    string            `json:"raidName"`
	RaidGroup   string            `json:"raidGroup"`
	Difficulty  model.Difficulty  `json:"difficulty"`
	WeekKey     model.WeekKey     `json:"weekKey"`
	ExtraReward bool              `json:"extraReward"`
	CompletedAt time.Time         `json:"completedAt"`
	Characters  []model.Character `json:"characters"`
}

type CompletedPartyGroup struct {
	RaidGroup  string           `json:"raidGroup"`
	Difficulty model.Difficulty `json:"difficulty"`
	Parties    []CompletedParty `json:"parties"`
}

func (s *PartyService) findRaid(id uint) (*model.Raid, error) {
	raid, err := s.Raids.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRaidNotFound
	}
	return raid, err
}

// sortForDisplay 金币优先级高的在前，其次按装等
func sortForDisplay(characters []model.Character) {
	sort.SliceStable(characters, func(i, j int) bool {
		a, b := characters[i], characters[j]
		if a.GoldPriority != b.GoldPriority {
			return a.GoldPriority < b.GoldPriority
		}
		if a.ItemLevel != b.ItemLevel {
			return a.ItemLevel > b.ItemLevel
		}
		return a.ID < b.ID
	})
}

func (s *PartyService) available(raid *model.Raid) (*AvailableCharacters, error) {
	candidates, err := s.Characters.FindWithMinItemLevel(raid.RequiredItemLevel)
	if err != nil {
		return nil, err
	}
	blocked, err := s.Eligibility.BlockedCharacters(raid, s.Schedule.Current())
	if err != nil {
		return nil, err
	}

	result := &AvailableCharacters{
		RaidID:   raid.ID,
		RaidName: raid.Name,
		Dealers:  []model.Character{},
		Supports: []model.Character{},
	}
	for _, c := range candidates {
		if _, ok := blocked[c.ID]; ok {
			continue
		}
		if c.IsSupport() {
			result.Supports = append(result.Supports, c)
		} else {
			result.Dealers = append(result.Dealers, c)
		}
	}
	sortForDisplay(result.Dealers)
	sortForDisplay(result.Supports)
	result.DealerCount = len(result.Dealers)
	result.SupportCount = len(result.Supports)
	result.TotalAvailable = result.DealerCount + result.SupportCount
	return result, nil
}

// GetAvailableCharacters 本周还能参与该副本的角色，按输出/辅助分开
func (s *PartyService) GetAvailableCharacters(ctx context.Context, raidID uint) (*AvailableCharacters, error) {
	_, span := tracing.Tracer.Start(ctx, "PartyService.GetAvailableCharacters")
	defer span.End()

	raid, err := s.findRaid(raidID)
	if err != nil {
		return nil, err
	}
	return s.available(raid)
}

func (s *PartyService) recommend(raid *model.Raid) (*Recommendation, error) {
	quota, ok := model.QuotaFor(raid.PartyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownPartyType, raid.PartyType)
	}
	pool, err := s.available(raid)
	if err != nil {
		return nil, err
	}
	parties := RecommendParties(pool.Dealers, pool.Supports, quota)
	monitoring.PartyRecommendations.Observe(float64(len(parties)))

	return &Recommendation{
		RaidID:     raid.ID,
		RaidName:   raid.Name,
		RaidGroup:  raid.RaidGroup,
		Difficulty: raid.Difficulty,
		PartyType:  raid.PartyType,
		Quota:      quota,
		Parties:    parties,
		Dealers:    pool.DealerCount,
		Supports:   pool.SupportCount,
	}, nil
}

// RecommendParties 推荐互不重叠的满员队伍，凑不满一队时返回空列表
func (s *PartyService) RecommendParties(ctx context.Context, raidID uint) (*Recommendation, error) {
	_, span := tracing.Tracer.Start(ctx, "PartyService.RecommendParties")
	defer span.End()
	span.SetAttributes(attribute.Int64("raid.id", int64(raidID)))

	raid, err := s.findRaid(raidID)
	if err != nil {
		return nil, err
	}
	rec, err := s.recommend(raid)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("parties", len(rec.Parties)))
	return rec, nil
}

// RecommendAll 对所有副本推荐，只保留有队伍的副本
func (s *PartyService) RecommendAll(ctx context.Context) ([]Recommendation, error) {
	_, span := tracing.Tracer.Start(ctx, "PartyService.RecommendAll")
	defer span.End()

	raids, err := s.Raids.FindAll()
	if err != nil {
		return nil, err
	}
	recs := []Recommendation{}
	for i := range raids {
		rec, err := s.recommend(&raids[i])
		if err != nil {
			return nil, err
		}
		if len(rec.Parties) > 0 {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

// resolveMembers 按请求顺序加载角色，同一角色或账号不能出现两次
func (s *PartyService) resolveMembers(characterIDs []uint) ([]model.Character, error) {
	if len(characterIDs) == 0 {
		return nil, util.ErrEmptyParty
	}
	seen := make(map[uint]struct{}, len(characterIDs))
	for _, id := range characterIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", util.ErrDuplicateCharacter, id)
		}
		seen[id] = struct{}{}
	}

	found, err := s.Characters.FindByIDs(characterIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Character, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	members := make([]model.Character, 0, len(characterIDs))
	owners := make(map[uint]string, len(characterIDs))
	for _, id := range characterIDs {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", util.ErrCharacterNotFound, id)
		}
		if other, taken := owners[c.AccountID]; taken {
			return nil, fmt.Errorf("%w: %s and %s", util.ErrDuplicateAccount, other, c.Name)
		}
		owners[c.AccountID] = c.Name
		members = append(members, c)
	}
	return members, nil
}

// CreateManualParty 校验手动组的队伍并按职责分组，允许不满员，但不能超过副本人数
func (s *PartyService) CreateManualParty(ctx context.Context, raidID uint, characterIDs []uint) (*Party, error) {
	_, span := tracing.Tracer.Start(ctx, "PartyService.CreateManualParty")
	defer span.End()

	var quota model.Quota
	if raidID != 0 {
		raid, err := s.findRaid(raidID)
		if err != nil {
			return nil, err
		}
		quota, _ = model.QuotaFor(raid.PartyType)
		if quota.Size() > 0 && len(characterIDs) > quota.Size() {
			return nil, fmt.Errorf("%w: %d members for a %d-person raid", util.ErrInvalidPartySize, len(characterIDs), quota.Size())
		}
	}

	members, err := s.resolveMembers(characterIDs)
	if err != nil {
		return nil, err
	}
	party := newParty(members, quota)
	return &party, nil
}

// checkPartySize 已完成的队伍至少两人，且不能超过副本人数
func checkPartySize(n int, quota model.Quota) error {
	if n == 0 {
		return util.ErrEmptyParty
	}
	if n < minPartySize || n > quota.Size() {
		return fmt.Errorf("%w: %d members, want %d..%d", util.ErrInvalidPartySize, n, minPartySize, quota.Size())
	}
	return nil
}

func ascending(ids []uint) []uint {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// CompleteParty 在一个事务里记录组队通关并为每个队员完成副本，写入前按 ID 升序加锁
func (s *PartyService) CompleteParty(ctx context.Context, raidID uint, characterIDs []uint, extraReward bool) (*model.PartyCompletion, error) {
	ctx, span := tracing.Tracer.Start(ctx, "PartyService.CompleteParty")
	defer span.End()
	span.SetAttributes(attribute.Int64("raid.id", int64(raidID)), attribute.Int("members", len(characterIDs)))

	raid, err := s.findRaid(raidID)
	if err != nil {
		return nil, err
	}
	quota, ok := model.QuotaFor(raid.PartyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownPartyType, raid.PartyType)
	}
	if err := checkPartySize(len(characterIDs), quota); err != nil {
		return nil, err
	}
	members, err := s.resolveMembers(characterIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(members))
	for i := range members {
		if err := s.Eligibility.CheckItemLevel(&members[i], raid); err != nil {
			return nil, err
		}
		names[members[i].ID] = members[i].Name
	}

	week := s.Schedule.Current()
	var partyID uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := ascending(characterIDs)
		locked, err := s.Characters.WithTx(tx).LockByIDs(order)
		if err != nil {
			return err
		}
		if len(locked) != len(order) {
			return util.ErrCharacterNotFound
		}

		party := &model.PartyCompletion{
			RaidID:      raid.ID,
			WeekKey:     week,
			ExtraReward: extraReward,
			CompletedAt: time.Now(),
		}
		for i, id := range characterIDs {
			party.Members = append(party.Members, model.PartyMember{CharacterID: id, Position: i})
		}
		if err := s.Parties.WithTx(tx).Create(party); err != nil {
			return err
		}

		for _, id := range order {
			if err := s.Ledger.CreditRaid(tx, id, raid, week, extraReward, party.ID); err != nil {
				return fmt.Errorf("%s: %w", names[id], err)
			}
		}
		for _, id := range order {
			if err := s.Ledger.Replay(tx, id, week); err != nil {
				return err
			}
		}
		partyID = party.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.PartyCompletions.WithLabelValues("completed").Inc()
	logger.Log.Info("Party completed",
		zap.Uint("party_completion_id", partyID),
		zap.Uint("raid_id", raid.ID),
		zap.Uints("character_ids", characterIDs),
		zap.Bool("extra_reward", extraReward))
	return s.Parties.FindByID(partyID)
}

// CancelPartyCompletion 在一个事务里撤销组队完成的关卡，重放每个队员的日志并删除记录
func (s *PartyService) CancelPartyCompletion(ctx context.Context, id uint) error {
	ctx, span := tracing.Tracer.Start(ctx, "PartyService.CancelPartyCompletion")
	defer span.End()
	span.SetAttributes(attribute.Int64("party_completion.id", int64(id)))

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parties := s.Parties.WithTx(tx)
		party, err := parties.FindByID(id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPartyCompletionNotFound
		}
		if err != nil {
			return err
		}
		if _, err := s.Characters.WithTx(tx).LockByIDs(ascending(party.CharacterIDs())); err != nil {
			return err
		}

		affected, err := s.Ledger.DebitParty(tx, id)
		if err != nil {
			return err
		}
		for _, characterID := range affected {
			if err := s.Ledger.Replay(tx, characterID, party.WeekKey); err != nil {
				return err
			}
		}
		return parties.Delete(id)
	})
	if err != nil {
		return err
	}

	monitoring.PartyCompletions.WithLabelValues("cancelled").Inc()
	logger.Log.Info("Party completion cancelled", zap.Uint("party_completion_id", id))
	return nil
}

func toCompletedParty(p *model.PartyCompletion) CompletedParty {
	view := CompletedParty{
		ID:          p.ID,
		RaidID:      p.RaidID,
		RaidName:    p.Raid.Name,
		RaidGroup:   p.Raid.RaidGroup,
		Difficulty:  p.Raid.Difficulty,
		WeekKey:     p.WeekKey,
		ExtraReward: p.ExtraReward,
		CompletedAt: p.CompletedAt,
		Characters:  make([]model.Character, 0, len(p.Members)),
	}
	for _, m := range p.Members {
		// 已删除的角色没有队员记录
		if m.Character.ID != 0 {
			view.Characters = append(view.Characters, m.Character)
		}
	}
	return view
}

// ListCompletedParties 某个副本本周的组队记录
func (s *PartyService) ListCompletedParties(ctx context.Context, raidID uint) ([]CompletedParty, error) {
	if _, err := s.findRaid(raidID); err != nil {
		return nil, err
	}
	parties, err := s.Parties.WithTx(s.DB.WithContext(ctx)).ListByWeek(s.Schedule.Current(), raidID)
	if err != nil {
		return nil, err
	}
	views := make([]CompletedParty, 0, len(parties))
	for i := range parties {
		views = append(views, toCompletedParty(&parties[i]))
	}
	return views, nil
}

// ListAllCompletedParties 本周所有组队记录，按副本组和难度分组
func (s *PartyService) ListAllCompletedParties(ctx context.Context) ([]CompletedPartyGroup, error) {
	parties, err := s.Parties.WithTx(s.DB.WithContext(ctx)).ListByWeek(s.Schedule.Current(), 0)
	if err != nil {
		return nil, err
	}
	return s.groupParties(parties)
}

func (s *PartyService) groupParties(parties []model.PartyCompletion) ([]CompletedPartyGroup, error) {
	raids, err := s.Raids.FindAll()
	if err != nil {
		return nil, err
	}
	byRaid := make(map[uint][]CompletedParty)
	for i := range parties {
		byRaid[parties[i].RaidID] = append(byRaid[parties[i].RaidID], toCompletedParty(&parties[i]))
	}

	groups := []CompletedPartyGroup{}
	for _, raid := range raids {
		views, ok := byRaid[raid.ID]
		if !ok {
			continue
		}
		groups = append(groups, CompletedPartyGroup{
			RaidGroup:  raid.RaidGroup,
			Difficulty: raid.Difficulty,
			Parties:    views,
		})
	}
	return groups, nil
}

// describeParty 队员名字，用于日志和管理页面
func describeParty(p *CompletedParty) string {
	names := make([]string, 0, len(p.Characters))
	for _, c := range p.Characters {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

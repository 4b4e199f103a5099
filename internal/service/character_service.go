package service

import (
	"context"
	"errors"
	"fmt"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"
	"raid_checker_backend/pkg/logger"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minGoldPriority = 1
	maxGoldPriority = 10
	searchLimit     = 20
)

type CharacterService struct {
	Characters *repository.CharacterRepository
	Accounts   *repository.AccountRepository
	Provider   CharacterProvider
}

func NewCharacterService(characters *repository.CharacterRepository, accounts *repository.AccountRepository, provider CharacterProvider) *CharacterService {
	return &CharacterService{
		Characters: characters,
		Accounts:   accounts,
		Provider:   provider,
	}
}

func (s *CharacterService) GetCharacter(id uint) (*model.Character, error) {
	character, err := s.Characters.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCharacterNotFound
	}
	return character, err
}

func (s *CharacterService) ListByAccount(accountID uint) ([]model.Character, error) {
	if _, err := s.Accounts.FindByID(accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAccountNotFound
		}
		return nil, err
	}
	return s.Characters.FindByAccount(accountID)
}

// ownedBy 加载角色并校验归属，管理员可以操作任意角色
func (s *CharacterService) ownedBy(id uint, claims *util.Claims) (*model.Character, error) {
	character, err := s.GetCharacter(id)
	if err != nil {
		return nil, err
	}
	if claims.Role != model.Master && character.AccountID != claims.AccountID {
		return nil, util.ErrPermissionDenied
	}
	return character, nil
}

// DeleteCharacter 删除角色及其账本和组队记录
func (s *CharacterService) DeleteCharacter(id uint, claims *util.Claims) error {
	if _, err := s.ownedBy(id, claims); err != nil {
		return err
	}
	if err := s.Characters.Delete(id); err != nil {
		return err
	}
	logger.Log.Info("Character deleted", zap.Uint("character_id", id), zap.Uint("account_id", claims.AccountID))
	return nil
}

func (s *CharacterService) UpdateGoldPriority(id uint, goldPriority int, claims *util.Claims) (*model.Character, error) {
	if goldPriority < minGoldPriority || goldPriority > maxGoldPriority {
		return nil, util.ErrInvalidGoldPriority
	}
	character, err := s.ownedBy(id, claims)
	if err != nil {
		return nil, err
	}
	character.GoldPriority = goldPriority
	if err := s.Characters.Save(character); err != nil {
		return nil, err
	}
	return character, nil
}

func applyProfile(character *model.Character, profile *CharacterProfile) error {
	itemLevel, err := util.ParseItemLevel(profile.ItemAvgLevel)
	if err != nil {
		return fmt.Errorf("%w: item level %q", util.ErrProviderUnavailable, profile.ItemAvgLevel)
	}
	character.ServerName = profile.ServerName
	character.ClassName = profile.CharacterClassName
	character.ItemLevel = itemLevel
	character.GuildName = profile.GuildName
	return nil
}

// ImportCharacter 根据外部数据为账号注册角色，新角色的金币优先级排在已有角色之后
func (s *CharacterService) ImportCharacter(ctx context.Context, accountID uint, name string) (*model.Character, error) {
	exists, err := s.Characters.ExistsByName(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", util.ErrCharacterExists, name)
	}

	profile, err := s.Provider.FetchProfile(ctx, name)
	if err != nil {
		return nil, err
	}

	owned, err := s.Characters.CountByAccount(accountID)
	if err != nil {
		return nil, err
	}
	priority := int(owned) + 1
	if priority > maxGoldPriority {
		priority = maxGoldPriority
	}

	character := &model.Character{
		AccountID:    accountID,
		Name:         profile.CharacterName,
		GoldPriority: priority,
	}
	if err := applyProfile(character, profile); err != nil {
		return nil, err
	}
	if err := s.Characters.Create(character); err != nil {
		return nil, err
	}

	logger.Log.Info("Character imported",
		zap.Uint("character_id", character.ID),
		zap.String("name", character.Name),
		zap.Float64("item_level", character.ItemLevel))
	return character, nil
}

// SyncCharacter 从外部接口刷新角色信息
func (s *CharacterService) SyncCharacter(ctx context.Context, id uint) (*model.Character, error) {
	character, err := s.GetCharacter(id)
	if err != nil {
		return nil, err
	}
	profile, err := s.Provider.FetchProfile(ctx, character.Name)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(character, profile); err != nil {
		return nil, err
	}
	if err := s.Characters.Save(character); err != nil {
		return nil, err
	}
	return character, nil
}

// SyncAccountCharacters 同步账号下所有角色，返回成功数量；失败的记录日志后跳过
func (s *CharacterService) SyncAccountCharacters(ctx context.Context, accountID uint) (int, error) {
	characters, err := s.ListByAccount(accountID)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, c := range characters {
		if _, err := s.SyncCharacter(ctx, c.ID); err != nil {
			logger.Log.Warn("Character sync failed", zap.String("name", c.Name), zap.Error(err))
			continue
		}
		synced++
	}
	return synced, nil
}

type characterNames []model.Character

func (c characterNames) String(i int) string { return c[i].Name }
func (c characterNames) Len() int            { return len(c) }

// Search 模糊搜索所有账号的角色名，匹配度高的在前
func (s *CharacterService) Search(query string) ([]model.Character, error) {
	all, err := s.Characters.FindAll()
	if err != nil {
		return nil, err
	}
	matches := fuzzy.FindFrom(query, characterNames(all))

	results := make([]model.Character, 0, searchLimit)
	for _, m := range matches {
		if len(results) == searchLimit {
			break
		}
		results = append(results, all[m.Index])
	}
	return results, nil
}

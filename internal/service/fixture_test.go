package service

import (
	"fmt"
	"path/filepath"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/pkg/database"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

type fixture struct {
	t           *testing.T
	db          *gorm.DB
	now         time.Time
	schedule    *ResetSchedule
	accounts    *repository.AccountRepository
	characters  *repository.CharacterRepository
	raids       *repository.RaidRepository
	weekly      *repository.WeeklyCompletionRepository
	parties     *repository.PartyCompletionRepository
	eligibility *EligibilityResolver
	ledger      *LedgerService
	raidByName  map[string]model.Raid
	nextAccount uint
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raid_checker.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newFixture 基于给定副本目录构建账本。时钟固定在 2026-10-16（周五）12:00 KST，
// 属于 2026-10-14（周三）开始的那一周
func newFixture(t *testing.T, raids ...model.Raid) *fixture {
	t.Helper()
	db := openTestDB(t)
	if len(raids) > 0 {
		if err := db.Create(&raids).Error; err != nil {
			t.Fatalf("create raids: %v", err)
		}
	}

	f := &fixture{
		t:          t,
		db:         db,
		now:        time.Date(2026, 10, 16, 12, 0, 0, 0, seoul),
		accounts:   repository.NewAccountRepository(db),
		characters: repository.NewCharacterRepository(db),
		raids:      repository.NewRaidRepository(db, nil),
		weekly:     repository.NewWeeklyCompletionRepository(db),
		parties:    repository.NewPartyCompletionRepository(db),
		raidByName: make(map[string]model.Raid),
	}
	f.schedule = &ResetSchedule{
		Location: seoul,
		Weekday:  time.Wednesday,
		Hour:     6,
		Now:      func() time.Time { return f.now },
	}
	if err := f.raids.Warm(); err != nil {
		t.Fatalf("warm catalog: %v", err)
	}
	all, _ := f.raids.FindAll()
	for _, r := range all {
		f.raidByName[r.Name] = r
	}

	f.eligibility = NewEligibilityResolver(f.raids, f.weekly)
	f.ledger = NewLedgerService(db, f.characters, f.raids, f.weekly, f.eligibility, f.schedule, 3)
	return f
}

// testRaid 按给定金币创建副本关卡，额外奖励费用为金币的四分之一
func testRaid(group string, difficulty model.Difficulty, itemLevel float64, partyType model.PartyType, order int, rewards ...int) model.Raid {
	raid := model.Raid{
		Name:              fmt.Sprintf("%s %s", group, difficulty),
		RaidGroup:         group,
		Difficulty:        difficulty,
		RequiredItemLevel: itemLevel,
		PartyType:         partyType,
		OrderIndex:        order,
	}
	for i, reward := range rewards {
		raid.RewardGold += reward
		raid.Gates = append(raid.Gates, model.RaidGate{
			GateNumber: i + 1,
			RewardGold: reward,
			ExtraCost:  reward / 4,
		})
	}
	return raid
}

func (f *fixture) raid(name string) model.Raid {
	f.t.Helper()
	r, ok := f.raidByName[name]
	if !ok {
		f.t.Fatalf("no raid %q in catalog", name)
	}
	return r
}

func (f *fixture) newAccount() uint {
	f.t.Helper()
	f.nextAccount++
	account := &model.Account{Username: fmt.Sprintf("account%d", f.nextAccount), Password: "x", Role: model.Member}
	if err := f.accounts.Create(account); err != nil {
		f.t.Fatalf("create account: %v", err)
	}
	return account.ID
}

func (f *fixture) addCharacter(accountID uint, name, className string, itemLevel float64, goldPriority int) model.Character {
	f.t.Helper()
	c := model.Character{
		AccountID:    accountID,
		Name:         name,
		ClassName:    className,
		ItemLevel:    itemLevel,
		GoldPriority: goldPriority,
	}
	if err := f.characters.Create(&c); err != nil {
		f.t.Fatalf("create character: %v", err)
	}
	return c
}

// gateID 角色在指定副本和关卡的记录 ID
func (f *fixture) gateID(characterID uint, raidName string, gateNumber int) uint {
	f.t.Helper()
	wc, err := f.weekly.FindByCharacterRaidWeek(characterID, f.raid(raidName).ID, f.schedule.Current())
	if err != nil {
		f.t.Fatalf("weekly row for %s: %v", raidName, err)
	}
	for _, g := range wc.GateCompletions {
		if g.GateNumber == gateNumber {
			return g.ID
		}
	}
	f.t.Fatalf("%s has no gate %d", raidName, gateNumber)
	return 0
}

func (f *fixture) gate(id uint) model.GateCompletion {
	f.t.Helper()
	g, err := f.weekly.FindGateCompletion(id)
	if err != nil {
		f.t.Fatalf("load gate %d: %v", id, err)
	}
	return *g
}

// creditedGroups 角色本周拿到金币的副本组数量
func (f *fixture) creditedGroups(characterID uint) int {
	f.t.Helper()
	list, err := f.weekly.FindByCharacterWeek(characterID, f.schedule.Current())
	if err != nil {
		f.t.Fatalf("checklist: %v", err)
	}
	groups := make(map[string]struct{})
	for _, wc := range list {
		if wc.EarnedGold > 0 {
			groups[wc.Raid.RaidGroup] = struct{}{}
		}
	}
	return len(groups)
}

package repository

import (
	"context"
	"encoding/json"
	"raid_checker_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	raidCatalogKey = "raid:catalog:v1"
	raidCatalogTTL = time.Hour
)

// RaidRepository 副本目录，读取顺序：本地 LRU、redis、数据库
type RaidRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
	local *lru.Cache
	group singleflight.Group
}

func NewRaidRepository(db *gorm.DB, rdb *redis.Client) *RaidRepository {
	local, _ := lru.New(8)
	return &RaidRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
		local: local,
	}
}

// FindAll 返回全部副本及其关卡，按目录顺序。返回的是缓存的副本，调用方可以随意修改
func (r *RaidRepository) FindAll() ([]model.Raid, error) {
	raids, err := r.catalog()
	if err != nil {
		return nil, err
	}
	out := make([]model.Raid, len(raids))
	for i := range raids {
		out[i] = cloneRaid(&raids[i])
	}
	return out, nil
}

// catalog 返回缓存中的共享切片，只在本仓库内部读取
func (r *RaidRepository) catalog() ([]model.Raid, error) {
	if cached, ok := r.local.Get(raidCatalogKey); ok {
		return cached.([]model.Raid), nil
	}

	v, err, _ := r.group.Do(raidCatalogKey, func() (interface{}, error) {
		raids, err := r.loadCatalog()
		if err != nil {
			return nil, err
		}
		r.local.Add(raidCatalogKey, raids)
		return raids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Raid), nil
}

func cloneRaid(raid *model.Raid) model.Raid {
	c := *raid
	if raid.Gates != nil {
		c.Gates = append([]model.RaidGate(nil), raid.Gates...)
	}
	return c
}

func (r *RaidRepository) loadCatalog() ([]model.Raid, error) {
	if r.Redis != nil {
		data, err := r.Redis.Get(r.ctx, raidCatalogKey).Bytes()
		if err == nil {
			var raids []model.Raid
			if json.Unmarshal(data, &raids) == nil && len(raids) > 0 {
				return raids, nil
			}
		}
	}

	var raids []model.Raid
	err := r.DB.Preload("Gates", func(db *gorm.DB) *gorm.DB {
		return db.Order("gate_number ASC")
	}).Order("order_index ASC, id ASC").Find(&raids).Error
	if err != nil {
		return nil, err
	}

	// 缓存回填失败不影响读取
	if r.Redis != nil && len(raids) > 0 {
		if data, err := json.Marshal(raids); err == nil {
			r.Redis.Set(r.ctx, raidCatalogKey, data, raidCatalogTTL)
		}
	}
	return raids, nil
}

// Warm 预热本地缓存，需在开启事务前调用，事务内读取目录不再占用第二个连接
func (r *RaidRepository) Warm() error {
	r.local.Remove(raidCatalogKey)
	_, err := r.catalog()
	return err
}

// Invalidate 清除两级缓存
func (r *RaidRepository) Invalidate() {
	r.local.Remove(raidCatalogKey)
	if r.Redis != nil {
		r.Redis.Del(r.ctx, raidCatalogKey)
	}
}

func (r *RaidRepository) FindByID(id uint) (*model.Raid, error) {
	raids, err := r.catalog()
	if err != nil {
		return nil, err
	}
	for i := range raids {
		if raids[i].ID == id {
			raid := cloneRaid(&raids[i])
			return &raid, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// FindByGroup 同组所有难度
func (r *RaidRepository) FindByGroup(raidGroup string) ([]model.Raid, error) {
	raids, err := r.catalog()
	if err != nil {
		return nil, err
	}
	var group []model.Raid
	for i := range raids {
		if raids[i].RaidGroup == raidGroup {
			group = append(group, cloneRaid(&raids[i]))
		}
	}
	return group, nil
}

// FindAvailable 装等满足要求的副本
func (r *RaidRepository) FindAvailable(itemLevel float64) ([]model.Raid, error) {
	raids, err := r.catalog()
	if err != nil {
		return nil, err
	}
	var available []model.Raid
	for i := range raids {
		if raids[i].RequiredItemLevel <= itemLevel {
			available = append(available, cloneRaid(&raids[i]))
		}
	}
	return available, nil
}

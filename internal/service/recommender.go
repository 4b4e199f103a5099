package service

import (
	"raid_checker_backend/internal/model"
	"sort"
)

// Party 按职责分开的一支队伍
type Party struct {
	Dealers          []model.Character `json:"dealers"`
	Supports         []model.Character `json:"supports"`
	Quota            model.Quota       `json:"quota"`
	Full             bool              `json:"full"`
	AverageItemLevel float64           `json:"averageItemLevel"`
}

func newParty(members []model.Character, quota model.Quota) Party {
	p := Party{
		Dealers:  []model.Character{},
		Supports: []model.Character{},
		Quota:    quota,
	}
	var sum float64
	for _, c := range members {
		if c.IsSupport() {
			p.Supports = append(p.Supports, c)
		} else {
			p.Dealers = append(p.Dealers, c)
		}
		sum += c.ItemLevel
	}
	if len(members) > 0 {
		p.AverageItemLevel = sum / float64(len(members))
	}
	p.Full = len(p.Dealers) == quota.Dealers && len(p.Supports) == quota.Supports
	return p
}

// SortForRecommendation 按装等降序，其次按 ID
func SortForRecommendation(characters []model.Character) {
	sort.SliceStable(characters, func(i, j int) bool {
		if characters[i].ItemLevel != characters[j].ItemLevel {
			return characters[i].ItemLevel > characters[j].ItemLevel
		}
		return characters[i].ID < characters[j].ID
	})
}

// RecommendParties 按配额贪心地组出互不重叠的满员队伍。先排辅助，同一账号在一支队伍里只占一个位置；
// 某个辅助挤掉了必需的输出时，换下这个辅助再试一次。组不满时停止，残缺的队伍不返回。
func RecommendParties(dealers, supports []model.Character, quota model.Quota) []Party {
	dealerPool := append([]model.Character(nil), dealers...)
	supportPool := append([]model.Character(nil), supports...)
	SortForRecommendation(dealerPool)
	SortForRecommendation(supportPool)

	parties := []Party{}
	if quota.Size() == 0 {
		return parties
	}

	for len(dealerPool) >= quota.Dealers && len(supportPool) >= quota.Supports {
		supportSeats, dealerSeats, ok := fillParty(dealerPool, supportPool, quota)
		if !ok {
			break
		}

		members := make([]model.Character, 0, quota.Size())
		for _, i := range supportSeats {
			members = append(members, supportPool[i])
		}
		for _, i := range dealerSeats {
			members = append(members, dealerPool[i])
		}
		parties = append(parties, newParty(members, quota))

		supportPool = without(supportPool, supportSeats)
		dealerPool = without(dealerPool, dealerSeats)
	}
	return parties
}

// fillParty 先按顺序填一次；失败时从最后入座的辅助开始，依次跳过一个辅助重填
func fillParty(dealerPool, supportPool []model.Character, quota model.Quota) ([]int, []int, bool) {
	attempt := func(skip int) ([]int, []int, bool) {
		accounts := make(map[uint]struct{}, quota.Size())
		supportSeats := pick(supportPool, quota.Supports, accounts, skip)
		dealerSeats := pick(dealerPool, quota.Dealers, accounts, -1)
		ok := len(supportSeats) == quota.Supports && len(dealerSeats) == quota.Dealers
		return supportSeats, dealerSeats, ok
	}

	supportSeats, dealerSeats, ok := attempt(-1)
	if ok {
		return supportSeats, dealerSeats, true
	}
	for i := len(supportSeats) - 1; i >= 0; i-- {
		if s, d, ok := attempt(supportSeats[i]); ok {
			return s, d, true
		}
	}
	return nil, nil, false
}

// pick 选出最多 n 个账号未入座的角色下标并记录账号，skip 为 -1 时不跳过
func pick(pool []model.Character, n int, accounts map[uint]struct{}, skip int) []int {
	seats := make([]int, 0, n)
	for i, c := range pool {
		if len(seats) == n {
			break
		}
		if i == skip {
			continue
		}
		if _, taken := accounts[c.AccountID]; taken {
			continue
		}
		accounts[c.AccountID] = struct{}{}
		seats = append(seats, i)
	}
	return seats
}

func without(pool []model.Character, seats []int) []model.Character {
	drop := make(map[int]struct{}, len(seats))
	for _, i := range seats {
		drop[i] = struct{}{}
	}
	rest := make([]model.Character, 0, len(pool)-len(seats))
	for i, c := range pool {
		if _, ok := drop[i]; !ok {
			rest = append(rest, c)
		}
	}
	return rest
}

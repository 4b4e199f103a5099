package service

import "sort"

// CreditEntry 角色周完成日志中的一条已完成关卡
type CreditEntry struct {
	GateCompletionID uint
	RaidGroup        string
	Seq              int64
	Payout           int
}

// ReplayCredits 按完成顺序重放日志，计算每个关卡获得的金币。
// 副本组本周已经拿过金币，或拿金币的组还不到 groupCap 个时计入，否则为 0。
// 结果以 GateCompletionID 为键
func ReplayCredits(entries []CreditEntry, groupCap int) map[uint]int {
	ordered := make([]CreditEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Seq != ordered[j].Seq {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].GateCompletionID < ordered[j].GateCompletionID
	})

	credited := make(map[string]struct{}, groupCap)
	earned := make(map[uint]int, len(ordered))
	for _, e := range ordered {
		_, seen := credited[e.RaidGroup]
		if !seen && len(credited) >= groupCap {
			earned[e.GateCompletionID] = 0
			continue
		}
		credited[e.RaidGroup] = struct{}{}
		earned[e.GateCompletionID] = e.Payout
	}
	return earned
}

// CreditedGroups 重放后拿到金币的副本组数量
func CreditedGroups(entries []CreditEntry, earned map[uint]int) int {
	groups := make(map[string]struct{})
	for _, e := range entries {
		if earned[e.GateCompletionID] > 0 {
			groups[e.RaidGroup] = struct{}{}
		}
	}
	return len(groups)
}

package model

type CharacterRole string

const (
	RoleDealer  CharacterRole = "DPS"
	RoleSupport CharacterRole = "SUPPORT"
)

// GoldPriorityCutoff is the highest goldPriority still counted in account gold totals.
const GoldPriorityCutoff = 6

var supportClasses = map[string]struct{}{
	"바드":    {},
	"홀리나이트": {},
	"도화가":   {},
	"발키리":   {},
}

// IsSupportClass reports whether className is one of the fixed support classes.
func IsSupportClass(className string) bool {
	_, ok := supportClasses[className]
	return ok
}

// swagger:model Character
type Character struct {
	Record
	AccountID    uint    `gorm:"index;not null" json:"accountId"`
	Name         string  `gorm:"size:50;uniqueIndex;not null" json:"characterName"`
	ServerName   string  `gorm:"size:50" json:"serverName"`
	ClassName    string  `gorm:"size:30" json:"className"`
	ItemLevel    float64 `gorm:"not null;default:0" json:"itemLevel"`
	GuildName    string  `gorm:"size:50" json:"guildName"`
	GoldPriority int     `gorm:"not null;default:6" json:"goldPriority"`
}

func (Character) TableName() string {
	return "characters"
}

func (c *Character) Role() CharacterRole {
	if IsSupportClass(c.ClassName) {
		return RoleSupport
	}
	return RoleDealer
}

func (c *Character) IsSupport() bool {
	return c.Role() == RoleSupport
}

// CountsTowardGold reports whether the character's gold is part of the account total.
func (c *Character) CountsTowardGold() bool {
	return c.GoldPriority <= GoldPriorityCutoff
}

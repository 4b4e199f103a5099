package model

type AccountRole string

const (
	Member AccountRole = "member"
	Master AccountRole = "master"
)

// Account owns characters. Two characters of the same account never share a party.
// swagger:model Account
type Account struct {
	BaseModel
	Username string      `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password string      `gorm:"size:100;not null" json:"-"`
	Role     AccountRole `gorm:"size:20;default:'member'" json:"role"`
}

func (Account) TableName() string {
	return "accounts"
}

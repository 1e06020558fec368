package models

import "time"

// User is one identity record. Both registered accounts and anonymous
// guests live in the same table; guests carry IsGuest=true and no
// credentials. Trial fields stay zero until the user's first accepted
// message (the ledger populates them lazily).
type User struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"index"`
	PasswordHash   string     `json:"-"`
	GoogleID       string     `json:"-" gorm:"index"`
	DisplayName    string     `json:"displayName"`
	IsGuest        bool       `json:"isGuest"`
	IsPremium      bool       `json:"isPremium"`
	MessageCount   int        `json:"messageCount" gorm:"default:0"`
	TrialStartTime *time.Time `json:"trialStartTime"`
	TrialEndTime   *time.Time `json:"trialEndTime"`
	LastActiveTime *time.Time `json:"lastActiveTime"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

package models

import "time"

// Subscriber is a newsletter sign-up. Emails are stored normalized and are
// unique.
type Subscriber struct {
	ID           string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	SubscribedAt time.Time `json:"subscribedAt" gorm:"autoCreateTime"`
}

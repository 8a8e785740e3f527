package model

import (
	"time"

	"github.com/google/uuid"
)

// Billing rows are written by an external webhook processor and only
// observed here through the change feed. Nothing in the ordering core
// gates on them.

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"
)

type Subscription struct {
	ID                 string             `gorm:"primaryKey" json:"id"`
	Owner              uuid.UUID          `gorm:"type:uuid;not null;index;column:owner" json:"owner"`
	Status             SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	PriceID            string             `json:"price_id"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

type Usage struct {
	Owner      uuid.UUID `gorm:"type:uuid;primaryKey;column:owner" json:"owner"`
	CardsCount int       `gorm:"not null;default:0" json:"cards_count"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

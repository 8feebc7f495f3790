package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Points configuration keys understood by the admin server.
const (
	ConfigDailyCheckinPoints     = "daily_checkin_points"
	ConfigConsecutiveBonusDays   = "consecutive_bonus_days"
	ConfigConsecutiveBonusPoints = "consecutive_bonus_points"
	ConfigPointsToQuotaRate      = "points_to_quota_rate"
)

// ExchangeTypeQuota converts points into model usage quota.
const ExchangeTypeQuota = "quota"

// CheckinResult is returned by a daily check-in.
type CheckinResult struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	PointsEarned    float64 `json:"pointsEarned"`
	ConsecutiveDays int     `json:"consecutiveDays"`
	IsBonus         bool    `json:"isBonus"`
	TotalPoints     float64 `json:"totalPoints"`
	AvailablePoints float64 `json:"availablePoints"`
}

// CheckinStatus summarises an account's check-in streak and balance.
// NextBonusDay is the number of check-ins left before the next bonus; zero
// means the streak is exactly on a bonus boundary.
type CheckinStatus struct {
	HasCheckedIn    bool    `json:"hasCheckedIn"`
	ConsecutiveDays int     `json:"consecutiveDays"`
	NextBonusDay    int     `json:"nextBonusDay"`
	TotalPoints     float64 `json:"totalPoints"`
	AvailablePoints float64 `json:"availablePoints"`
	LastCheckinDate *string `json:"lastCheckinDate"`
}

// UserPoints is one account's points balance.
type UserPoints struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"accountId"`
	AccountName     string    `json:"accountName,omitempty"`
	TotalPoints     float64   `json:"totalPoints"`
	AvailablePoints float64   `json:"availablePoints"`
	UsedPoints      float64   `json:"usedPoints"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CheckinRecord is a single day's check-in.
type CheckinRecord struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"accountId"`
	AccountName     string    `json:"accountName,omitempty"`
	CheckinDate     time.Time `json:"checkinDate"`
	PointsEarned    float64   `json:"pointsEarned"`
	ConsecutiveDays int       `json:"consecutiveDays"`
	IsBonus         bool      `json:"isBonus"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PointsTransaction is one ledger entry.
type PointsTransaction struct {
	ID              uuid.UUID  `json:"id"`
	AccountID       uuid.UUID  `json:"accountId"`
	AccountName     string     `json:"accountName,omitempty"`
	TransactionType string     `json:"transactionType"`
	PointsChange    float64    `json:"pointsChange"`
	PointsBefore    float64    `json:"pointsBefore"`
	PointsAfter     float64    `json:"pointsAfter"`
	Description     string     `json:"description"`
	RelatedID       *uuid.UUID `json:"relatedId"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PointsExchange is a redemption of points.
type PointsExchange struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"accountId"`
	AccountName  string    `json:"accountName,omitempty"`
	ExchangeType string    `json:"exchangeType"`
	PointsCost   float64   `json:"pointsCost"`
	QuotaAmount  *float64  `json:"quotaAmount"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PointsConfig is one tunable of the points system.
type PointsConfig struct {
	ID          uuid.UUID `json:"id"`
	ConfigKey   string    `json:"configKey"`
	ConfigValue float64   `json:"configValue"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PointsStatistics is the admin overview of the points system.
type PointsStatistics struct {
	TotalUsers           int64   `json:"totalUsers"`
	TotalPoints          float64 `json:"totalPoints"`
	TotalUsedPoints      float64 `json:"totalUsedPoints"`
	TotalAvailablePoints float64 `json:"totalAvailablePoints"`
	TodayCheckins        int64   `json:"todayCheckins"`
	TodayExchanges       int64   `json:"todayExchanges"`
	TodayPointsEarned    float64 `json:"todayPointsEarned"`
	TodayPointsUsed      float64 `json:"todayPointsUsed"`
}

// PageResult is the admin server's paged list shape.
type PageResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// BonusProgress renders how far a streak is from the next bonus, e.g. "3/7".
// bonusDays <= 0 disables bonuses and yields "".
func BonusProgress(consecutiveDays, bonusDays int) string {
	if bonusDays <= 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", consecutiveDays%bonusDays, bonusDays)
}

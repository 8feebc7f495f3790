package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gaia-console/gaia/pkg/domain"
)

const checkinPrefix = "/gaia/checkin"

// PointsExchangeRequest redeems points for an account.
type PointsExchangeRequest struct {
	AccountID    uuid.UUID `json:"accountId"`
	ExchangeType string    `json:"exchangeType"`
	PointsCost   float64   `json:"pointsCost"`
	QuotaAmount  *float64  `json:"quotaAmount,omitempty"`
	Description  string    `json:"description,omitempty"`
}

// UpdatePointsConfigRequest sets one points configuration value.
type UpdatePointsConfigRequest struct {
	ConfigKey   string  `json:"configKey"`
	ConfigValue float64 `json:"configValue"`
	Description string  `json:"description,omitempty"`
}

// ManualAdjustPointsRequest credits (positive) or debits (negative) an account.
type ManualAdjustPointsRequest struct {
	AccountID    uuid.UUID `json:"accountId"`
	PointsChange float64   `json:"pointsChange"`
	Description  string    `json:"description"`
}

// Page selects a page of a list endpoint. Zero values fall back to the server defaults.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) apply(params url.Values) {
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(p.PageSize))
	}
}

// UserPointsFilter narrows ListUserPoints.
type UserPointsFilter struct {
	Page
	AccountID *uuid.UUID
	MinPoints *float64
	MaxPoints *float64
}

// CheckinRecordFilter narrows ListCheckinRecords.
type CheckinRecordFilter struct {
	Page
	AccountID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	IsBonus   *bool
}

// TransactionFilter narrows ListPointsTransactions.
type TransactionFilter struct {
	Page
	AccountID       *uuid.UUID
	TransactionType string
	StartDate       *time.Time
	EndDate         *time.Time
}

// ExchangeFilter narrows ListPointsExchanges.
type ExchangeFilter struct {
	Page
	AccountID    *uuid.UUID
	ExchangeType string
	Status       string
	StartDate    *time.Time
	EndDate      *time.Time
}

func setAccount(params url.Values, id *uuid.UUID) {
	if id != nil {
		params.Set("accountId", id.String())
	}
}

func setTime(params url.Values, key string, t *time.Time) {
	if t != nil {
		params.Set(key, t.Format(time.RFC3339))
	}
}

func setFloat(params url.Values, key string, f *float64) {
	if f != nil {
		params.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

// Checkin records today's check-in for an account.
func (c *Client) Checkin(ctx context.Context, accountID uuid.UUID) (*domain.CheckinResult, error) {
	var res domain.CheckinResult
	body := map[string]string{"accountId": accountID.String()}
	if err := c.adminCall(ctx, http.MethodPost, checkinPrefix+"/checkin", body, &res); err != nil {
		return nil, fmt.Errorf("client.Checkin: %w", err)
	}
	return &res, nil
}

// CheckinStatus returns the streak and balance of an account.
func (c *Client) CheckinStatus(ctx context.Context, accountID uuid.UUID) (*domain.CheckinStatus, error) {
	params := url.Values{}
	params.Set("accountId", accountID.String())

	var st domain.CheckinStatus
	if err := c.adminCall(ctx, http.MethodGet, checkinPrefix+"/getStatus?"+params.Encode(), nil, &st); err != nil {
		return nil, fmt.Errorf("client.CheckinStatus: %w", err)
	}
	return &st, nil
}

// UserPointsByAccountID returns the points balance of one account.
func (c *Client) UserPointsByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.UserPoints, error) {
	var p domain.UserPoints
	if err := c.adminCall(ctx, http.MethodGet, checkinPrefix+"/getUserPointsByAccountId/"+url.PathEscape(accountID.String()), nil, &p); err != nil {
		return nil, fmt.Errorf("client.UserPointsByAccountID: %w", err)
	}
	return &p, nil
}

// ExchangePoints redeems points.
func (c *Client) ExchangePoints(ctx context.Context, req PointsExchangeRequest) (*domain.PointsExchange, error) {
	var ex domain.PointsExchange
	if err := c.adminCall(ctx, http.MethodPost, checkinPrefix+"/exchangePoints", req, &ex); err != nil {
		return nil, fmt.Errorf("client.ExchangePoints: %w", err)
	}
	return &ex, nil
}

// ListUserPoints returns a page of account balances.
func (c *Client) ListUserPoints(ctx context.Context, f UserPointsFilter) (*domain.PageResult[domain.UserPoints], error) {
	params := url.Values{}
	f.Page.apply(params)
	setAccount(params, f.AccountID)
	setFloat(params, "minPoints", f.MinPoints)
	setFloat(params, "maxPoints", f.MaxPoints)

	var page domain.PageResult[domain.UserPoints]
	if err := c.adminCall(ctx, http.MethodGet, withQuery(checkinPrefix+"/getUserPoints", params), nil, &page); err != nil {
		return nil, fmt.Errorf("client.ListUserPoints: %w", err)
	}
	return &page, nil
}

// ListCheckinRecords returns a page of check-in records.
func (c *Client) ListCheckinRecords(ctx context.Context, f CheckinRecordFilter) (*domain.PageResult[domain.CheckinRecord], error) {
	params := url.Values{}
	f.Page.apply(params)
	setAccount(params, f.AccountID)
	setTime(params, "startDate", f.StartDate)
	setTime(params, "endDate", f.EndDate)
	if f.IsBonus != nil {
		params.Set("isBonus", strconv.FormatBool(*f.IsBonus))
	}

	var page domain.PageResult[domain.CheckinRecord]
	if err := c.adminCall(ctx, http.MethodGet, withQuery(checkinPrefix+"/getCheckinRecords", params), nil, &page); err != nil {
		return nil, fmt.Errorf("client.ListCheckinRecords: %w", err)
	}
	return &page, nil
}

// ListPointsTransactions returns a page of the points ledger.
func (c *Client) ListPointsTransactions(ctx context.Context, f TransactionFilter) (*domain.PageResult[domain.PointsTransaction], error) {
	params := url.Values{}
	f.Page.apply(params)
	setAccount(params, f.AccountID)
	if f.TransactionType != "" {
		params.Set("transactionType", f.TransactionType)
	}
	setTime(params, "startDate", f.StartDate)
	setTime(params, "endDate", f.EndDate)

	var page domain.PageResult[domain.PointsTransaction]
	if err := c.adminCall(ctx, http.MethodGet, withQuery(checkinPrefix+"/getPointsTransaction", params), nil, &page); err != nil {
		return nil, fmt.Errorf("client.ListPointsTransactions: %w", err)
	}
	return &page, nil
}

// ListPointsExchanges returns a page of redemptions.
func (c *Client) ListPointsExchanges(ctx context.Context, f ExchangeFilter) (*domain.PageResult[domain.PointsExchange], error) {
	params := url.Values{}
	f.Page.apply(params)
	setAccount(params, f.AccountID)
	if f.ExchangeType != "" {
		params.Set("exchangeType", f.ExchangeType)
	}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	setTime(params, "startDate", f.StartDate)
	setTime(params, "endDate", f.EndDate)

	var page domain.PageResult[domain.PointsExchange]
	if err := c.adminCall(ctx, http.MethodGet, withQuery(checkinPrefix+"/getPointsExchange", params), nil, &page); err != nil {
		return nil, fmt.Errorf("client.ListPointsExchanges: %w", err)
	}
	return &page, nil
}

// PointsConfig returns every points configuration value.
func (c *Client) PointsConfig(ctx context.Context) ([]domain.PointsConfig, error) {
	var cfg []domain.PointsConfig
	if err := c.adminCall(ctx, http.MethodGet, checkinPrefix+"/getPointsConfig", nil, &cfg); err != nil {
		return nil, fmt.Errorf("client.PointsConfig: %w", err)
	}
	return cfg, nil
}

// UpdatePointsConfig changes one points configuration value.
func (c *Client) UpdatePointsConfig(ctx context.Context, req UpdatePointsConfigRequest) error {
	if err := c.adminCall(ctx, http.MethodPost, checkinPrefix+"/updatePointsConfig", req, nil); err != nil {
		return fmt.Errorf("client.UpdatePointsConfig: %w", err)
	}
	return nil
}

// ManualAdjustPoints credits or debits an account by hand.
func (c *Client) ManualAdjustPoints(ctx context.Context, req ManualAdjustPointsRequest) error {
	if err := c.adminCall(ctx, http.MethodPost, checkinPrefix+"/manualAdjustPoints", req, nil); err != nil {
		return fmt.Errorf("client.ManualAdjustPoints: %w", err)
	}
	return nil
}

// PointsStatistics returns the admin overview of the points system.
func (c *Client) PointsStatistics(ctx context.Context) (*domain.PointsStatistics, error) {
	var st domain.PointsStatistics
	if err := c.adminCall(ctx, http.MethodGet, checkinPrefix+"/getPointsStatistics", nil, &st); err != nil {
		return nil, fmt.Errorf("client.PointsStatistics: %w", err)
	}
	return &st, nil
}

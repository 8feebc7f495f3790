package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/gaia-console/gaia/internal/flow"
	"github.com/gaia-console/gaia/pkg/client"
)

func adminFlags(fs *pflag.FlagSet) {
	pageFlags(fs)
	fs.String("account", "", "account id")
	fs.Float64("points", 0, "points to add (negative to deduct)")
	fs.String("description", "", "note stored with the change")
	fs.String("type", "", "transaction or exchange type")
	fs.String("status", "", "exchange status")
}

const adminUsage = "usage: gaia admin stats|config|set-config KEY VALUE|adjust|users|transactions|exchanges"

func runAdmin(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	admin, err := e.requireAdmin()
	if err != nil {
		return err
	}
	switch fs.Arg(0) {
	case "stats":
		return adminStats(ctx, e, admin)
	case "config":
		return adminConfig(ctx, e, admin)
	case "set-config":
		return adminSetConfig(ctx, e, admin, fs)
	case "adjust":
		return adminAdjust(ctx, e, admin, fs)
	case "users":
		return adminUsers(ctx, e, admin, fs)
	case "transactions":
		return adminTransactions(ctx, e, admin, fs)
	case "exchanges":
		return adminExchanges(ctx, e, admin, fs)
	}
	return errors.New(adminUsage)
}

func optionalAccount(fs *pflag.FlagSet) (*uuid.UUID, error) {
	raw, _ := fs.GetString("account")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("--account: %w", err)
	}
	return &id, nil
}

func adminStats(ctx context.Context, e *env, admin *client.Client) error {
	st, err := admin.PointsStatistics(ctx)
	if err != nil {
		return fmt.Errorf("admin stats: %s", flow.UserMessage(err))
	}
	fmt.Fprintln(e.out, renderKV(
		"users", strconv.FormatInt(st.TotalUsers, 10),
		"points issued", formatPoints(st.TotalPoints),
		"points used", formatPoints(st.TotalUsedPoints),
		"points available", formatPoints(st.TotalAvailablePoints),
		"check-ins today", strconv.FormatInt(st.TodayCheckins, 10),
		"exchanges today", strconv.FormatInt(st.TodayExchanges, 10),
		"earned today", formatPoints(st.TodayPointsEarned),
		"used today", formatPoints(st.TodayPointsUsed),
	))
	return nil
}

func adminConfig(ctx context.Context, e *env, admin *client.Client) error {
	cfg, err := admin.PointsConfig(ctx)
	if err != nil {
		return fmt.Errorf("admin config: %s", flow.UserMessage(err))
	}
	rows := make([][]string, 0, len(cfg))
	for _, c := range cfg {
		rows = append(rows, []string{c.ConfigKey, formatPoints(c.ConfigValue), c.Description})
	}
	fmt.Fprintln(e.out, renderTable([]string{"key", "value", "description"}, rows))
	return nil
}

func adminSetConfig(ctx context.Context, e *env, admin *client.Client, fs *pflag.FlagSet) error {
	if fs.NArg() != 3 {
		return errors.New("usage: gaia admin set-config KEY VALUE [--description TEXT]")
	}
	key := fs.Arg(1)
	value, err := strconv.ParseFloat(fs.Arg(2), 64)
	if err != nil {
		return fmt.Errorf("admin set-config: value: %w", err)
	}
	desc, _ := fs.GetString("description")
	if err := admin.UpdatePointsConfig(ctx, client.UpdatePointsConfigRequest{ConfigKey: key, ConfigValue: value, Description: desc}); err != nil {
		return fmt.Errorf("admin set-config: %s", flow.UserMessage(err))
	}
	e.log.Info("points config updated", "key", key, "value", value)
	fmt.Fprintf(e.out, "%s = %s\n", key, formatPoints(value))
	return nil
}

func adminAdjust(ctx context.Context, e *env, admin *client.Client, fs *pflag.FlagSet) error {
	account, err := optionalAccount(fs)
	if err != nil {
		return err
	}
	change, _ := fs.GetFloat64("points")
	desc, _ := fs.GetString("description")
	switch {
	case account == nil:
		return errors.New("admin adjust: --account is required")
	case change == 0:
		return errors.New("admin adjust: --points must not be zero")
	case desc == "":
		return errors.New("admin adjust: --description is required")
	}
	req := client.ManualAdjustPointsRequest{AccountID: *account, PointsChange: change, Description: desc}
	if err := admin.ManualAdjustPoints(ctx, req); err != nil {
		return fmt.Errorf("admin adjust: %s", flow.UserMessage(err))
	}
	e.log.Info("points adjusted", "account", account.String(), "change", change)
	sign := "+"
	if change < 0 {
		sign = ""
	}
	fmt.Fprintf(e.out, "Adjusted %s by %s%s points.\n", account, sign, formatPoints(change))
	return nil
}

func adminUsers(ctx context.Context, e *env, admin *client.Client, fs *pflag.FlagSet) error {
	account, err := optionalAccount(fs)
	if err != nil {
		return err
	}
	res, err := admin.ListUserPoints(ctx, client.UserPointsFilter{Page: page(fs), AccountID: account})
	if err != nil {
		return fmt.Errorf("admin users: %s", flow.UserMessage(err))
	}
	rows := make([][]string, 0, len(res.List))
	for _, u := range res.List {
		rows = append(rows, []string{
			u.AccountID.String(),
			u.AccountName,
			formatPoints(u.AvailablePoints),
			formatPoints(u.UsedPoints),
			formatPoints(u.TotalPoints),
		})
	}
	fmt.Fprintln(e.out, renderTable([]string{"account", "name", "available", "used", "total"}, rows))
	fmt.Fprintln(e.out, pageFooter(res.Page, res.PageSize, res.Total))
	return nil
}

func adminTransactions(ctx context.Context, e *env, admin *client.Client, fs *pflag.FlagSet) error {
	account, err := optionalAccount(fs)
	if err != nil {
		return err
	}
	typ, _ := fs.GetString("type")
	res, err := admin.ListPointsTransactions(ctx, client.TransactionFilter{Page: page(fs), AccountID: account, TransactionType: typ})
	if err != nil {
		return fmt.Errorf("admin transactions: %s", flow.UserMessage(err))
	}
	rows := make([][]string, 0, len(res.List))
	for _, tx := range res.List {
		rows = append(rows, []string{
			tx.CreatedAt.Local().Format(time.DateTime),
			accountLabel(tx.AccountName, tx.AccountID),
			tx.TransactionType,
			signed(tx.PointsChange),
			formatPoints(tx.PointsAfter),
			tx.Description,
		})
	}
	fmt.Fprintln(e.out, renderTable([]string{"time", "account", "type", "change", "balance", "description"}, rows))
	fmt.Fprintln(e.out, pageFooter(res.Page, res.PageSize, res.Total))
	return nil
}

func adminExchanges(ctx context.Context, e *env, admin *client.Client, fs *pflag.FlagSet) error {
	account, err := optionalAccount(fs)
	if err != nil {
		return err
	}
	typ, _ := fs.GetString("type")
	status, _ := fs.GetString("status")
	res, err := admin.ListPointsExchanges(ctx, client.ExchangeFilter{Page: page(fs), AccountID: account, ExchangeType: typ, Status: status})
	if err != nil {
		return fmt.Errorf("admin exchanges: %s", flow.UserMessage(err))
	}
	rows := make([][]string, 0, len(res.List))
	for _, ex := range res.List {
		quota := "-"
		if ex.QuotaAmount != nil {
			quota = formatPoints(*ex.QuotaAmount)
		}
		rows = append(rows, []string{
			ex.CreatedAt.Local().Format(time.DateTime),
			accountLabel(ex.AccountName, ex.AccountID),
			ex.ExchangeType,
			formatPoints(ex.PointsCost),
			quota,
			ex.Status,
		})
	}
	fmt.Fprintln(e.out, renderTable([]string{"time", "account", "type", "points", "quota", "status"}, rows))
	fmt.Fprintln(e.out, pageFooter(res.Page, res.PageSize, res.Total))
	return nil
}

func accountLabel(name string, id uuid.UUID) string {
	if name != "" {
		return name
	}
	return id.String()
}

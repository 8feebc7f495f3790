package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gaia-console/gaia/pkg/domain"
)

func TestSendEmailCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/sendEmailCode" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body["email"] != "a@b.com" || body["language"] != "en-US" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"result": "success", "data": "TOKEN1"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	token, err := c.SendEmailCode(context.Background(), "a@b.com", "en-US")
	if err != nil {
		t.Fatalf("SendEmailCode() error: %v", err)
	}
	if token != "TOKEN1" {
		t.Errorf("token = %q, want %q", token, "TOKEN1")
	}
}

func TestSendEmailCode_AccountExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"result":  "fail",
			"code":    "account_already_exists",
			"message": "Account already exists",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.SendEmailCode(context.Background(), "a@b.com", "en-US")
	if err == nil {
		t.Fatal("expected error for existing account")
	}
	if !IsCode(err, domain.CodeAccountAlreadyExists) {
		t.Errorf("IsCode(err, account_already_exists) = false, err = %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not an *APIError", err)
	}
	if apiErr.Message != "Account already exists" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestVerifyEmailCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/register/validity" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		valid := body["code"] == "123456" && body["token"] == "TOKEN1"
		json.NewEncoder(w).Encode(domain.CodeValidity{IsValid: valid, Email: body["email"]}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	v, err := c.VerifyEmailCode(context.Background(), "a@b.com", "123456", "TOKEN1")
	if err != nil {
		t.Fatalf("VerifyEmailCode() error: %v", err)
	}
	if !v.IsValid {
		t.Error("IsValid = false, want true")
	}

	v, err = c.VerifyEmailCode(context.Background(), "a@b.com", "000000", "TOKEN1")
	if err != nil {
		t.Fatalf("VerifyEmailCode() error: %v", err)
	}
	if v.IsValid {
		t.Error("IsValid = true for wrong code")
	}
}

func TestVerifyEmailCode_ServerErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"code":    "email_code_error",
			"message": "Email code is invalid or expired.",
			"status":  400,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.VerifyEmailCode(context.Background(), "a@b.com", "000000", "TOKEN1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsStatus(err, http.StatusBadRequest) {
		t.Errorf("IsStatus(err, 400) = false, err = %v", err)
	}
	if got := ErrorCode(err); got != "email_code_error" {
		t.Errorf("ErrorCode = %q, want %q", got, "email_code_error")
	}
}

func TestSelfRegister(t *testing.T) {
	var got domain.SelfRegisterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/selfRegister" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)                              //nolint:errcheck
		json.NewEncoder(w).Encode(map[string]string{"result": "success"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.SelfRegister(context.Background(), domain.SelfRegisterRequest{
		Token:           "TOKEN1",
		Name:            "Alice",
		Password:        "abcd1234",
		PasswordConfirm: "abcd1234",
	})
	if err != nil {
		t.Fatalf("SelfRegister() error: %v", err)
	}
	if got.Token != "TOKEN1" || got.Name != "Alice" || got.PasswordConfirm != "abcd1234" {
		t.Errorf("server received %+v", got)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if !req.RememberMe {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch req.Email {
		case "alice@example.com":
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"result": "success",
				"data":   map[string]string{"access_token": "AT", "refresh_token": "RT"},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"result": "fail",
				"data":   "Account not found",
				"code":   "account_not_found",
			})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	tokens, err := c.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "abcd1234", RememberMe: true})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if tokens.AccessToken != "AT" || tokens.RefreshToken != "RT" {
		t.Errorf("tokens = %+v", tokens)
	}

	_, err = c.Login(context.Background(), domain.LoginRequest{Email: "bob@example.com", Password: "abcd1234", RememberMe: true})
	if !IsCode(err, domain.CodeAccountNotFound) {
		t.Fatalf("expected account_not_found, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.DataText() != "Account not found" {
		t.Errorf("DataText() = %q", apiErr.DataText())
	}
}

func TestCheckEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/checkEmail" {
			http.NotFound(w, r)
			return
		}
		available := r.URL.Query().Get("email") != "taken@example.com"
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"code": 0,
			"data": map[string]bool{"available": available},
			"msg":  "ok",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ok, err := c.CheckEmail(context.Background(), "free@example.com")
	if err != nil {
		t.Fatalf("CheckEmail() error: %v", err)
	}
	if !ok {
		t.Error("available = false, want true")
	}
	ok, err = c.CheckEmail(context.Background(), "taken@example.com")
	if err != nil {
		t.Fatalf("CheckEmail() error: %v", err)
	}
	if ok {
		t.Error("available = true, want false")
	}
}

func TestAdminEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 7, "data": nil, "msg": "username is required"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.CheckUsername(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for code 7")
	}
	if !IsCode(err, "7") {
		t.Errorf("IsCode(err, \"7\") = false, err = %v", err)
	}
	if !strings.Contains(err.Error(), "username is required") {
		t.Errorf("error = %q, want server message", err.Error())
	}
}

func TestCheckinUsesAdminToken(t *testing.T) {
	account := uuid.MustParse("5b7d3c1e-6a2f-4f5e-9a51-0f7e8b1c2d3e")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-token") != "admin-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["accountId"] != account.String() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"code": 0,
			"data": domain.CheckinResult{Success: true, PointsEarned: 60, ConsecutiveDays: 7, IsBonus: true},
			"msg":  "ok",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "admin-tok", WithAdminAuth())
	res, err := c.Checkin(context.Background(), account)
	if err != nil {
		t.Fatalf("Checkin() error: %v", err)
	}
	if !res.IsBonus || res.PointsEarned != 60 || res.ConsecutiveDays != 7 {
		t.Errorf("result = %+v", res)
	}

	unauth := New(srv.URL, "wrong", WithAdminAuth())
	_, err = unauth.Checkin(context.Background(), account)
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestCheckinStatusQuery(t *testing.T) {
	account := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gaia/checkin/getStatus" || r.URL.Query().Get("accountId") != account.String() {
			http.NotFound(w, r)
			return
		}
		last := "2026-10-18"
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"code": 0,
			"data": domain.CheckinStatus{ConsecutiveDays: 3, NextBonusDay: 4, AvailablePoints: 30, LastCheckinDate: &last},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithAdminAuth())
	st, err := c.CheckinStatus(context.Background(), account)
	if err != nil {
		t.Fatalf("CheckinStatus() error: %v", err)
	}
	if st.ConsecutiveDays != 3 || st.NextBonusDay != 4 {
		t.Errorf("status = %+v", st)
	}
	if st.LastCheckinDate == nil || *st.LastCheckinDate != "2026-10-18" {
		t.Errorf("LastCheckinDate = %v", st.LastCheckinDate)
	}
}

func TestListCheckinRecordsFilter(t *testing.T) {
	account := uuid.New()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	bonus := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("pageSize") != "20" {
			t.Errorf("paging query = %q", r.URL.RawQuery)
		}
		if q.Get("accountId") != account.String() || q.Get("isBonus") != "true" {
			t.Errorf("filter query = %q", r.URL.RawQuery)
		}
		if q.Get("startDate") != "2026-10-01T00:00:00Z" {
			t.Errorf("startDate = %q", q.Get("startDate"))
		}
		if q.Has("endDate") {
			t.Errorf("endDate should be omitted, query = %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"code": 0,
			"data": domain.PageResult[domain.CheckinRecord]{
				List:     []domain.CheckinRecord{{AccountID: account, ConsecutiveDays: 7, IsBonus: true}},
				Total:    21,
				Page:     2,
				PageSize: 20,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithAdminAuth())
	page, err := c.ListCheckinRecords(context.Background(), CheckinRecordFilter{
		Page:      Page{Page: 2, PageSize: 20},
		AccountID: &account,
		StartDate: &start,
		IsBonus:   &bonus,
	})
	if err != nil {
		t.Fatalf("ListCheckinRecords() error: %v", err)
	}
	if page.Total != 21 || len(page.List) != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestUpdatePointsConfig(t *testing.T) {
	var got UpdatePointsConfigRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gaia/checkin/updatePointsConfig" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)                                   //nolint:errcheck
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "updated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithAdminAuth())
	err := c.UpdatePointsConfig(context.Background(), UpdatePointsConfigRequest{
		ConfigKey:   domain.ConfigDailyCheckinPoints,
		ConfigValue: 15,
	})
	if err != nil {
		t.Fatalf("UpdatePointsConfig() error: %v", err)
	}
	if got.ConfigKey != domain.ConfigDailyCheckinPoints || got.ConfigValue != 15 {
		t.Errorf("server received %+v", got)
	}
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.SendEmailCode(context.Background(), "a@b.com", "en-US")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := err.Error(); !strings.Contains(got, "boom") {
		t.Errorf("error = %q, want it to contain 'boom'", got)
	}
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second)                                       // slow server
		json.NewEncoder(w).Encode(map[string]string{"result": "success"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.SendEmailCode(ctx, "a@b.com", "en-US")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{"message and code", &APIError{Code: "x", Message: "bad"}, "api: bad (code: x)"},
		{"data string", &APIError{Code: "x", Data: json.RawMessage(`"from data"`)}, "api: from data (code: x)"},
		{"data object", &APIError{Data: json.RawMessage(`{"k":1}`)}, `api: {"k":1}`},
		{"nothing", &APIError{}, "api: request failed"},
		{"null data", &APIError{Code: "y", Data: json.RawMessage(`null`)}, "api: request failed (code: y)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdminBindingsRoutes(t *testing.T) {
	account := uuid.MustParse("9b2f6a3c-1d4e-4f8a-b7c6-5e0d3a2b1c9f")
	ctx := context.Background()

	tests := []struct {
		name      string
		wantPath  string
		wantQuery string
		data      any
		call      func(c *Client) error
	}{
		{
			name:     "user points by account",
			wantPath: "/gaia/checkin/getUserPointsByAccountId/" + account.String(),
			data:     map[string]any{"accountId": account, "usedPoints": 5},
			call: func(c *Client) error {
				p, err := c.UserPointsByAccountID(ctx, account)
				if err == nil && p.UsedPoints != 5 {
					t.Errorf("UsedPoints = %v", p.UsedPoints)
				}
				return err
			},
		},
		{
			name:      "list user points",
			wantPath:  "/gaia/checkin/getUserPoints",
			wantQuery: "minPoints=10&page=1&pageSize=50",
			data:      map[string]any{"list": []any{}, "total": 0},
			call: func(c *Client) error {
				minPoints := 10.0
				_, err := c.ListUserPoints(ctx, UserPointsFilter{Page: Page{Page: 1, PageSize: 50}, MinPoints: &minPoints})
				return err
			},
		},
		{
			name:      "list transactions",
			wantPath:  "/gaia/checkin/getPointsTransaction",
			wantQuery: "accountId=" + account.String() + "&transactionType=checkin",
			data:      map[string]any{"list": []any{}},
			call: func(c *Client) error {
				_, err := c.ListPointsTransactions(ctx, TransactionFilter{AccountID: &account, TransactionType: "checkin"})
				return err
			},
		},
		{
			name:      "list exchanges",
			wantPath:  "/gaia/checkin/getPointsExchange",
			wantQuery: "status=completed",
			data:      map[string]any{"list": []any{}},
			call: func(c *Client) error {
				_, err := c.ListPointsExchanges(ctx, ExchangeFilter{Status: "completed"})
				return err
			},
		},
		{
			name:     "points config",
			wantPath: "/gaia/checkin/getPointsConfig",
			data:     []map[string]any{{"configKey": domain.ConfigConsecutiveBonusDays, "configValue": 7}},
			call: func(c *Client) error {
				cfg, err := c.PointsConfig(ctx)
				if err == nil && (len(cfg) != 1 || cfg[0].ConfigValue != 7) {
					t.Errorf("config = %+v", cfg)
				}
				return err
			},
		},
		{
			name:     "statistics",
			wantPath: "/gaia/checkin/getPointsStatistics",
			data:     map[string]any{"totalUsers": 3, "todayCheckins": 2},
			call: func(c *Client) error {
				st, err := c.PointsStatistics(ctx)
				if err == nil && (st.TotalUsers != 3 || st.TodayCheckins != 2) {
					t.Errorf("stats = %+v", st)
				}
				return err
			},
		},
		{
			name:     "exchange points",
			wantPath: "/gaia/checkin/exchangePoints",
			data:     map[string]any{"status": "completed", "pointsCost": 100},
			call: func(c *Client) error {
				ex, err := c.ExchangePoints(ctx, PointsExchangeRequest{AccountID: account, ExchangeType: domain.ExchangeTypeQuota, PointsCost: 100})
				if err == nil && ex.Status != "completed" {
					t.Errorf("exchange = %+v", ex)
				}
				return err
			},
		},
		{
			name:     "manual adjust",
			wantPath: "/gaia/checkin/manualAdjustPoints",
			call: func(c *Client) error {
				return c.ManualAdjustPoints(ctx, ManualAdjustPointsRequest{AccountID: account, PointsChange: -5, Description: "refund"})
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tc.wantPath {
					t.Errorf("path = %s, want %s", r.URL.Path, tc.wantPath)
				}
				if r.URL.RawQuery != tc.wantQuery {
					t.Errorf("query = %s, want %s", r.URL.RawQuery, tc.wantQuery)
				}
				if r.Header.Get("x-token") != "tok" {
					t.Errorf("x-token = %q", r.Header.Get("x-token"))
				}
				json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": tc.data, "msg": "ok"}) //nolint:errcheck
			}))
			defer srv.Close()

			if err := tc.call(New(srv.URL, "tok", WithAdminAuth())); err != nil {
				t.Fatalf("call error: %v", err)
			}
		})
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/logger"
	"github.com/fsdevblog/groph-bank/internal/service/tokens"
	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/fsdevblog/groph-bank/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-bank/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *mocks.MockLedgerServicer
	jwtSecret         []byte
	aliceToken        string
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

func (s *LedgerHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockLedgerService = mocks.NewMockLedgerServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	router, routerErr := New(RouterArgs{
		Logger:        logger.New(io.Discard),
		LedgerService: s.mockLedgerService,
		JWTSecretKey:  s.jwtSecret,
	})
	s.Require().NoError(routerErr)
	s.router = router

	token, tokenErr := tokens.GenerateUserJWT("alice", time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)
	s.aliceToken = token
}

// request выполняет запрос от имени alice (если withAuth) и декодирует тело ответа в out.
func (s *LedgerHandlerTestSuite) request(method, url, body string, withAuth bool, out any) *http.Response {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
	}
	if body != "" {
		args.Body = bytes.NewReader([]byte(body))
	}

	reqOpts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Content-Type", "application/json"),
	}
	if withAuth {
		reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", s.aliceToken)))
	}

	res, err := testutils.MakeRequest(args, reqOpts...)
	s.Require().NoError(err)
	defer res.Body.Close()

	if out != nil {
		s.Require().NoError(json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func (s *LedgerHandlerTestSuite) TestPing() {
	res := s.request(http.MethodGet, PingRoute, "", false, nil)
	s.Equal(http.StatusOK, res.StatusCode)
	s.NotEmpty(res.Header.Get(middlewares.RequestIDHeader))
}

func (s *LedgerHandlerTestSuite) TestCORS() {
	s.Run("preflight", func() {
		res, err := testutils.MakeRequest(testutils.RequestArgs{
			Router: s.router,
			Method: http.MethodOptions,
			URL:    RouteGroup + DepositRoute,
		},
			testutils.WithHeader("Origin", "http://localhost:3000"),
			testutils.WithHeader("Access-Control-Request-Method", http.MethodPost),
			testutils.WithHeader("Access-Control-Request-Headers", "Authorization, Content-Type"),
		)
		s.Require().NoError(err)
		defer res.Body.Close()

		s.Equal(http.StatusNoContent, res.StatusCode)
		s.Equal("*", res.Header.Get("Access-Control-Allow-Origin"))
		s.Equal(http.MethodPost, res.Header.Get("Access-Control-Allow-Methods"))
		s.Equal("Authorization, Content-Type", res.Header.Get("Access-Control-Allow-Headers"))
	})

	s.Run("regular request", func() {
		res := s.request(http.MethodGet, PingRoute, "", false, nil)
		s.Equal(http.StatusOK, res.StatusCode)
		s.Equal("*", res.Header.Get("Access-Control-Allow-Origin"))
		s.Contains(res.Header.Get("Access-Control-Expose-Headers"), "Authorization")
	})
}

func (s *LedgerHandlerTestSuite) TestDeposit() {
	hundred := decimal.RequireFromString("100.00")

	s.mockLedgerService.EXPECT().
		Deposit(gomock.Any(), "alice", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, amount decimal.Decimal) (*domain.Transaction, error) {
			s.True(hundred.Equal(amount))
			return &domain.Transaction{ID: 1}, nil
		}).Times(2)
	s.mockLedgerService.EXPECT().
		Deposit(gomock.Any(), "alice", gomock.Any()).
		Return(nil, fmt.Errorf("deposit: %w", domain.ErrInvalidAmount))

	cases := []struct {
		name        string
		body        string
		withAuth    bool
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "amount as string",
			body:        `{"amount":"100.00"}`,
			withAuth:    true,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: "Deposit successful.",
		},
		{
			name:        "amount as number",
			body:        `{"amount":100}`,
			withAuth:    true,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: "Deposit successful.",
		},
		{
			name:        "missing amount",
			body:        `{}`,
			withAuth:    true,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Deposit amount must be positive.",
		},
		{
			name:        "amount out of range",
			body:        `{"amount":"100000000000000000"}`,
			withAuth:    true,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Invalid request parameters.",
		},
		{
			name:        "huge exponent",
			body:        `{"amount":"1e10000000"}`,
			withAuth:    true,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Invalid request parameters.",
		},
		{
			name:        "tiny exponent",
			body:        `{"amount":"1e-10000000"}`,
			withAuth:    true,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Invalid request parameters.",
		},
		{
			name:        "huge exponent as number",
			body:        `{"amount":1e10000000}`,
			withAuth:    true,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Invalid request parameters.",
		},
		{
			name:        "not authorized",
			body:        `{"amount":"100.00"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			var out OutcomeResponse
			res := s.request(http.MethodPost, RouteGroup+DepositRoute, t.body, t.withAuth, &out)
			s.Equal(t.wantStatus, res.StatusCode)
			s.Equal(t.wantSuccess, out.Success)
			s.Equal(t.wantMessage, out.Message)
		})
	}
}

func (s *LedgerHandlerTestSuite) TestBadJSON() {
	var out OutcomeResponse
	res := s.request(http.MethodPost, RouteGroup+WithdrawRoute, `{"amount":`, true, &out)
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.False(out.Success)
	s.Equal("Bad request.", out.Message)
}

func (s *LedgerHandlerTestSuite) TestWithdraw() {
	s.mockLedgerService.EXPECT().
		Withdraw(gomock.Any(), "alice", gomock.Any()).
		Return(nil, fmt.Errorf("withdraw: %w", domain.ErrInsufficientFunds))

	var out OutcomeResponse
	res := s.request(http.MethodPost, RouteGroup+WithdrawRoute, `{"amount":"150.00"}`, true, &out)
	s.Equal(http.StatusPaymentRequired, res.StatusCode)
	s.False(out.Success)
	s.Equal("Insufficient funds.", out.Message)
}

func (s *LedgerHandlerTestSuite) TestTransfer() {
	cases := []struct {
		name        string
		to          string
		err         error
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "ok",
			to:          "bob",
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: "Transfer successful.",
		},
		{
			name:        "recipient not found",
			to:          "zed",
			err:         fmt.Errorf("transfer: %w", domain.NewAccountNotFoundError("zed", domain.RoleRecipient)),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Recipient not found.",
		},
		{
			name:        "same account",
			to:          "alice",
			err:         fmt.Errorf("transfer: %w", domain.ErrSameAccount),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Cannot transfer to the same user.",
		},
		{
			name:        "account busy",
			to:          "carol",
			err:         fmt.Errorf("transfer: %w", domain.ErrLockTimeout),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Account is busy, try again later.",
		},
		{
			name:        "store failure",
			to:          "dave",
			err:         fmt.Errorf("transfer: %w: connection reset by peer", domain.ErrStoreFailure),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Database error.",
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			var record *domain.Transaction
			if t.err == nil {
				record = &domain.Transaction{ID: 7}
			}
			s.mockLedgerService.EXPECT().
				Transfer(gomock.Any(), "alice", t.to, gomock.Any()).
				Return(record, t.err)

			var out OutcomeResponse
			body := fmt.Sprintf(`{"to_user":%q,"amount":"30.00"}`, t.to)
			res := s.request(http.MethodPost, RouteGroup+TransferRoute, body, true, &out)
			s.Equal(t.wantStatus, res.StatusCode)
			s.Equal(t.wantSuccess, out.Success)
			s.Equal(t.wantMessage, out.Message)
		})
	}
}

func (s *LedgerHandlerTestSuite) TestTransfer_MissingRecipient() {
	var out OutcomeResponse
	res := s.request(http.MethodPost, RouteGroup+TransferRoute, `{"amount":"30.00"}`, true, &out)
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	s.False(out.Success)
}

func (s *LedgerHandlerTestSuite) TestBalance() {
	s.mockLedgerService.EXPECT().GetBalance(gomock.Any(), "alice").Return(decimal.RequireFromString("20"), nil)

	var out BalanceResponse
	res := s.request(http.MethodGet, RouteGroup+BalanceRoute, "", true, &out)
	s.Equal(http.StatusOK, res.StatusCode)
	s.True(out.Success)
	s.Equal("20.00", out.Balance)
}

func (s *LedgerHandlerTestSuite) TestBalance_AccountNotFound() {
	s.mockLedgerService.EXPECT().GetBalance(gomock.Any(), "alice").
		Return(decimal.Zero, fmt.Errorf("balance: %w", domain.NewAccountNotFoundError("alice", domain.RoleAccount)))

	var out OutcomeResponse
	res := s.request(http.MethodGet, RouteGroup+BalanceRoute, "", true, &out)
	s.Equal(http.StatusNotFound, res.StatusCode)
	s.Equal("User not found.", out.Message)
}

func (s *LedgerHandlerTestSuite) TestHistory() {
	alice, bob := "alice", "bob"
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.HistoryEntry{
		{
			Transaction: domain.Transaction{
				ID: 1, CreatedAt: createdAt, Destination: &alice, Amount: decimal.RequireFromString("100"),
			},
			Kind: domain.KindDeposit,
		},
		{
			Transaction: domain.Transaction{
				ID: 4, CreatedAt: createdAt, Source: &alice, Destination: &bob, Amount: decimal.RequireFromString("30.5"),
			},
			Kind: domain.KindTransferOut,
		},
	}
	s.mockLedgerService.EXPECT().GetHistory(gomock.Any(), "alice").Return(entries, nil)

	var out struct {
		Success bool `json:"success"`
		History []struct {
			ID       int64   `json:"id"`
			Type     string  `json:"type"`
			FromUser *string `json:"from_user"`
			ToUser   *string `json:"to_user"`
			Amount   string  `json:"amount"`
			Time     string  `json:"time"`
		} `json:"history"`
	}
	res := s.request(http.MethodGet, RouteGroup+HistoryRoute, "", true, &out)
	s.Equal(http.StatusOK, res.StatusCode)
	s.True(out.Success)
	s.Require().Len(out.History, 2)

	s.Equal(int64(1), out.History[0].ID)
	s.Equal("DEPOSIT", out.History[0].Type)
	s.Nil(out.History[0].FromUser)
	s.Equal("100.00", out.History[0].Amount)
	s.Equal(createdAt.Format(time.RFC3339), out.History[0].Time)

	s.Equal(int64(4), out.History[1].ID)
	s.Equal("TRANSFER_OUT", out.History[1].Type)
	s.Require().NotNil(out.History[1].ToUser)
	s.Equal("bob", *out.History[1].ToUser)
	s.Equal("30.50", out.History[1].Amount)
}

func (s *LedgerHandlerTestSuite) TestRequestIDPropagation() {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    PingRoute,
	}
	res, err := testutils.MakeRequest(args, testutils.WithHeader(middlewares.RequestIDHeader, "req-42"))
	s.Require().NoError(err)
	defer res.Body.Close()

	s.Equal("req-42", res.Header.Get(middlewares.RequestIDHeader))
}

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 10 * time.Second
)

const (
	PingRoute     = "/ping"
	RouteGroup    = "/api"
	RegisterRoute = "/user/register"
	LoginRoute    = "/user/login"
	BalanceRoute  = "/balance"
	DepositRoute  = "/deposit"
	WithdrawRoute = "/withdraw"
	TransferRoute = "/transfer"
	HistoryRoute  = "/history"
)

type RouterArgs struct {
	Logger        *logrus.Logger
	UserService   UserServicer
	LedgerService LedgerServicer
	JWTSecretKey  []byte
	AllowOrigin   string
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORS(args.AllowOrigin))
	r.Use(middlewares.RequestID())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	ledgerHandler := NewLedgerHandler(args.LedgerService)

	r.GET(PingRoute, func(c *gin.Context) {
		c.String(http.StatusOK, "BankServer online")
	})

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(BalanceRoute, ledgerHandler.Balance)
	api.POST(DepositRoute, ledgerHandler.Deposit)
	api.POST(WithdrawRoute, ledgerHandler.Withdraw)
	api.POST(TransferRoute, ledgerHandler.Transfer)
	api.GET(HistoryRoute, ledgerHandler.History)
	return r, nil
}

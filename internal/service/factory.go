package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/groph-bank/internal/service/psswd"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	UserService   *UserService
	LedgerService *LedgerService
}

type FactoryArgs struct {
	JWTSecret   []byte
	TokenExpire time.Duration
	Logger      *logrus.Logger
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(
		unitOfWork,
		args.JWTSecret,
		args.TokenExpire,
		psswd.PasswordHash(psswd.DefaultCost),
	)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	ledgerService, ledgerServiceErr := NewLedgerService(unitOfWork, args.Logger)
	if ledgerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerServiceErr.Error())
	}

	return &AppServices{
		UserService:   userService,
		LedgerService: ledgerService,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service/tokens"
	"github.com/fsdevblog/groph-bank/pkg/uow"
)

const (
	minUsernameLength = 3
	minPasswordLength = 4
	// maxUsernameBytes ограничение колонки accounts.username VARCHAR(32).
	maxUsernameBytes = 32
	// maxPasswordBytes больше bcrypt не хэширует.
	maxPasswordBytes = 72
)

type UserService struct {
	accountRepo    AccountRepository
	psswd          PasswordHasher
	jwtTokenSecret []byte
	jwtTokenExpire time.Duration
}

func NewUserService(
	u uow.UOW,
	jwtTokenSecret []byte,
	jwtTokenExpire time.Duration,
	psswd PasswordHasher,
) (*UserService, error) {
	accountRepo, accountRepoErr :=
		uow.GetRepositoryAs[AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr
	}
	return &UserService{
		accountRepo:    accountRepo,
		psswd:          psswd,
		jwtTokenSecret: jwtTokenSecret,
		jwtTokenExpire: jwtTokenExpire,
	}, nil
}

type RegisterUserArgs struct {
	Username string
	Password string
}

// Register создает аккаунт с нулевым балансом. После успешного создания генерирует jwt token. Возвращает 3 значения:
// созданный аккаунт, токен и ошибку. Юзернейм и пароль обрезаются по краям; слишком короткие или длинные значения дают
// domain.ErrInvalidCredentials, занятый юзернейм - domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.Account, string, error) {
	username := strings.TrimSpace(args.Username)
	password := strings.TrimSpace(args.Password)

	if utf8.RuneCountInString(username) < minUsernameLength || utf8.RuneCountInString(password) < minPasswordLength {
		return nil, "", fmt.Errorf("registering user: %w", domain.ErrInvalidCredentials)
	}
	if len(username) > maxUsernameBytes || len(password) > maxPasswordBytes {
		return nil, "", fmt.Errorf("registering user: %w", domain.ErrInvalidCredentials)
	}

	hash, hashErr := s.psswd.HashPassword(password)
	if hashErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", hashErr.Error())
	}

	account, createErr := s.accountRepo.Create(ctx, repoargs.CreateAccount{
		Username:     username,
		PasswordHash: hash,
	})
	if createErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", createErr)
	}

	token, tokenErr := tokens.GenerateUserJWT(account.Username, s.jwtTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", tokenErr)
	}
	return account, token, nil
}

type LoginUserArgs struct {
	Username string
	Password string
}

// Login аутентифицирует пару логин/пароль. Возвращает domain.ErrRecordNotFound для неизвестного юзера
// и domain.ErrPasswordMissMatch для неверного пароля.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.Account, string, error) {
	account, findErr := s.accountRepo.FindByUsername(ctx, strings.TrimSpace(args.Username))
	if findErr != nil {
		return nil, "", fmt.Errorf("login: %w", findErr)
	}

	if !s.psswd.ComparePassword(strings.TrimSpace(args.Password), account.PasswordHash) {
		return nil, "", fmt.Errorf("login: %w", domain.ErrPasswordMissMatch)
	}

	token, tokenErr := tokens.GenerateUserJWT(account.Username, s.jwtTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("login: %w", tokenErr)
	}
	return account, token, nil
}

package service

import (
	"errors"
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	AccountRepo *repository.AccountRepository
	Cfg         *config.Config
}

func NewAuthService(accountRepo *repository.AccountRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		AccountRepo: accountRepo,
		Cfg:         cfg,
	}
}

func (s *AuthService) Register(account *model.Account) error {
	_, err := s.AccountRepo.FindByUsername(account.Username)
	if err == nil {
		return util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	account.Password = string(hashedPassword)
	if account.Role == "" {
		account.Role = model.Member
	}
	return s.AccountRepo.Create(account)
}

func (s *AuthService) Login(username, password string) (string, *model.Account, error) {
	account, err := s.AccountRepo.FindByUsername(username)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(account, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

func (s *AuthService) GetCurrentAccount(c *gin.Context) *model.Account {
	claims := util.GetAccountFromContext(c)
	if claims == nil {
		return nil
	}

	account, err := s.AccountRepo.FindByID(claims.AccountID)
	if err != nil {
		return nil
	}
	return account
}

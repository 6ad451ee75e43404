package service

import (
	"time"

	"github.com/verone-next/internal/constants"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/shopspring/decimal"
)

// BankService 银行账户余额汇总服务
type BankService struct {
	repo repository.BankAccountRepository
}

// NewBankService 创建银行服务
func NewBankService(repo repository.BankAccountRepository) *BankService {
	return &BankService{repo: repo}
}

// BalanceSummary 余额汇总视图
type BalanceSummary struct {
	Accounts               []models.BankAccount `json:"accounts"`
	TotalBalance           models.Money         `json:"total_balance"`
	TotalAuthorizedBalance models.Money         `json:"total_authorized_balance"`
	Currency               string               `json:"currency"`
	LastUpdated            *time.Time           `json:"last_updated,omitempty"`
}

// Balances 汇总全部账户余额，最近同步时间取各账户最大值
func (s *BankService) Balances() (*BalanceSummary, error) {
	accounts, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	authorized := decimal.Zero
	var lastUpdated *time.Time
	currency := constants.CurrencyDefault
	for i := range accounts {
		account := &accounts[i]
		total = total.Add(account.Balance.Decimal)
		authorized = authorized.Add(account.AuthorizedBalance.Decimal)
		if account.Currency != "" {
			currency = account.Currency
		}
		if account.SyncedAt != nil && (lastUpdated == nil || account.SyncedAt.After(*lastUpdated)) {
			lastUpdated = account.SyncedAt
		}
	}

	return &BalanceSummary{
		Accounts:               accounts,
		TotalBalance:           models.NewMoneyFromDecimal(total),
		TotalAuthorizedBalance: models.NewMoneyFromDecimal(authorized),
		Currency:               currency,
		LastUpdated:            lastUpdated,
	}, nil
}

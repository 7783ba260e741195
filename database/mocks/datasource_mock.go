package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/m-islam-ciplc/bank-recon/model"
)

// MockDataSource is a testify mock of database.IDataSource.
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) GetBankCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataSource) GetAccountNumbers(ctx context.Context, bankCode string) ([]string, error) {
	args := m.Called(ctx, bankCode)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataSource) GetUnmatchedBankRecords(ctx context.Context, bankCode, accountNumber string) ([]model.BankRecord, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	return args.Get(0).([]model.BankRecord), args.Error(1)
}

func (m *MockDataSource) GetUnmatchedFinanceRecords(ctx context.Context, bankCode, accountNumber string) ([]model.FinanceRecord, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	return args.Get(0).([]model.FinanceRecord), args.Error(1)
}

func (m *MockDataSource) GetUnmatchedTallyRecords(ctx context.Context, bankCode, accountNumber string) ([]model.TallyRecord, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	return args.Get(0).([]model.TallyRecord), args.Error(1)
}

func (m *MockDataSource) GetChequeEligibleBankRecords(ctx context.Context, bankCode, accountNumber string) ([]model.BankRecord, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	return args.Get(0).([]model.BankRecord), args.Error(1)
}

func (m *MockDataSource) GetChequeEligibleTallyRecords(ctx context.Context, bankCode, accountNumber string) ([]model.TallyRecord, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	return args.Get(0).([]model.TallyRecord), args.Error(1)
}

func (m *MockDataSource) GetBankFinanceGroups(ctx context.Context, bankCode, accountNumber string) ([]model.MatchGroup, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	return args.Get(0).([]model.MatchGroup), args.Error(1)
}

func (m *MockDataSource) GetMatchGroupsByRun(ctx context.Context, runID string) ([]model.MatchGroup, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).([]model.MatchGroup), args.Error(1)
}

func (m *MockDataSource) RecordReconciliationRun(ctx context.Context, run *model.ReconciliationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDataSource) UpdateReconciliationRunStatus(ctx context.Context, runID, status string, matched, unmatched int) error {
	args := m.Called(ctx, runID, status, matched, unmatched)
	return args.Error(0)
}

func (m *MockDataSource) GetReconciliationRun(ctx context.Context, runID string) (*model.ReconciliationRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconciliationRun), args.Error(1)
}

func (m *MockDataSource) SaveBankFinanceMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction) error {
	args := m.Called(ctx, runID, records, flags)
	return args.Error(0)
}

func (m *MockDataSource) SaveChainMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction, sourceMatchIDs []string) error {
	args := m.Called(ctx, runID, records, flags, sourceMatchIDs)
	return args.Error(0)
}

func (m *MockDataSource) SaveChequeMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction) error {
	args := m.Called(ctx, runID, records, flags)
	return args.Error(0)
}

/*
Copyright 2025 Bank Recon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/m-islam-ciplc/bank-recon/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	record         // Interface for source-record retrieval
	reconciliation // Interface for run and match persistence
}

// record defines methods for reading the imported source-record pools.
// Every pool query returns rows in primary-key order so the matchers see a
// stable scan order across retries of the same run.
type record interface {
	GetBankCodes(ctx context.Context) ([]string, error)                                                                // Lists distinct bank codes with imported statements
	GetAccountNumbers(ctx context.Context, bankCode string) ([]string, error)                                          // Lists distinct account numbers for one bank
	GetUnmatchedBankRecords(ctx context.Context, bankCode, accountNumber string) ([]model.BankRecord, error)           // Bank rows not yet claimed by the bank-finance stage
	GetUnmatchedFinanceRecords(ctx context.Context, bankCode, accountNumber string) ([]model.FinanceRecord, error)     // Finance rows not yet claimed by the bank-finance stage
	GetUnmatchedTallyRecords(ctx context.Context, bankCode, accountNumber string) ([]model.TallyRecord, error)         // Tally rows not yet claimed by the chain stage
	GetChequeEligibleBankRecords(ctx context.Context, bankCode, accountNumber string) ([]model.BankRecord, error)      // Bank rows free for the cheque stage
	GetChequeEligibleTallyRecords(ctx context.Context, bankCode, accountNumber string) ([]model.TallyRecord, error)    // Tally rows free for the cheque stage
	GetBankFinanceGroups(ctx context.Context, bankCode, accountNumber string) ([]model.MatchGroup, error)              // Completed bank-finance groups not yet consumed by a chain
	GetMatchGroupsByRun(ctx context.Context, runID string) ([]model.MatchGroup, error)                                 // Match groups produced by one run
}

// reconciliation defines methods for run tracking and atomic match persistence.
type reconciliation interface {
	RecordReconciliationRun(ctx context.Context, run *model.ReconciliationRun) error
	UpdateReconciliationRunStatus(ctx context.Context, runID, status string, matched, unmatched int) error
	GetReconciliationRun(ctx context.Context, runID string) (*model.ReconciliationRun, error)
	SaveBankFinanceMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction) error
	SaveChainMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction, sourceMatchIDs []string) error
	SaveChequeMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction) error
}

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

package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel"

	"github.com/m-islam-ciplc/bank-recon/config"
	"github.com/m-islam-ciplc/bank-recon/internal/notification"
	"github.com/m-islam-ciplc/bank-recon/model"
)

// Match-id prefixes per stage. The full id is <prefix>_<runTag>_<seq>.
const (
	bankFinancePrefix = "BFM"
	chainPrefix       = "BFTM"
	chequePrefix      = "BTM"
)

const runSummaryTTL = 24 * time.Hour

// RunSummary is what a completed run reports back: counters by side plus the
// identifiers needed to fetch the persisted detail later.
type RunSummary struct {
	RunID            string `json:"run_id"`
	RunTag           string `json:"run_tag"`
	Stage            string `json:"stage"`
	BankCode         string `json:"bank_code"`
	AccountNumber    string `json:"account_number"`
	MatchedGroups    int    `json:"matched_groups"`
	MatchedRecords   int    `json:"matched_records"`
	UnmatchedBank    int    `json:"unmatched_bank"`
	UnmatchedFinance int    `json:"unmatched_finance"`
	UnmatchedTally   int    `json:"unmatched_tally"`
	IsDryRun         bool   `json:"is_dry_run"`
}

// StartBankFinanceRun executes the bank-finance matching stage over the
// unmatched pools of one (bank, account) scope. A dry run computes and reports
// the matches without persisting anything.
func (s *Recon) StartBankFinanceRun(ctx context.Context, bankCode, accountNumber string, isDryRun bool) (*RunSummary, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Starting bank-finance run")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	run, err := s.beginRun(ctx, model.StageBankFinance, bankCode, accountNumber, isDryRun)
	if err != nil {
		return nil, err
	}

	bank, err := s.datasource.GetUnmatchedBankRecords(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}
	finance, err := s.datasource.GetUnmatchedFinanceRecords(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	result := MatchBankFinance(bankCode, accountNumber, bank, finance, cnf.Dialect(bankCode), cnf.Matching)
	assignMatchIDs(result.Groups, bankFinancePrefix, run.RunTag)

	matchedAt := time.Now()
	records := flattenGroups(result.Groups, model.StageBankFinance, matchedAt)
	flags := flagInstructions(result.Groups, matchedAt)

	if !isDryRun {
		if err := s.datasource.SaveBankFinanceMatches(ctx, run.RunID, records, flags); err != nil {
			return nil, s.failRun(ctx, run, err)
		}
	}

	summary := &RunSummary{
		RunID:            run.RunID,
		RunTag:           run.RunTag,
		Stage:            run.Stage,
		BankCode:         bankCode,
		AccountNumber:    accountNumber,
		MatchedGroups:    len(result.Groups),
		MatchedRecords:   len(records),
		UnmatchedBank:    len(result.UnmatchedBank),
		UnmatchedFinance: len(result.UnmatchedFinance),
		IsDryRun:         isDryRun,
	}
	unmatched := summary.UnmatchedBank + summary.UnmatchedFinance
	return summary, s.completeRun(ctx, run, summary, unmatched)
}

// StartChainRun extends persisted bank-finance groups into the tally ledger.
func (s *Recon) StartChainRun(ctx context.Context, bankCode, accountNumber string, isDryRun bool) (*RunSummary, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Starting chain run")
	defer span.End()

	run, err := s.beginRun(ctx, model.StageChain, bankCode, accountNumber, isDryRun)
	if err != nil {
		return nil, err
	}

	groups, err := s.datasource.GetBankFinanceGroups(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}
	tally, err := s.datasource.GetUnmatchedTallyRecords(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	result := MatchChain(groups, tally)
	assignMatchIDs(result.Groups, chainPrefix, run.RunTag)

	matchedAt := time.Now()
	records := flattenGroups(result.Groups, model.StageChain, matchedAt)
	flags := flagInstructions(result.Groups, matchedAt)
	sourceMatchIDs := make([]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		sourceMatchIDs = append(sourceMatchIDs, g.SourceMatchID)
	}

	if !isDryRun {
		if err := s.datasource.SaveChainMatches(ctx, run.RunID, records, flags, sourceMatchIDs); err != nil {
			return nil, s.failRun(ctx, run, err)
		}
	}

	claimedTally := 0
	for _, g := range result.Groups {
		claimedTally += len(g.Tally)
	}
	summary := &RunSummary{
		RunID:          run.RunID,
		RunTag:         run.RunTag,
		Stage:          run.Stage,
		BankCode:       bankCode,
		AccountNumber:  accountNumber,
		MatchedGroups:  len(result.Groups),
		MatchedRecords: len(records),
		UnmatchedTally: len(tally) - claimedTally,
		IsDryRun:       isDryRun,
	}
	return summary, s.completeRun(ctx, run, summary, result.SkippedGroups)
}

// StartChequeRun pairs cheque-bearing bank rows with tally rows for one
// dialect.
func (s *Recon) StartChequeRun(ctx context.Context, bankCode, accountNumber string, isDryRun bool) (*RunSummary, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Starting cheque run")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	run, err := s.beginRun(ctx, model.StageCheque, bankCode, accountNumber, isDryRun)
	if err != nil {
		return nil, err
	}

	bank, err := s.datasource.GetChequeEligibleBankRecords(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}
	tally, err := s.datasource.GetChequeEligibleTallyRecords(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	groups, err := MatchCheques(bank, tally, cnf.Dialect(bankCode))
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}
	assignMatchIDs(groups, chequePrefix, run.RunTag)

	matchedAt := time.Now()
	records := flattenGroups(groups, model.StageCheque, matchedAt)
	flags := flagInstructions(groups, matchedAt)

	if !isDryRun {
		if err := s.datasource.SaveChequeMatches(ctx, run.RunID, records, flags); err != nil {
			return nil, s.failRun(ctx, run, err)
		}
	}

	summary := &RunSummary{
		RunID:          run.RunID,
		RunTag:         run.RunTag,
		Stage:          run.Stage,
		BankCode:       bankCode,
		AccountNumber:  accountNumber,
		MatchedGroups:  len(groups),
		MatchedRecords: len(records),
		UnmatchedBank:  len(bank) - len(groups),
		UnmatchedTally: len(tally) - len(groups),
		IsDryRun:       isDryRun,
	}
	unmatched := summary.UnmatchedBank + summary.UnmatchedTally
	return summary, s.completeRun(ctx, run, summary, unmatched)
}

// GetRunSummary returns the cached summary of a recent run, falling back to
// the persisted run record when the cache has moved on.
func (s *Recon) GetRunSummary(ctx context.Context, runID string) (*RunSummary, error) {
	var summary RunSummary
	if s.cache != nil {
		if err := s.cache.Get(ctx, runSummaryKey(runID), &summary); err == nil && summary.RunID != "" {
			return &summary, nil
		}
	}

	run, err := s.datasource.GetReconciliationRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &RunSummary{
		RunID:          run.RunID,
		RunTag:         run.RunTag,
		Stage:          run.Stage,
		BankCode:       run.BankCode,
		AccountNumber:  run.AccountNumber,
		MatchedRecords: run.MatchedRecords,
		IsDryRun:       run.IsDryRun,
	}, nil
}

// GetReconciliationRun returns the persisted run record.
func (s *Recon) GetReconciliationRun(ctx context.Context, runID string) (*model.ReconciliationRun, error) {
	return s.datasource.GetReconciliationRun(ctx, runID)
}

// GetMatchGroups returns the match groups one run produced.
func (s *Recon) GetMatchGroups(ctx context.Context, runID string) ([]model.MatchGroup, error) {
	return s.datasource.GetMatchGroupsByRun(ctx, runID)
}

// GetBankCodes lists the bank codes with imported statements.
func (s *Recon) GetBankCodes(ctx context.Context) ([]string, error) {
	return s.datasource.GetBankCodes(ctx)
}

// GetAccountNumbers lists the imported account numbers for one bank.
func (s *Recon) GetAccountNumbers(ctx context.Context, bankCode string) ([]string, error) {
	return s.datasource.GetAccountNumbers(ctx, bankCode)
}

func (s *Recon) beginRun(ctx context.Context, stage, bankCode, accountNumber string, isDryRun bool) (*model.ReconciliationRun, error) {
	now := time.Now()
	run := &model.ReconciliationRun{
		RunID:         model.GenerateUUIDWithSuffix("run"),
		RunTag:        model.NewRunTag(bankCode, accountNumber, now),
		Stage:         stage,
		BankCode:      bankCode,
		AccountNumber: accountNumber,
		Status:        model.StatusStarted,
		IsDryRun:      isDryRun,
		StartedAt:     now,
	}
	if err := s.datasource.RecordReconciliationRun(ctx, run); err != nil {
		return nil, err
	}
	if err := s.datasource.UpdateReconciliationRunStatus(ctx, run.RunID, model.StatusInProgress, 0, 0); err != nil {
		return nil, err
	}
	logrus.Infof("reconciliation run %s started: stage=%s bank=%s account=%s dry_run=%v",
		run.RunID, stage, bankCode, accountNumber, isDryRun)
	return run, nil
}

func (s *Recon) completeRun(ctx context.Context, run *model.ReconciliationRun, summary *RunSummary, unmatched int) error {
	run.Status = model.StatusCompleted
	run.CompletedAt = ptr.Time(time.Now())
	err := s.datasource.UpdateReconciliationRunStatus(ctx, run.RunID, model.StatusCompleted, summary.MatchedRecords, unmatched)
	if err != nil {
		return s.failRun(ctx, run, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, runSummaryKey(run.RunID), summary, runSummaryTTL); err != nil {
			logrus.Warnf("failed to cache summary for run %s: %v", run.RunID, err)
		}
	}
	logrus.Infof("reconciliation run %s completed: %d groups, %d records matched, %d unmatched",
		run.RunID, summary.MatchedGroups, summary.MatchedRecords, unmatched)
	return nil
}

// failRun marks the run failed and reports the cause. The original error is
// returned so callers propagate it, not the bookkeeping error.
func (s *Recon) failRun(ctx context.Context, run *model.ReconciliationRun, cause error) error {
	run.Status = model.StatusFailed
	run.CompletedAt = ptr.Time(time.Now())
	notification.NotifyError(fmt.Errorf("reconciliation run %s failed: %w", run.RunID, cause))
	if err := s.datasource.UpdateReconciliationRunStatus(ctx, run.RunID, model.StatusFailed, 0, 0); err != nil {
		logrus.Errorf("failed to mark run %s as failed: %v", run.RunID, err)
	}
	return cause
}

func runSummaryKey(runID string) string {
	return "recon:run:" + runID
}

// assignMatchIDs rewrites the matchers' sequential ids into globally unique
// ones carrying the stage prefix and run tag, preserving discovery order.
func assignMatchIDs(groups []model.MatchGroup, prefix, runTag string) {
	for i := range groups {
		groups[i].MatchID = fmt.Sprintf("%s_%s_%04d", prefix, runTag, i+1)
	}
}

// flattenGroups explodes match groups into one persistable row per member.
func flattenGroups(groups []model.MatchGroup, stage string, matchedAt time.Time) []model.MatchRecord {
	var records []model.MatchRecord
	for _, g := range groups {
		for _, b := range g.Bank {
			records = append(records, model.MatchRecord{
				MatchID:       g.MatchID,
				MatchType:     g.MatchType,
				Stage:         stage,
				Source:        model.SourceBank,
				RecordUID:     b.BankUID,
				BankCode:      b.BankCode,
				AccountNumber: b.AccountNumber,
				Amount:        b.Withdrawal,
				Date:          b.Date,
				MatchedAt:     matchedAt,
			})
		}
		for _, f := range g.Finance {
			records = append(records, model.MatchRecord{
				MatchID:       g.MatchID,
				MatchType:     g.MatchType,
				Stage:         stage,
				Source:        model.SourceFinance,
				RecordUID:     f.FinUID,
				BankCode:      f.BankCode,
				AccountNumber: f.AccountNumber,
				Amount:        f.CreditAmount,
				Date:          f.PaymentDate,
				VoucherNo:     f.VoucherNo,
				MatchedAt:     matchedAt,
			})
		}
		for _, t := range g.Tally {
			records = append(records, model.MatchRecord{
				MatchID:       g.MatchID,
				MatchType:     g.MatchType,
				Stage:         stage,
				Source:        model.SourceTally,
				RecordUID:     t.TallyUID,
				BankCode:      t.BankCode,
				AccountNumber: t.AccountNumber,
				Amount:        t.Credit,
				Date:          t.Date,
				VoucherNo:     t.VoucherNo,
				MatchedAt:     matchedAt,
			})
		}
	}
	return records
}

// flagInstructions collects the per-source uid lists whose stage flags flip
// alongside the match rows.
func flagInstructions(groups []model.MatchGroup, matchedAt time.Time) []model.FlagInstruction {
	var bankUIDs, finUIDs, tallyUIDs []string
	for _, g := range groups {
		for _, b := range g.Bank {
			bankUIDs = append(bankUIDs, b.BankUID)
		}
		for _, f := range g.Finance {
			finUIDs = append(finUIDs, f.FinUID)
		}
		for _, t := range g.Tally {
			tallyUIDs = append(tallyUIDs, t.TallyUID)
		}
	}

	var flags []model.FlagInstruction
	if len(bankUIDs) > 0 {
		flags = append(flags, model.FlagInstruction{Source: model.SourceBank, RecordUIDs: bankUIDs, MatchedAt: matchedAt})
	}
	if len(finUIDs) > 0 {
		flags = append(flags, model.FlagInstruction{Source: model.SourceFinance, RecordUIDs: finUIDs, MatchedAt: matchedAt})
	}
	if len(tallyUIDs) > 0 {
		flags = append(flags, model.FlagInstruction{Source: model.SourceTally, RecordUIDs: tallyUIDs, MatchedAt: matchedAt})
	}
	return flags
}

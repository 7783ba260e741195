package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/m-islam-ciplc/bank-recon/internal/apierror"
	"github.com/m-islam-ciplc/bank-recon/model"
)

// RecordReconciliationRun inserts a new run record.
func (d Datasource) RecordReconciliationRun(ctx context.Context, run *model.ReconciliationRun) error {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Saving reconciliation run to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO reconciliation_runs(
			run_id, run_tag, stage, bank_code, account_number, status,
			matched_records, unmatched_records, is_dry_run, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.RunID, run.RunTag, run.Stage, run.BankCode, run.AccountNumber, run.Status,
		run.MatchedRecords, run.UnmatchedRecords, run.IsDryRun, run.StartedAt, run.CompletedAt,
	)

	return err
}

// UpdateReconciliationRunStatus updates the status and counters of a run.
// A terminal status stamps the completion time.
func (d Datasource) UpdateReconciliationRunStatus(ctx context.Context, runID string, status string, matched, unmatched int) error {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Updating reconciliation run status")
	defer span.End()

	completedAt := sql.NullTime{
		Time:  time.Now(),
		Valid: status == model.StatusCompleted || status == model.StatusFailed,
	}

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE reconciliation_runs
		SET status = $2, matched_records = $3, unmatched_records = $4, completed_at = $5
		WHERE run_id = $1
	`, runID, status, matched, unmatched, completedAt)

	return err
}

// GetReconciliationRun retrieves a run by its id.
func (d Datasource) GetReconciliationRun(ctx context.Context, runID string) (*model.ReconciliationRun, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching reconciliation run from db")
	defer span.End()

	run := &model.ReconciliationRun{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, run_id, run_tag, stage, bank_code, account_number, status,
			matched_records, unmatched_records, is_dry_run, started_at, completed_at
		FROM reconciliation_runs
		WHERE run_id = $1
	`, runID).Scan(
		&run.ID, &run.RunID, &run.RunTag, &run.Stage, &run.BankCode,
		&run.AccountNumber, &run.Status, &run.MatchedRecords,
		&run.UnmatchedRecords, &run.IsDryRun, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("reconciliation run %s not found", runID), err)
		}
		return nil, err
	}
	return run, nil
}

// SaveBankFinanceMatches persists a bank-finance run's match members and flips
// the stage flags on their source rows, all in one transaction.
func (d Datasource) SaveBankFinanceMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction) error {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Saving bank-finance matches to db")
	defer span.End()

	return d.saveMatches(ctx, runID, model.StageBankFinance, records, flags, nil)
}

// SaveChainMatches persists a chain run. Besides the member rows and the
// source-row flags, the consumed bank-finance groups are marked so later chain
// runs never extend them twice.
func (d Datasource) SaveChainMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction, sourceMatchIDs []string) error {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Saving chain matches to db")
	defer span.End()

	return d.saveMatches(ctx, runID, model.StageChain, records, flags, sourceMatchIDs)
}

// SaveChequeMatches persists a cheque run's pairs and flags.
func (d Datasource) SaveChequeMatches(ctx context.Context, runID string, records []model.MatchRecord, flags []model.FlagInstruction) error {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Saving cheque matches to db")
	defer span.End()

	return d.saveMatches(ctx, runID, model.StageCheque, records, flags, nil)
}

func (d Datasource) saveMatches(ctx context.Context, runID, stage string, records []model.MatchRecord, flags []model.FlagInstruction, sourceMatchIDs []string) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO match_records(
				run_id, match_id, match_type, stage, source, record_uid,
				bank_code, account_number, amount, date, voucher_no, matched_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			runID, rec.MatchID, rec.MatchType, stage, rec.Source, rec.RecordUID,
			rec.BankCode, rec.AccountNumber, rec.Amount, rec.Date, rec.VoucherNo, rec.MatchedAt,
		)
		if err != nil {
			return err
		}
	}

	for _, flag := range flags {
		stmt, err := flagUpdateStatement(stage, flag.Source)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, stmt, flag.MatchedAt, pq.Array(flag.RecordUIDs))
		if err != nil {
			return err
		}
	}

	if len(sourceMatchIDs) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE match_records SET chain_matched = TRUE
			WHERE stage = $1 AND match_id = ANY($2)
		`, model.StageBankFinance, pq.Array(sourceMatchIDs))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// flagUpdateStatement resolves the table, uid column and flag columns for a
// (stage, source) pair. Not every source participates in every stage.
func flagUpdateStatement(stage string, source model.Source) (string, error) {
	var table, uidCol, flagCol string
	switch source {
	case model.SourceBank:
		table, uidCol = "bank_records", "bank_uid"
	case model.SourceFinance:
		table, uidCol = "finance_records", "fin_uid"
	case model.SourceTally:
		table, uidCol = "tally_records", "tally_uid"
	default:
		return "", fmt.Errorf("unknown source %q", source)
	}

	switch stage {
	case model.StageBankFinance:
		if source == model.SourceTally {
			return "", fmt.Errorf("source %q does not participate in stage %q", source, stage)
		}
		flagCol = "bank_finance_matched"
	case model.StageChain:
		flagCol = "chain_matched"
	case model.StageCheque:
		if source == model.SourceFinance {
			return "", fmt.Errorf("source %q does not participate in stage %q", source, stage)
		}
		flagCol = "cheque_matched"
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}

	return fmt.Sprintf(
		`UPDATE %s SET %s = TRUE, %s_at = $1 WHERE %s = ANY($2)`,
		table, flagCol, flagCol, uidCol,
	), nil
}

// GetMatchGroupsByRun reassembles the match groups one run produced, in the
// order their member rows were written.
func (d Datasource) GetMatchGroupsByRun(ctx context.Context, runID string) ([]model.MatchGroup, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching match groups by run from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT match_id, match_type, source, record_uid, amount, date, voucher_no
		FROM match_records
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.MatchGroup
	index := make(map[string]int)
	for rows.Next() {
		var matchID, matchType, uid, amount, date, voucherNo string
		var source model.Source
		err := rows.Scan(&matchID, &matchType, &source, &uid, &amount, &date, &voucherNo)
		if err != nil {
			return nil, err
		}
		i, ok := index[matchID]
		if !ok {
			groups = append(groups, model.MatchGroup{MatchID: matchID, MatchType: matchType})
			i = len(groups) - 1
			index[matchID] = i
		}
		switch source {
		case model.SourceBank:
			groups[i].Bank = append(groups[i].Bank, model.BankRecord{
				BankUID: uid, Date: date, Withdrawal: amount,
			})
		case model.SourceFinance:
			groups[i].Finance = append(groups[i].Finance, model.FinanceRecord{
				FinUID: uid, PaymentDate: date, CreditAmount: amount, VoucherNo: voucherNo,
			})
		case model.SourceTally:
			groups[i].Tally = append(groups[i].Tally, model.TallyRecord{
				TallyUID: uid, Date: date, Credit: amount, VoucherNo: voucherNo,
			})
		}
	}
	return groups, rows.Err()
}

package database

import (
	"context"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/m-islam-ciplc/bank-recon/model"
)

// GetBankCodes lists the distinct bank codes that have imported statements.
func (d Datasource) GetBankCodes(ctx context.Context) ([]string, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching bank codes from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT DISTINCT bank_code FROM bank_records ORDER BY bank_code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// GetAccountNumbers lists the distinct account numbers imported for one bank.
func (d Datasource) GetAccountNumbers(ctx context.Context, bankCode string) ([]string, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching account numbers from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT DISTINCT account_number FROM bank_records
		WHERE bank_code = $1
		ORDER BY account_number
	`, bankCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var acct string
		if err := rows.Scan(&acct); err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// GetUnmatchedBankRecords fetches bank rows not yet claimed by the
// bank-finance stage. Rows come back in insertion order; the matchers depend
// on a stable scan order for deterministic first-found resolution.
func (d Datasource) GetUnmatchedBankRecords(ctx context.Context, bankCode, accountNumber string) ([]model.BankRecord, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching unmatched bank records from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, bank_uid, bank_code, account_number, date, particulars,
			vendor, withdrawal, deposit, balance, cheque_ref
		FROM bank_records
		WHERE bank_finance_matched = FALSE
			AND bank_code = $1
			AND ($2 = '' OR account_number = $2)
		ORDER BY id
	`, bankCode, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBankRecords(rows)
}

// GetChequeEligibleBankRecords fetches bank rows free for the cheque stage:
// claimed by neither the bank-finance stage nor an earlier cheque run.
func (d Datasource) GetChequeEligibleBankRecords(ctx context.Context, bankCode, accountNumber string) ([]model.BankRecord, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching cheque-eligible bank records from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, bank_uid, bank_code, account_number, date, particulars,
			vendor, withdrawal, deposit, balance, cheque_ref
		FROM bank_records
		WHERE bank_finance_matched = FALSE
			AND cheque_matched = FALSE
			AND bank_code = $1
			AND ($2 = '' OR account_number = $2)
		ORDER BY id
	`, bankCode, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBankRecords(rows)
}

func scanBankRecords(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]model.BankRecord, error) {
	var records []model.BankRecord
	for rows.Next() {
		var r model.BankRecord
		err := rows.Scan(
			&r.ID, &r.BankUID, &r.BankCode, &r.AccountNumber, &r.Date,
			&r.Particulars, &r.Vendor, &r.Withdrawal, &r.Deposit,
			&r.Balance, &r.ChequeRef,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetUnmatchedFinanceRecords fetches finance rows not yet claimed by the
// bank-finance stage. Scoping by sender bank/account happens again inside the
// matcher; the query narrows the pool so retries stay cheap.
func (d Datasource) GetUnmatchedFinanceRecords(ctx context.Context, bankCode, accountNumber string) ([]model.FinanceRecord, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching unmatched finance records from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, fin_uid, bank_code, account_number, payment_date,
			vendor, credit_amount, voucher_no
		FROM finance_records
		WHERE bank_finance_matched = FALSE
			AND bank_code = $1
			AND ($2 = '' OR account_number = $2)
		ORDER BY id
	`, bankCode, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.FinanceRecord
	for rows.Next() {
		var r model.FinanceRecord
		err := rows.Scan(
			&r.ID, &r.FinUID, &r.BankCode, &r.AccountNumber,
			&r.PaymentDate, &r.Vendor, &r.CreditAmount, &r.VoucherNo,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetUnmatchedTallyRecords fetches tally rows not yet claimed by the chain
// stage, in insertion order.
func (d Datasource) GetUnmatchedTallyRecords(ctx context.Context, bankCode, accountNumber string) ([]model.TallyRecord, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching unmatched tally records from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, tally_uid, bank_code, account_number, date, particulars,
			voucher_no, debit, credit
		FROM tally_records
		WHERE chain_matched = FALSE
			AND bank_code = $1
			AND ($2 = '' OR account_number = $2)
		ORDER BY id
	`, bankCode, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTallyRecords(rows)
}

// GetChequeEligibleTallyRecords fetches tally rows free for the cheque stage.
func (d Datasource) GetChequeEligibleTallyRecords(ctx context.Context, bankCode, accountNumber string) ([]model.TallyRecord, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching cheque-eligible tally records from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, tally_uid, bank_code, account_number, date, particulars,
			voucher_no, debit, credit
		FROM tally_records
		WHERE chain_matched = FALSE
			AND cheque_matched = FALSE
			AND bank_code = $1
			AND ($2 = '' OR account_number = $2)
		ORDER BY id
	`, bankCode, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTallyRecords(rows)
}

func scanTallyRecords(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]model.TallyRecord, error) {
	var records []model.TallyRecord
	for rows.Next() {
		var r model.TallyRecord
		err := rows.Scan(
			&r.ID, &r.TallyUID, &r.BankCode, &r.AccountNumber, &r.Date,
			&r.Particulars, &r.VoucherNo, &r.Debit, &r.Credit,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetBankFinanceGroups rebuilds the completed bank-finance match groups that
// no chain has consumed yet. The member rows in match_records are the group
// skeleton; the live bank and finance rows are joined back in by uid so the
// chain matcher sees full records.
func (d Datasource) GetBankFinanceGroups(ctx context.Context, bankCode, accountNumber string) ([]model.MatchGroup, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching bank-finance groups from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT match_id, match_type, source, record_uid
		FROM match_records
		WHERE stage = $1
			AND chain_matched = FALSE
			AND bank_code = $2
			AND ($3 = '' OR account_number = $3)
		ORDER BY id
	`, model.StageBankFinance, bankCode, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type member struct {
		source model.Source
		uid    string
	}
	var order []string
	groupMembers := make(map[string][]member)
	groupTypes := make(map[string]string)
	var bankUIDs, finUIDs []string
	for rows.Next() {
		var matchID, matchType, uid string
		var source model.Source
		if err := rows.Scan(&matchID, &matchType, &source, &uid); err != nil {
			return nil, err
		}
		if _, seen := groupMembers[matchID]; !seen {
			order = append(order, matchID)
			groupTypes[matchID] = matchType
		}
		groupMembers[matchID] = append(groupMembers[matchID], member{source, uid})
		switch source {
		case model.SourceBank:
			bankUIDs = append(bankUIDs, uid)
		case model.SourceFinance:
			finUIDs = append(finUIDs, uid)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	bankByUID, err := d.bankRecordsByUID(ctx, bankUIDs)
	if err != nil {
		return nil, err
	}
	finByUID, err := d.financeRecordsByUID(ctx, finUIDs)
	if err != nil {
		return nil, err
	}

	groups := make([]model.MatchGroup, 0, len(order))
	for _, matchID := range order {
		g := model.MatchGroup{MatchID: matchID, MatchType: groupTypes[matchID]}
		for _, m := range groupMembers[matchID] {
			switch m.source {
			case model.SourceBank:
				if r, ok := bankByUID[m.uid]; ok {
					g.Bank = append(g.Bank, r)
				}
			case model.SourceFinance:
				if r, ok := finByUID[m.uid]; ok {
					g.Finance = append(g.Finance, r)
				}
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (d Datasource) bankRecordsByUID(ctx context.Context, uids []string) (map[string]model.BankRecord, error) {
	byUID := make(map[string]model.BankRecord, len(uids))
	if len(uids) == 0 {
		return byUID, nil
	}
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, bank_uid, bank_code, account_number, date, particulars,
			vendor, withdrawal, deposit, balance, cheque_ref
		FROM bank_records
		WHERE bank_uid = ANY($1)
	`, pq.Array(uids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanBankRecords(rows)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		byUID[r.BankUID] = r
	}
	return byUID, nil
}

func (d Datasource) financeRecordsByUID(ctx context.Context, uids []string) (map[string]model.FinanceRecord, error) {
	byUID := make(map[string]model.FinanceRecord, len(uids))
	if len(uids) == 0 {
		return byUID, nil
	}
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, fin_uid, bank_code, account_number, payment_date,
			vendor, credit_amount, voucher_no
		FROM finance_records
		WHERE fin_uid = ANY($1)
	`, pq.Array(uids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r model.FinanceRecord
		err := rows.Scan(
			&r.ID, &r.FinUID, &r.BankCode, &r.AccountNumber,
			&r.PaymentDate, &r.Vendor, &r.CreditAmount, &r.VoucherNo,
		)
		if err != nil {
			return nil, err
		}
		byUID[r.FinUID] = r
	}
	return byUID, rows.Err()
}

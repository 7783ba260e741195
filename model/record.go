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
package model

import "time"

// Source identifies which ledger a record (or a match-group member) came from.
type Source string

const (
	SourceBank    Source = "Bank"
	SourceFinance Source = "Finance"
	SourceTally   Source = "Tally"
)

// Matching stages. A record carries one matched flag per stage; no stage
// un-matches a record claimed by an earlier one.
const (
	StageBankFinance = "bank_finance"
	StageChain       = "chain"
	StageCheque      = "cheque"
)

// Run statuses.
const (
	StatusStarted    = "started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// BankRecord is one row of a bank statement as delivered by the parsing
// collaborator. Amounts and dates are kept as captured; coercion happens at
// match time so a malformed value drops the row from candidacy instead of
// failing the run.
type BankRecord struct {
	ID            int64  `json:"-"`
	BankUID       string `json:"bank_uid"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	Date          string `json:"date"`
	Particulars   string `json:"particulars"`
	Vendor        string `json:"vendor"`
	Withdrawal    string `json:"withdrawal"`
	Deposit       string `json:"deposit"`
	Balance       string `json:"balance"`
	ChequeRef     string `json:"cheque_ref"`
}

// FinanceRecord is one row of the internal paid-list export. BankCode and
// AccountNumber are the sender bank/account used to scope candidacy.
type FinanceRecord struct {
	ID            int64  `json:"-"`
	FinUID        string `json:"fin_uid"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	PaymentDate   string `json:"payment_date"`
	Vendor        string `json:"vendor"`
	CreditAmount  string `json:"credit_amount"`
	VoucherNo     string `json:"voucher_no"`
}

// TallyRecord is one row of the accounting ledger export.
type TallyRecord struct {
	ID            int64  `json:"-"`
	TallyUID      string `json:"tally_uid"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	Date          string `json:"date"`
	Particulars   string `json:"particulars"`
	VoucherNo     string `json:"voucher_no"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
}

// MatchGroup is a set of records across sources deemed to represent the same
// real-world transaction. Within a completed group the finance amounts sum to
// the bank amount to the cent, and for chain matches the tally credits do too.
type MatchGroup struct {
	MatchID   string          `json:"match_id"`
	MatchType string          `json:"match_type"`
	Bank      []BankRecord    `json:"bank"`
	Finance   []FinanceRecord `json:"finance"`
	Tally     []TallyRecord   `json:"tally"`
	// SourceMatchID links a chain group back to the bank-finance group it
	// extended, so the earlier group can be marked consumed atomically.
	SourceMatchID string `json:"source_match_id,omitempty"`
}

// MatchRecord is one flattened, persistable member row of a match group.
type MatchRecord struct {
	ID            int64     `json:"-"`
	MatchID       string    `json:"match_id"`
	MatchType     string    `json:"match_type"`
	Stage         string    `json:"stage"`
	Source        Source    `json:"source"`
	RecordUID     string    `json:"record_uid"`
	BankCode      string    `json:"bank_code"`
	AccountNumber string    `json:"account_number"`
	Amount        string    `json:"amount"`
	Date          string    `json:"date"`
	VoucherNo     string    `json:"voucher_no"`
	MatchedAt     time.Time `json:"matched_at"`
}

// FlagInstruction tells the persistence layer which source rows to flip to
// matched for a stage. It is applied in the same transaction as the match
// records so a run never half-commits.
type FlagInstruction struct {
	Source     Source    `json:"source"`
	RecordUIDs []string  `json:"record_uids"`
	MatchedAt  time.Time `json:"matched_at"`
}

// ReconciliationRun tracks one batch run of a matching stage over a single
// (bank, account) scope.
type ReconciliationRun struct {
	ID               int64      `json:"-"`
	RunID            string     `json:"run_id"`
	RunTag           string     `json:"run_tag"`
	Stage            string     `json:"stage"`
	BankCode         string     `json:"bank_code"`
	AccountNumber    string     `json:"account_number"`
	Status           string     `json:"status"`
	MatchedRecords   int        `json:"matched_records"`
	UnmatchedRecords int        `json:"unmatched_records"`
	IsDryRun         bool       `json:"is_dry_run"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// NewRunTag builds the tag embedded in every match id of a run. Encoding the
// bank code, account number and start time keeps ids globally unique across
// repeated runs without a shared sequence.
func NewRunTag(bankCode, accountNumber string, at time.Time) string {
	if accountNumber == "" {
		accountNumber = "UnknownAcct"
	}
	return bankCode + "_" + accountNumber + "_" + at.Format("20060102150405")
}

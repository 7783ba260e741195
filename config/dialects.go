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

package config

// Default bounds for the 1:N combination search.
const (
	DefaultMaxComboSize  = 10
	DefaultMaxComboTries = 1000000
)

// ChequeRule is one reference-extraction rule. Rules are tried in configured
// order; the first that yields a reference of at least MinDigits wins.
//
// Exactly one of Prefix, DynamicPrefix or Pattern is set:
//   - Prefix: a literal prefix immediately followed by a digit run.
//   - DynamicPrefix: a literal prefix anchoring the narration, with the
//     reference pulled from the Nth slash segment and/or the Nth digit run.
//   - Pattern: a whole-text regular expression whose first capture group is
//     the reference.
type ChequeRule struct {
	Prefix         string `json:"prefix,omitempty"`
	DynamicPrefix  string `json:"dynamic_prefix,omitempty"`
	Pattern        string `json:"pattern,omitempty"`
	MinDigits      int    `json:"min_digits"`
	AfterNthNumber int    `json:"extract_after_nth_number,omitempty"`
	AfterNthSlash  int    `json:"extract_after_nth_slash,omitempty"`
	BetweenSlashes []int  `json:"extract_between_nth_and_mth_slash,omitempty"`
}

// ColumnBindings names the statement columns a dialect's parsing collaborator
// maps into the normalized record fields. The core never reads raw columns;
// the bindings are published so parsers and the engine stay agreed on one
// contract per dialect.
type ColumnBindings struct {
	Date       string `json:"date"`
	Narration  string `json:"narration"`
	Withdrawal string `json:"withdrawal"`
	Deposit    string `json:"deposit"`
	Balance    string `json:"balance"`
	Vendor     string `json:"vendor"`
	ChequeRef  string `json:"cheque_ref,omitempty"`
}

// DialectConfig is the immutable per-bank matching configuration: vendor
// alias table, cheque-reference extraction rules and column bindings. Adding
// a bank dialect is a data change, not a code change.
type DialectConfig struct {
	BankCode          string            `json:"bank_code"`
	VendorAliases     map[string]string `json:"vendor_aliases,omitempty"`
	BankChequeRules   []ChequeRule      `json:"bank_cheque_rules,omitempty"`
	TallyChequeRules  []ChequeRule      `json:"tally_cheque_rules,omitempty"`
	UseChequeColumn   bool              `json:"use_cheque_column,omitempty"`
	StripLeadingZeros bool              `json:"strip_leading_zeros,omitempty"`
	// AbsWithdrawals compares withdrawals by magnitude, for statement exports
	// that deliver them sign-flipped.
	AbsWithdrawals bool           `json:"abs_withdrawals,omitempty"`
	Columns        ColumnBindings `json:"columns"`
}

// BuiltinDialects returns the compiled-in dialect tables. A config file can
// override any of them; unknown bank codes degrade to the zero DialectConfig
// (identity aliasing, no cheque extraction).
func BuiltinDialects() map[string]DialectConfig {
	defaultColumns := ColumnBindings{
		Date:       "B_Date",
		Narration:  "B_Particulars",
		Withdrawal: "B_Withdrawal",
		Deposit:    "B_Deposit",
		Balance:    "B_Balance",
		Vendor:     "bank_ven",
	}

	// Shared middle of the tally prefix lists. Rules are first-match-wins, so
	// each dialect splices its own entries around this run in a fixed order.
	tallyCommon := []ChequeRule{
		{Prefix: "A/C-", MinDigits: 5},
		{Prefix: "CD-", MinDigits: 5},
		{Prefix: "STD-", MinDigits: 5},
		{Prefix: "OD#", MinDigits: 5},
		{Prefix: "CQ-", MinDigits: 5},
		{Prefix: "(Hypo)-", MinDigits: 5},
	}

	return map[string]DialectConfig{
		"MDB": {
			BankCode: "MDB",
			VendorAliases: map[string]string{
				"JOYNALANDSONS": "JOYNALSONS",
				"TALIANDCO":     "TALICO",
			},
			BankChequeRules: []ChequeRule{
				{Prefix: "on-line cashca", MinDigits: 5},
				{Prefix: "clg- inwardca", MinDigits: 5},
				{DynamicPrefix: "RTGS RTGS Outward", BetweenSlashes: []int{2, 3}, MinDigits: 5},
				{DynamicPrefix: "RTGS RTGS INWARD", BetweenSlashes: []int{2, 3}, MinDigits: 5},
				{DynamicPrefix: "CLG HV", BetweenSlashes: []int{3, 4}, MinDigits: 5},
			},
			TallyChequeRules: append(append([]ChequeRule{
				{Prefix: "cq-", MinDigits: 5},
				{Prefix: "Cheque No : C ", MinDigits: 5},
			}, tallyCommon...), ChequeRule{Prefix: "SND-", MinDigits: 5}),
			Columns: defaultColumns,
		},
		"MTB": {
			BankCode: "MTB",
			VendorAliases: map[string]string{
				"BANKVENDOR": "FINVENDORALIAS",
			},
			BankChequeRules: []ChequeRule{
				{Prefix: "LC ISSUE CHARGE :", MinDigits: 5},
				{DynamicPrefix: "number to number", AfterNthNumber: 2, MinDigits: 5},
				{DynamicPrefix: "USD", AfterNthNumber: 1, MinDigits: 5},
				{DynamicPrefix: "ACCEPTANCE COMM", AfterNthSlash: 3, MinDigits: 5},
			},
			TallyChequeRules: append(append([]ChequeRule{
				{Prefix: "$", MinDigits: 5},
				{Prefix: "cq-", MinDigits: 5},
			}, tallyCommon...), ChequeRule{Prefix: "GULC#", MinDigits: 5}),
			StripLeadingZeros: true,
			Columns:           defaultColumns,
		},
		"PBL": {
			BankCode: "PBL",
			BankChequeRules: []ChequeRule{
				{Pattern: `\b([A-Z]{2,}[0-9]{6,}[A-Z0-9]*)\b`, MinDigits: 6},
			},
			TallyChequeRules: []ChequeRule{
				{Pattern: `\b([A-Z]{2,}[0-9]{6,}[A-Z0-9]*)\b`, MinDigits: 6},
			},
			UseChequeColumn: true,
			AbsWithdrawals:  true,
			Columns: ColumnBindings{
				Date:       "B_Date",
				Narration:  "B_Particulars",
				Withdrawal: "B_Withdrawal",
				Deposit:    "B_Deposit",
				Balance:    "B_Balance",
				Vendor:     "bank_ven",
				ChequeRef:  "B_Ref_Cheque",
			},
		},
	}
}

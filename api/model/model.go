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

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RunReconciliation is the request body for starting any matching stage.
type RunReconciliation struct {
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	DryRun        bool   `json:"dry_run"`
}

// ValidateBankFinanceRun checks a bank-finance stage request. The account
// number is optional; omitting it reconciles every account of the bank.
func (r *RunReconciliation) ValidateBankFinanceRun() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BankCode, validation.Required),
	)
}

// ValidateChainRun checks a chain stage request.
func (r *RunReconciliation) ValidateChainRun() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BankCode, validation.Required),
		validation.Field(&r.AccountNumber, validation.Required),
	)
}

// ValidateChequeRun checks a cheque stage request. The account number is
// required because cheque references are only unique within one account's
// statement.
func (r *RunReconciliation) ValidateChequeRun() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BankCode, validation.Required),
		validation.Field(&r.AccountNumber, validation.Required),
	)
}

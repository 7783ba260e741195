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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBankFinanceRun(t *testing.T) {
	req := &RunReconciliation{BankCode: "MDB"}
	assert.NoError(t, req.ValidateBankFinanceRun(), "Account number is optional for the bank-finance stage")

	req = &RunReconciliation{}
	assert.Error(t, req.ValidateBankFinanceRun())
}

func TestValidateChainRun(t *testing.T) {
	req := &RunReconciliation{BankCode: "MDB", AccountNumber: "111"}
	assert.NoError(t, req.ValidateChainRun())

	req = &RunReconciliation{BankCode: "MDB"}
	assert.Error(t, req.ValidateChainRun(), "Chain runs require an account number")
}

func TestValidateChequeRun(t *testing.T) {
	req := &RunReconciliation{BankCode: "PBL", AccountNumber: "222"}
	assert.NoError(t, req.ValidateChequeRun())

	req = &RunReconciliation{AccountNumber: "222"}
	assert.Error(t, req.ValidateChequeRun())
}

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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/m-islam-ciplc/bank-recon/model"
)

func TestGetBankCodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{"bank_code"}).AddRow("MDB").AddRow("MTB").AddRow("PBL")
	mock.ExpectQuery("SELECT DISTINCT bank_code FROM bank_records").
		WillReturnRows(rows)

	codes, err := ds.GetBankCodes(context.TODO())
	assert.NoError(t, err)
	assert.Equal(t, []string{"MDB", "MTB", "PBL"}, codes)
}

func TestGetUnmatchedBankRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{
		"id", "bank_uid", "bank_code", "account_number", "date", "particulars",
		"vendor", "withdrawal", "deposit", "balance", "cheque_ref",
	}).
		AddRow(1, "b1", "MDB", "111", "2024-03-04", "CLG payment", "ACME", "100.00", "", "900.00", "").
		AddRow(2, "b2", "MDB", "111", "2024-03-05", "RTGS transfer", "TALI", "250.00", "", "650.00", "")

	mock.ExpectQuery("SELECT (.+) FROM bank_records").
		WithArgs("MDB", "111").
		WillReturnRows(rows)

	records, err := ds.GetUnmatchedBankRecords(context.TODO(), "MDB", "111")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, "b1", records[0].BankUID, "Rows come back in insertion order")
	assert.Equal(t, "ACME", records[0].Vendor)
}

func TestGetUnmatchedFinanceRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{
		"id", "fin_uid", "bank_code", "account_number", "payment_date",
		"vendor", "credit_amount", "voucher_no",
	}).AddRow(1, "f1", "MDB", "111", "2024-03-04", "ACME", "100.00", "PV-1001")

	mock.ExpectQuery("SELECT (.+) FROM finance_records").
		WithArgs("MDB", "111").
		WillReturnRows(rows)

	records, err := ds.GetUnmatchedFinanceRecords(context.TODO(), "MDB", "111")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "PV-1001", records[0].VoucherNo)
}

func TestGetBankFinanceGroups(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	memberRows := sqlmock.NewRows([]string{"match_id", "match_type", "source", "record_uid"}).
		AddRow("BFM_tag_0001", "1 to 1", "Bank", "b1").
		AddRow("BFM_tag_0001", "1 to 1", "Finance", "f1").
		AddRow("BFM_tag_0002", "1 to 2", "Bank", "b2").
		AddRow("BFM_tag_0002", "1 to 2", "Finance", "f2").
		AddRow("BFM_tag_0002", "1 to 2", "Finance", "f3")

	mock.ExpectQuery("SELECT (.+) FROM match_records").
		WithArgs(model.StageBankFinance, "MDB", "111").
		WillReturnRows(memberRows)

	bankRows := sqlmock.NewRows([]string{
		"id", "bank_uid", "bank_code", "account_number", "date", "particulars",
		"vendor", "withdrawal", "deposit", "balance", "cheque_ref",
	}).
		AddRow(1, "b1", "MDB", "111", "2024-03-04", "", "ACME", "100.00", "", "", "").
		AddRow(2, "b2", "MDB", "111", "2024-03-05", "", "TALI", "300.00", "", "", "")
	mock.ExpectQuery("SELECT (.+) FROM bank_records").
		WillReturnRows(bankRows)

	finRows := sqlmock.NewRows([]string{
		"id", "fin_uid", "bank_code", "account_number", "payment_date",
		"vendor", "credit_amount", "voucher_no",
	}).
		AddRow(1, "f1", "MDB", "111", "2024-03-04", "ACME", "100.00", "PV-1001").
		AddRow(2, "f2", "MDB", "111", "2024-03-05", "TALI", "100.00", "PV-1002").
		AddRow(3, "f3", "MDB", "111", "2024-03-05", "TALI", "200.00", "PV-1003")
	mock.ExpectQuery("SELECT (.+) FROM finance_records").
		WillReturnRows(finRows)

	groups, err := ds.GetBankFinanceGroups(context.TODO(), "MDB", "111")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(groups))
	assert.Equal(t, "BFM_tag_0001", groups[0].MatchID)
	assert.Equal(t, 1, len(groups[0].Bank))
	assert.Equal(t, 1, len(groups[0].Finance))
	assert.Equal(t, "BFM_tag_0002", groups[1].MatchID)
	assert.Equal(t, 2, len(groups[1].Finance))
	assert.Equal(t, "PV-1002", groups[1].Finance[0].VoucherNo, "Members keep their original order")
}

func TestGetBankFinanceGroupsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM match_records").
		WithArgs(model.StageBankFinance, "MDB", "").
		WillReturnRows(sqlmock.NewRows([]string{"match_id", "match_type", "source", "record_uid"}))

	groups, err := ds.GetBankFinanceGroups(context.TODO(), "MDB", "")
	assert.NoError(t, err)
	assert.Empty(t, groups)
}

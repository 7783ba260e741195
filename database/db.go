package database

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/lib/pq"

	"github.com/m-islam-ciplc/bank-recon/cache"
	"github.com/m-islam-ciplc/bank-recon/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Cache: nil}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createBankRecordTable(db)
	if err != nil {
		return nil, err
	}
	err = createFinanceRecordTable(db)
	if err != nil {
		return nil, err
	}
	err = createTallyRecordTable(db)
	if err != nil {
		return nil, err
	}
	err = createMatchRecordTable(db)
	if err != nil {
		return nil, err
	}
	err = createReconciliationRunTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createBankRecordTable creates a PostgreSQL table for bank statement rows
func createBankRecordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bank_records (
			id SERIAL PRIMARY KEY,
			bank_uid TEXT NOT NULL UNIQUE,
			bank_code TEXT NOT NULL,
			account_number TEXT NOT NULL,
			date TEXT,
			particulars TEXT,
			vendor TEXT,
			withdrawal TEXT,
			deposit TEXT,
			balance TEXT,
			cheque_ref TEXT,
			bank_finance_matched BOOLEAN NOT NULL DEFAULT FALSE,
			bank_finance_matched_at TIMESTAMP,
			chain_matched BOOLEAN NOT NULL DEFAULT FALSE,
			chain_matched_at TIMESTAMP,
			cheque_matched BOOLEAN NOT NULL DEFAULT FALSE,
			cheque_matched_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createFinanceRecordTable creates a PostgreSQL table for finance paid-list rows
func createFinanceRecordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS finance_records (
			id SERIAL PRIMARY KEY,
			fin_uid TEXT NOT NULL UNIQUE,
			bank_code TEXT NOT NULL,
			account_number TEXT NOT NULL,
			payment_date TEXT,
			vendor TEXT,
			credit_amount TEXT,
			voucher_no TEXT,
			bank_finance_matched BOOLEAN NOT NULL DEFAULT FALSE,
			bank_finance_matched_at TIMESTAMP,
			chain_matched BOOLEAN NOT NULL DEFAULT FALSE,
			chain_matched_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createTallyRecordTable creates a PostgreSQL table for tally ledger rows
func createTallyRecordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tally_records (
			id SERIAL PRIMARY KEY,
			tally_uid TEXT NOT NULL UNIQUE,
			bank_code TEXT NOT NULL,
			account_number TEXT NOT NULL,
			date TEXT,
			particulars TEXT,
			voucher_no TEXT,
			debit TEXT,
			credit TEXT,
			chain_matched BOOLEAN NOT NULL DEFAULT FALSE,
			chain_matched_at TIMESTAMP,
			cheque_matched BOOLEAN NOT NULL DEFAULT FALSE,
			cheque_matched_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createMatchRecordTable creates a PostgreSQL table for flattened match members
func createMatchRecordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS match_records (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			match_id TEXT NOT NULL,
			match_type TEXT NOT NULL,
			stage TEXT NOT NULL,
			source TEXT NOT NULL,
			record_uid TEXT NOT NULL,
			bank_code TEXT NOT NULL,
			account_number TEXT,
			amount TEXT,
			date TEXT,
			voucher_no TEXT,
			chain_matched BOOLEAN NOT NULL DEFAULT FALSE,
			matched_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createReconciliationRunTable creates a PostgreSQL table for run tracking
func createReconciliationRunTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reconciliation_runs (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			run_tag TEXT NOT NULL,
			stage TEXT NOT NULL,
			bank_code TEXT NOT NULL,
			account_number TEXT,
			status TEXT NOT NULL,
			matched_records INTEGER NOT NULL DEFAULT 0,
			unmatched_records INTEGER NOT NULL DEFAULT 0,
			is_dry_run BOOLEAN NOT NULL DEFAULT FALSE,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)
	`)
	return err
}

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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	recon "github.com/m-islam-ciplc/bank-recon"
	"github.com/m-islam-ciplc/bank-recon/config"
	"github.com/m-islam-ciplc/bank-recon/database"
	"github.com/m-islam-ciplc/bank-recon/internal/notification"
)

// Recon represents the CLI application, encapsulating the root Cobra command.
type Recon struct {
	cmd *cobra.Command
}

// reconInstance holds the service instance and its configuration, shared by
// every subcommand after the pre-run hook has initialized them.
type reconInstance struct {
	recon *recon.Recon
	cnf   *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service before any
// command runs.
func preRun(app *reconInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("recon.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newRecon, err := setupRecon(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.recon = newRecon
		app.cnf = cnf

		return nil
	}
}

// setupRecon creates the service from the configured data source.
func setupRecon(cfg *config.Configuration) (*recon.Recon, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newRecon, err := recon.NewRecon(db)
	if err != nil {
		return nil, fmt.Errorf("error creating recon service: %v", err)
	}
	return newRecon, nil
}

// NewCLI creates the command-line interface for the reconciliation service.
func NewCLI() *Recon {
	var configFile string
	b := &reconInstance{}

	var rootCmd = &cobra.Command{
		Use:   "bank-recon",
		Short: "Bank, finance and tally reconciliation",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./recon.json", "Configuration file for the reconciliation service")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(reconcileCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Recon{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur.
func (w Recon) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}

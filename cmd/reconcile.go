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
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	recon "github.com/m-islam-ciplc/bank-recon"
	"github.com/m-islam-ciplc/bank-recon/model"
)

// reconcileCommands creates the command for one-shot reconciliation runs from
// the terminal, without going through the HTTP server.
func reconcileCommands(b *reconInstance) *cobra.Command {
	var bankCode string
	var accountNumber string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile [stage]",
		Short: "run one matching stage (bank-finance, chain or cheque)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if bankCode == "" {
				log.Fatal("--bank is required")
			}

			ctx := context.Background()
			var summary *recon.RunSummary
			var err error
			switch args[0] {
			case "bank-finance", model.StageBankFinance:
				summary, err = b.recon.StartBankFinanceRun(ctx, bankCode, accountNumber, dryRun)
			case model.StageChain:
				summary, err = b.recon.StartChainRun(ctx, bankCode, accountNumber, dryRun)
			case model.StageCheque:
				summary, err = b.recon.StartChequeRun(ctx, bankCode, accountNumber, dryRun)
			default:
				log.Fatalf("unknown stage %q: expected bank-finance, chain or cheque", args[0])
			}
			if err != nil {
				log.Fatal(err)
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(string(out))
		},
	}

	cmd.Flags().StringVar(&bankCode, "bank", "", "bank code to reconcile")
	cmd.Flags().StringVar(&accountNumber, "account", "", "account number (optional for bank-finance)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute matches without persisting")

	return cmd
}

package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ledger "medchain/src"
)

var sampleRecords = []ledger.Transaction{
	{MedicineName: "Paracetamol", Quantity: 100, From: "FactoryA", To: "WarehouseB"},
	{MedicineName: "Amoxicillin", Quantity: 250, From: "WarehouseB", To: "PharmacyC"},
	{MedicineName: "Insulin", Quantity: 40, From: "PharmacyC", To: "ClinicD"},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Mine a few sample records in memory and print the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := cmd.Flags().GetInt("records")
		if err != nil {
			return err
		}
		if records < 0 {
			return fmt.Errorf("records must not be negative, got %d", records)
		}

		l := ledger.NewLedger()
		for i := 0; i < records; i++ {
			record := sampleRecords[i%len(sampleRecords)]
			if err := addRecord(l, record); err != nil {
				return err
			}
		}

		renderChain(cmd.OutOrStdout(), l.Chain())
		renderVerification(cmd.OutOrStdout(), ledger.ValidChain(l.Chain()))
		return nil
	},
}

// addRecord stages a record and seals it into a new block.
func addRecord(l *ledger.Ledger, record ledger.Transaction) error {
	l.StageTransaction(record.MedicineName, record.Quantity, record.From, record.To)

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("proof-timeout"))
	defer cancel()

	lastBlock := l.LastBlock()
	proof, err := ledger.FindProof(ctx, lastBlock.Proof)
	if err != nil {
		return errors.Wrapf(err, "proof of work over proof %d", lastBlock.Proof)
	}
	block := l.SealBlock(proof, ledger.Hash(lastBlock))
	log.Debugf("Record %s sealed in block %d", record.MedicineName, block.Index)
	return nil
}

func init() {
	demoCmd.Flags().Int("records", 1, "number of sample records to mine")
}

package cmd

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	ledger "medchain/src"
)

// renderChain writes one box per block, genesis first.
func renderChain(w io.Writer, chain []*ledger.Block) {
	for _, block := range chain {
		fmt.Fprintln(w, blockBox(block))
	}
}

func blockBox(block *ledger.Block) string {
	content := pterm.Sprintfln("Timestamp: %s", block.Timestamp) +
		pterm.Sprintfln("Proof: %d", block.Proof) +
		pterm.Sprintfln("Previous Hash: %s", block.PreviousHash) +
		pterm.Sprintln("Transactions:")

	if len(block.Transactions) == 0 {
		content += pterm.Sprint("  No transactions in this block.")
	}
	for i, tx := range block.Transactions {
		if i > 0 {
			content += "\n"
		}
		content += pterm.Sprintf("  %s | Qty: %d | From: %s -> To: %s", pterm.LightCyan(tx.MedicineName), tx.Quantity, tx.From, tx.To)
	}

	return pterm.DefaultBox.
		WithLeftPadding(2).
		WithRightPadding(2).
		WithTitle(pterm.LightYellow(fmt.Sprintf("Block #%d", block.Index))).
		WithTitleTopLeft().
		Sprint(content)
}

// renderVerification reports the outcome of a local chain audit.
func renderVerification(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(w, pterm.LightRed(fmt.Sprintf("Chain invalid: %s", err)))
		return
	}
	fmt.Fprintln(w, pterm.LightGreen("Chain valid"))
}

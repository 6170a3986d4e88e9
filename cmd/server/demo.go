package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"goxchain/config"
	"goxchain/logger"
	"goxchain/metrics"
	"goxchain/simulator"
	"goxchain/types"
)

var demoInstant bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the sample scenarios in-process and print the outcome",
	Long: `Sends a message, a transfer that settles, a transfer that fails on the
destination chain and gets rolled back, and one rejected for insufficient
balance, then prints the history and the final ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log, err := logger.New("warn")
		if err != nil {
			return err
		}
		defer log.Sync()
		return runDemo(cmd.Context(), cfg.Simulator, log)
	},
}

func init() {
	demoCmd.Flags().BoolVar(&demoInstant, "instant", false, "skip the simulated network delays")
}

// transfers leaving arbitrum never reach their destination
var arbitrumRelayerDown = simulator.FaultFunc(func(kind string, op types.Operation, phase simulator.Phase) error {
	if kind == metrics.KindTransfer && op.FromChain == types.ChainArbitrum && phase == simulator.PhaseDestination {
		return errors.New("arbitrum relayer unreachable")
	}
	return nil
})

func runDemo(ctx context.Context, cfg config.SimulatorConfig, log *zap.Logger) error {
	opts := simulator.Options{Config: cfg, Faults: arbitrumRelayerDown, Log: log}
	if demoInstant {
		opts.Scheduler = simulator.ImmediateScheduler{}
	}
	sim, err := simulator.New(opts)
	if err != nil {
		return err
	}

	before, _ := sim.TotalBalance("usdc")
	fmt.Printf("USDC supply before: %s\n", before)

	msg, err := sim.Send(ctx, types.ChainSolana, types.ChainEthereum, "gm from solana")
	if err != nil {
		return err
	}
	fmt.Printf("message %s submitted\n", msg.ID)

	ok, err := sim.Transfer(ctx, types.ChainSolana, types.ChainEthereum, "usdc", "200")
	if err != nil {
		return err
	}
	fmt.Printf("transfer %s submitted, solana USDC now %s\n", ok.ID, balance(sim, types.ChainSolana, "usdc"))

	doomed, err := sim.Transfer(ctx, types.ChainArbitrum, types.ChainPolygon, "usdc", "50")
	if err != nil {
		return err
	}
	fmt.Printf("transfer %s submitted, arbitrum USDC now %s\n", doomed.ID, balance(sim, types.ChainArbitrum, "usdc"))

	if _, err := sim.Transfer(ctx, types.ChainEthereum, types.ChainArbitrum, "eth", "100"); err != nil {
		fmt.Printf("transfer rejected: %v\n", err)
	}

	fmt.Println("waiting for confirmations...")
	sim.Wait()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nKIND\tROUTE\tSTATUS\tTX HASH\tERROR")
	for _, m := range sim.ListMessages() {
		fmt.Fprintf(w, "message\t%s -> %s\t%s\t%s\t%s\n", m.FromChain, m.ToChain, m.Status, m.TxHash, m.Error)
	}
	for _, tx := range sim.ListTransactions() {
		fmt.Fprintf(w, "transfer %s %s\t%s -> %s\t%s\t%s\t%s\n", tx.Amount, tx.Token.Symbol, tx.FromChain, tx.ToChain, tx.Status, tx.TxHash, tx.Error)
	}
	fmt.Fprintln(w, "\nCHAIN\tTOKEN\tBALANCE")
	for _, b := range sim.GetBalances() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Chain, b.Token.Symbol, b.Balance)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	after, _ := sim.TotalBalance("usdc")
	fmt.Printf("\nUSDC supply after: %s\n", after)
	return nil
}

func balance(sim *simulator.Simulator, chain types.ChainID, tokenID string) string {
	for _, b := range sim.GetBalances(chain) {
		if b.Token.ID == tokenID {
			return b.Balance
		}
	}
	return "0"
}

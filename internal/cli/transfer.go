package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/gobank/internal/transfer"
)

func newTransferCmd() *cobra.Command {
	var (
		flagFrom        string
		flagTo          string
		flagAmount      float64
		flagDescription string
		flagYes         bool
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer money to another account",
		Long: "Transfer money from one of your accounts. Cross-currency transfers show\n" +
			"the quoted exchange terms and ask for confirmation before submitting.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := accountSvc.FetchAll(ctx); err != nil {
				return fmt.Errorf("fetch accounts: %w", err)
			}

			wfCfg := transfer.DefaultConfig()
			wfCfg.PreviewDebounce = cfg.Debounce.Preview
			wfCfg.SearchDebounce = cfg.Debounce.Search
			wfCfg.RequestTimeout = cfg.API.Timeout
			if sess.CurrentUser().IsEmployee() {
				wfCfg.Assisted = true
			}
			wf := transfer.New(client, accountSvc, wfCfg, logger)

			source := accountSvc.Find(flagFrom)
			if flagFrom != "" && source == nil {
				return fmt.Errorf("account %s is not one of your accounts", flagFrom)
			}
			wf.Begin(source)
			if wf.Draft().Source == nil {
				return fmt.Errorf("no source account available")
			}
			wf.SetDescription(flagDescription)
			wf.SetAmount(ctx, flagAmount)
			wf.SetDestination(ctx, flagTo)

			if err := wf.AmountError(); err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			if err := wf.DestinationError(); err != nil {
				return fmt.Errorf("destination: %w", err)
			}

			waitForPreview(wf, wfCfg)

			draft := wf.Draft()
			fmt.Printf("Transfer %s %s from %s to %s\n",
				money(draft.Amount), draft.Source.Currency, draft.Source.AccountNumber, draft.Destination)
			if wf.DestinationIsOwn() {
				fmt.Println("Note: the destination is one of your own accounts.")
			}
			if preview := wf.Preview(); preview != nil && preview.CurrencyExchangeApplied {
				ex := preview.Exchange
				fmt.Printf("Exchange: %s -> %s at %.4f, recipient receives %s %s\n",
					ex.FromCurrency, ex.ToCurrency, ex.Rate, money(ex.ConvertedAmount), ex.ToCurrency)
			}

			if !flagYes && !confirm("Proceed?") {
				wf.Cancel()
				fmt.Println("Cancelled.")
				return nil
			}

			if err := wf.Submit(ctx); err != nil {
				if msg := wf.ErrorMessage(); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return fmt.Errorf("transfer: %w", err)
			}
			fmt.Println("Transfer complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFrom, "from", "", "Source account (defaults to your first account)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Destination account number")
	cmd.Flags().Float64Var(&flagAmount, "amount", 0, "Amount in the source account's currency")
	cmd.Flags().StringVar(&flagDescription, "description", "", "Transfer description")
	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")
	return cmd
}

// waitForPreview blocks until the debounced preview settles one way or the
// other. A preview that fails leaves the workflow in Editing, which is still
// submittable; only PreviewPending means "not settled yet".
func waitForPreview(wf *transfer.Workflow, cfg transfer.Config) {
	deadline := time.Now().Add(cfg.PreviewDebounce + cfg.RequestTimeout + time.Second)
	for time.Now().Before(deadline) {
		if wf.State() != transfer.StatePreviewPending {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

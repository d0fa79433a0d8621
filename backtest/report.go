package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/candlebot/sim"
)

func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	fmt.Fprintf(w, "Timeframe:     %s\n", r.Timeframe)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	if r.Stats.NoTrades {
		fmt.Fprintln(w, "No trades")
	} else {
		fmt.Fprintf(w, "Trades:        %d\n", r.Stats.Trades)
		fmt.Fprintf(w, "Wins:          %d\n", r.Stats.Wins)
		fmt.Fprintf(w, "Losses:        %d\n", r.Stats.Losses)
		fmt.Fprintf(w, "Win Rate:      %.1f%%\n", r.Stats.WinRate)
		fmt.Fprintf(w, "Avg Win:       %.2f\n", r.Stats.AvgWin)
		fmt.Fprintf(w, "Avg Loss:      %.2f\n", r.Stats.AvgLoss)
		if r.Stats.ProfitFactor > 0 {
			fmt.Fprintf(w, "Profit Factor: %.2f\n", r.Stats.ProfitFactor)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Equity:  %.2f\n", r.InitialEquity)
	fmt.Fprintf(w, "End Equity:    %.2f\n", r.FinalEquity)
	fmt.Fprintf(w, "Net Profit:    %.2f\n", r.Stats.NetProfit)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.Stats.ReturnPct)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdownPct)

	if r.Position.Open() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Open Position: %s @ %.5f since %s (marked %.2f)\n",
			r.Position.Side, r.Position.EntryPrice,
			r.Position.EntryTime.Format(time.RFC3339), r.MarkedEquity)
	}
}

// PrintTrades writes one row per trade, oldest first.
func PrintTrades(w io.Writer, trades []sim.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "no trades")
		return
	}
	fmt.Fprintf(w, "%-20s %-20s %-5s %12s %12s %10s %8s  %s\n",
		"ENTRY", "EXIT", "SIDE", "IN", "OUT", "PNL", "PNL%", "REASON")
	for _, t := range trades {
		fmt.Fprintf(w, "%-20s %-20s %-5s %12.5f %12.5f %10.2f %7.2f%%  %s\n",
			t.EntryTime.UTC().Format("2006-01-02 15:04"),
			t.ExitTime.UTC().Format("2006-01-02 15:04"),
			t.Direction,
			t.PriceIn,
			t.PriceOut,
			t.PnL,
			t.PnLPct*100,
			t.Reason,
		)
	}
}

// bridge-check is a diagnostic tool that connects to the terminal bridge
// and prints the current quote, account snapshot, and open positions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"goldbot/internal/bridge"
	"goldbot/internal/model"
)

func main() {
	address := flag.String("address", "127.0.0.1:7788", "bridge TCP address")
	symbol := flag.String("symbol", "XAUUSD", "instrument to probe")
	timeframe := flag.String("timeframe", "M1", "candle timeframe")
	count := flag.Int("candles", 15, "number of candles to fetch")
	timeout := flag.Duration("timeout", 3*time.Second, "per-request timeout")
	flag.Parse()

	fmt.Printf("[bridge-check] Connecting to %s\n", *address)

	br := bridge.New(*address, *timeout, *timeout, zap.NewNop())
	defer br.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := br.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-check] ping failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("[bridge-check] Terminal reachable")

	quote, err := br.Quote(ctx, *symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-check] quote failed: %v\n", err)
	} else {
		fmt.Printf("QUOTE  %s  Bid=%.5f  Ask=%.5f  Time=%s\n",
			quote.Symbol, quote.Bid, quote.Ask, quote.Time.Format("15:04:05.000"))
	}

	acct, err := br.Account(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-check] account failed: %v\n", err)
	} else {
		fmt.Printf("ACCT   Bal=%.2f  Eq=%.2f  FreeMargin=%.2f  Floating=%.2f\n",
			acct.Balance, acct.Equity, acct.FreeMargin, acct.FloatingProfit)
	}

	candles, err := br.Candles(ctx, *symbol, model.Timeframe(*timeframe), *count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-check] candles failed: %v\n", err)
	} else {
		fmt.Printf("CANDLES %d bars, last close=%.5f at %s\n",
			len(candles), candles[len(candles)-1].Close,
			candles[len(candles)-1].Time.Format("15:04:05"))
	}

	positions, err := br.Positions(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-check] positions failed: %v\n", err)
		os.Exit(1)
	}
	for _, p := range positions {
		fmt.Printf("POS  #%d  %s %s  Vol=%.2f  Open=%.5f  SL=%.5f  TP=%.5f  P/L=%.2f  Magic=%d\n",
			p.Ticket, p.Symbol, p.Side, p.Volume, p.OpenPrice, p.StopLoss, p.TakeProfit, p.Profit, p.Magic)
	}
	fmt.Printf("[bridge-check] %d open positions\n", len(positions))
}

package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"futures-assist/internal/draft"
	"futures-assist/internal/types"
)

var sizeFlags struct {
	contract  string
	faceValue string
	direction string
	entry     string
	leverage  int64
	quantity  int64
	margin    string
	risk      string
	slPct     string
	slPrice   string
	tpPrice   string
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size an order from the command line and print the preview",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSize()
	},
}

func init() {
	f := sizeCmd.Flags()
	f.StringVar(&sizeFlags.contract, "contract", "BTC_USDT", "contract symbol")
	f.StringVar(&sizeFlags.faceValue, "face-value", "0.0001", "contract face value (quanto multiplier)")
	f.StringVar(&sizeFlags.direction, "direction", "long", "long or short")
	f.StringVar(&sizeFlags.entry, "entry", "", "entry price (required)")
	f.Int64Var(&sizeFlags.leverage, "leverage", 10, "leverage")
	f.Int64Var(&sizeFlags.quantity, "quantity", 0, "lot count (quantity-driven sizing)")
	f.StringVar(&sizeFlags.margin, "margin", "", "posted margin (margin-driven sizing)")
	f.StringVar(&sizeFlags.risk, "risk", "", "risk budget (risk-driven sizing, needs --sl-pct)")
	f.StringVar(&sizeFlags.slPct, "sl-pct", "", "stop-loss as percentage of margin")
	f.StringVar(&sizeFlags.slPrice, "sl-price", "", "explicit stop-loss price")
	f.StringVar(&sizeFlags.tpPrice, "tp-price", "", "explicit take-profit price")
	_ = sizeCmd.MarkFlagRequired("entry")
}

func runSize() error {
	d := draft.New()

	face, err := decimal.NewFromString(sizeFlags.faceValue)
	if err != nil {
		return fmt.Errorf("invalid --face-value: %w", err)
	}
	if err := d.SetContract(sizeFlags.contract, face); err != nil {
		return err
	}

	dir, err := types.ParseDirection(sizeFlags.direction)
	if err != nil {
		return err
	}
	if err := d.SetDirection(dir); err != nil {
		return err
	}

	entry, err := decimal.NewFromString(sizeFlags.entry)
	if err != nil {
		return fmt.Errorf("invalid --entry: %w", err)
	}
	if err := d.SetEntryPrice(entry); err != nil {
		return err
	}
	if err := d.SetLeverage(sizeFlags.leverage); err != nil {
		return err
	}

	if sizeFlags.slPrice != "" {
		price, err := decimal.NewFromString(sizeFlags.slPrice)
		if err != nil {
			return fmt.Errorf("invalid --sl-price: %w", err)
		}
		if err := d.SetStopLossPrice(price); err != nil {
			return err
		}
	} else if sizeFlags.slPct != "" {
		pct, err := decimal.NewFromString(sizeFlags.slPct)
		if err != nil {
			return fmt.Errorf("invalid --sl-pct: %w", err)
		}
		if err := d.SetStopLossPercentage(pct); err != nil {
			return err
		}
	}

	switch {
	case sizeFlags.risk != "":
		if sizeFlags.slPct == "" {
			return fmt.Errorf("--risk requires --sl-pct")
		}
		risk, err := decimal.NewFromString(sizeFlags.risk)
		if err != nil {
			return fmt.Errorf("invalid --risk: %w", err)
		}
		pct, _ := decimal.NewFromString(sizeFlags.slPct)
		if err := d.ApplyRiskBudget(risk, decimal.NewFromInt(1), pct); err != nil {
			return err
		}
	case sizeFlags.margin != "":
		margin, err := decimal.NewFromString(sizeFlags.margin)
		if err != nil {
			return fmt.Errorf("invalid --margin: %w", err)
		}
		if err := d.SetMargin(margin); err != nil {
			return err
		}
	default:
		if err := d.SetQuantity(sizeFlags.quantity); err != nil {
			return err
		}
	}

	if sizeFlags.tpPrice != "" {
		price, err := decimal.NewFromString(sizeFlags.tpPrice)
		if err != nil {
			return fmt.Errorf("invalid --tp-price: %w", err)
		}
		if err := d.SetTakeProfitPrice(price); err != nil {
			return err
		}
	}

	fmt.Println(d.Preview())
	return nil
}

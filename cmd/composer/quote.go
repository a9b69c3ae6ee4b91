package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tm-acme-shop/smartfold-composer/internal/apperrors"
	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

var (
	quoteNow      string
	quoteTimezone string
)

var quoteCmd = &cobra.Command{
	Use:   "quote [file]",
	Short: "Price an order state read from a JSON file",
	Long: `Read an order state (or a saved draft) as JSON from file, or from
stdin when file is "-" or omitted, and print its totals, date errors and
the payload that would be submitted.

Lines without an amount are priced from their weight, categories or count.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteNow, "now", "", "evaluate dates as of this time (YYYY-MM-DDTHH:MM)")
	quoteCmd.Flags().StringVar(&quoteTimezone, "tz", "", "timezone of the date values (default COMPOSER_TIMEZONE)")
}

type quoteResult struct {
	Totals     models.Totals        `json:"totals"`
	DateErrors models.DateErrors    `json:"dateErrors"`
	CanSubmit  bool                 `json:"canSubmit"`
	Payload    *models.OrderPayload `json:"payload,omitempty"`
	Errors     map[string]string    `json:"errors,omitempty"`
}

func runQuote(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var state models.OrderState
	if err := json.NewDecoder(in).Decode(&state); err != nil {
		return fmt.Errorf("decode order state: %w", err)
	}

	loc := config.Load().Composer.Location()
	if quoteTimezone != "" {
		l, err := time.LoadLocation(quoteTimezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
		loc = l
	}

	now := time.Now()
	if quoteNow != "" {
		t, err := service.ParseLocalDateTime(quoteNow, loc)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		now = t
	}

	result := quote(state, now, loc)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func quote(state models.OrderState, now time.Time, loc *time.Location) quoteResult {
	composer := service.NewComposer(
		service.WithClock(func() time.Time { return now }),
		service.WithLocation(loc),
	)

	builder := composer.Builder()
	for i, line := range state.Lines {
		if line.Amount == 0 {
			state.Lines[i] = priceLine(builder, line)
		}
	}
	composer.Hydrate(context.Background(), state, false)

	result := quoteResult{
		Totals:     composer.Totals(),
		DateErrors: composer.DateErrors(),
		CanSubmit:  composer.CanSubmit(),
	}

	payload, err := composer.TrySubmit()
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			result.Errors = verr.Details
		}
		return result
	}
	result.Payload = payload
	return result
}

func priceLine(b *service.LineBuilder, line models.LineItem) models.LineItem {
	var priced models.LineItem
	switch line.Kind.Family() {
	case models.FamilyWeight:
		priced = b.WeightLine(line.Kind, line.Weight)
	case models.FamilyCategory:
		quantities := make(map[string]int, len(line.Categories))
		for _, c := range line.Categories {
			quantities[c.Name] += c.Qty
		}
		priced = b.CategoryLine(line.Kind, quantities)
	case models.FamilyPremium:
		priced = b.PremiumLine(line.Count)
	default:
		return line
	}
	priced.ID = line.ID
	return priced
}

package application

import (
	"fmt"
	"strings"

	financeErrors "github.com/sebuszqo/FinanceCategories/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const DefaultReportingCurrency = "PLN"

type CurrencyConverter interface {
	ReportingCurrency() string
	Convert(amount decimal.Decimal, currency string) (decimal.Decimal, error)
}

// StaticRateConverter converts with a fixed table where one unit of a currency
// equals rate units of the reporting currency.
type StaticRateConverter struct {
	reporting string
	rates     map[string]decimal.Decimal
}

func NewStaticRateConverter(reporting string, rates map[string]decimal.Decimal) *StaticRateConverter {
	reporting = strings.ToUpper(strings.TrimSpace(reporting))
	if reporting == "" {
		reporting = DefaultReportingCurrency
	}
	normalized := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		normalized[strings.ToUpper(code)] = rate
	}
	normalized[reporting] = decimal.NewFromInt(1)
	return &StaticRateConverter{reporting: reporting, rates: normalized}
}

func (c *StaticRateConverter) ReportingCurrency() string {
	return c.reporting
}

func (c *StaticRateConverter) Convert(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	rate, ok := c.rates[code]
	if !ok {
		return decimal.Zero, financeErrors.NewUnknownCurrencyError(code)
	}
	return amount.Mul(rate), nil
}

// ParseExchangeRates reads a list like "EUR=4.30,USD=3.95".
func ParseExchangeRates(value string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, rawRate, found := strings.Cut(pair, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !found || len(code) != 3 {
			return nil, fmt.Errorf("invalid exchange rate entry %q", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rawRate))
		if err != nil {
			return nil, fmt.Errorf("invalid exchange rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("exchange rate for %s must be positive", code)
		}
		rates[code] = rate
	}
	return rates, nil
}

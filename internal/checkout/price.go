package checkout

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPrice renders amount the way German pages show prices, e.g.
// "39,00 €".
func FormatPrice(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		unit = currency.EUR
	}
	p := message.NewPrinter(language.German)
	return p.Sprintf("%.2f", amount) + " " + p.Sprint(currency.Symbol(unit))
}

// AmountValue renders amount as the decimal string payment APIs expect.
func AmountValue(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

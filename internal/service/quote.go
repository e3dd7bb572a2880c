package service

import (
	"fmt"
	"net/url"
	"strings"

	"multkits-catalog/internal/domain"
)

const (
	genericQuoteMessage = "Olá, gostaria de fazer um orçamento."
	quoteHeader         = "Olá, gostaria de fazer um orçamento para os seguintes itens:\n\n"
)

// QuoteBuilder turns a shopping cart into a WhatsApp quote request for a
// fixed recipient. It holds no mutable state: identical carts always yield
// identical messages and links.
type QuoteBuilder struct {
	phone string
}

// NewQuoteBuilder creates a builder addressing the given phone number
// (digits only, with country code).
func NewQuoteBuilder(phone string) QuoteBuilder {
	return QuoteBuilder{phone: phone}
}

// Message renders the quote text. An empty cart yields the generic inquiry
// phrase; otherwise each cart line renders independently, in cart order,
// with the color/code label in parentheses when present.
func (b QuoteBuilder) Message(items []domain.CartItem) string {
	if len(items) == 0 {
		return genericQuoteMessage
	}

	var sb strings.Builder
	sb.WriteString(quoteHeader)
	for _, item := range items {
		fmt.Fprintf(&sb, "* %dx %s", item.Quantity, item.Name)
		if item.ColorCode != "" {
			fmt.Fprintf(&sb, " (%s)", item.ColorCode)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Link renders the ready-to-use wa.me URL with the message percent-encoded
// as the text query value.
func (b QuoteBuilder) Link(items []domain.CartItem) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", b.phone, url.QueryEscape(b.Message(items)))
}

// Package checkout builds the WhatsApp order links that end the shopping
// flow: the cart or a single product is rendered into a prefilled message.
package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
)

const (
	DefaultPhone    = "6281234567890"
	DefaultGreeting = "Halo Herbaprima, saya ingin memesan:"
	DefaultInquiry  = "Halo Herbaprima, saya ingin bertanya mengenai produk & pemesanan."
)

var ErrEmptyCart = errors.New("cart is empty")

// Line is one ordered product as it appears in the message.
type Line struct {
	Name     string
	Quantity int
}

// FormatRupiah renders n with dot thousands separators, e.g. "Rp 1.200.000".
func FormatRupiah(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	b.WriteString("Rp ")
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OrderMessage renders the order text with blank customer fields for the
// buyer to fill in.
func OrderMessage(greeting string, lines []Line, total int64) string {
	msg := make([]string, 0, len(lines)+5)
	msg = append(msg, greeting)
	for _, l := range lines {
		msg = append(msg, fmt.Sprintf("- %s Qty: %d", l.Name, l.Quantity))
	}
	msg = append(msg,
		"Total: "+FormatRupiah(total),
		"Nama:",
		"Alamat:",
		"No HP:",
	)
	return strings.Join(msg, "\n")
}

type Builder struct {
	Phone    string
	Greeting string
	Inquiry  string
}

func NewBuilder(phone string) Builder {
	if phone == "" {
		phone = DefaultPhone
	}
	return Builder{Phone: phone, Greeting: DefaultGreeting, Inquiry: DefaultInquiry}
}

// CartLink returns the order link for the whole cart.
func (b Builder) CartLink(snap cart.Snapshot) (string, error) {
	if snap.Empty() {
		return "", ErrEmptyCart
	}
	lines := make([]Line, 0, len(snap.Items))
	for _, it := range snap.Items {
		lines = append(lines, Line{Name: it.Name, Quantity: it.Quantity})
	}
	return b.link(OrderMessage(b.greeting(), lines, snap.TotalPrice)), nil
}

// ProductLink returns the "buy now" link for qty units of p. Quantities
// below one are treated as one.
func (b Builder) ProductLink(p catalog.Product, qty int) string {
	if qty < 1 {
		qty = 1
	}
	lines := []Line{{Name: p.Name, Quantity: qty}}
	return b.link(OrderMessage(b.greeting(), lines, p.Price*int64(qty)))
}

// InquiryLink opens a chat without an order.
func (b Builder) InquiryLink() string {
	msg := b.Inquiry
	if msg == "" {
		msg = DefaultInquiry
	}
	return b.link(msg)
}

func (b Builder) greeting() string {
	if b.Greeting == "" {
		return DefaultGreeting
	}
	return b.Greeting
}

func (b Builder) link(text string) string {
	phone := b.Phone
	if phone == "" {
		phone = DefaultPhone
	}
	return "https://wa.me/" + phone + "?text=" + escape(text)
}

// escape percent-encodes text for a query value, spaces as %20.
func escape(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/stretchr/testify/require"
)

func TestFormatRupiah(t *testing.T) {
	tests := map[string]struct {
		in   int64
		want string
	}{
		"zero":      {0, "Rp 0"},
		"hundreds":  {950, "Rp 950"},
		"thousands": {45000, "Rp 45.000"},
		"millions":  {1200000, "Rp 1.200.000"},
		"negative":  {-100000, "Rp -100.000"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatRupiah(tc.in))
		})
	}
}

func TestOrderMessage(t *testing.T) {
	got := OrderMessage(DefaultGreeting, []Line{{"Madu Multiflora", 2}, {"Kopi Herbal", 1}}, 245000)
	want := strings.Join([]string{
		"Halo Herbaprima, saya ingin memesan:",
		"- Madu Multiflora Qty: 2",
		"- Kopi Herbal Qty: 1",
		"Total: Rp 245.000",
		"Nama:",
		"Alamat:",
		"No HP:",
	}, "\n")
	require.Equal(t, want, got)
}

func TestCartLink(t *testing.T) {
	b := NewBuilder("")

	_, err := b.CartLink(cart.Snapshot{})
	require.ErrorIs(t, err, ErrEmptyCart)

	snap := cart.Snapshot{
		Items:         []cart.LineItem{{ProductID: "prod-005", Name: "Madu Multiflora", UnitPrice: 100000, Quantity: 2}},
		TotalQuantity: 2,
		TotalPrice:    200000,
	}
	link, err := b.CartLink(snap)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://wa.me/6281234567890?text="))
	require.NotContains(t, link, "+")

	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, OrderMessage(DefaultGreeting, []Line{{"Madu Multiflora", 2}}, 200000), u.Query().Get("text"))
}

func TestProductLinkClampsQuantity(t *testing.T) {
	b := NewBuilder("628111")
	p := catalog.Product{Name: "Madu & Propolis", Price: 50000}

	u, err := url.Parse(b.ProductLink(p, 0))
	require.NoError(t, err)
	require.Equal(t, "/628111", u.Path)
	text := u.Query().Get("text")
	require.Contains(t, text, "- Madu & Propolis Qty: 1")
	require.Contains(t, text, "Total: Rp 50.000")
}

func TestInquiryLink(t *testing.T) {
	u, err := url.Parse(Builder{}.InquiryLink())
	require.NoError(t, err)
	require.Equal(t, "wa.me", u.Host)
	require.Equal(t, DefaultInquiry, u.Query().Get("text"))
}

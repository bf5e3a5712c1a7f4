package shop_test

import (
	"shoptogether/internal/shop"
	"shoptogether/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeImageURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{name: "empty stays empty", in: "  ", out: "", ok: true},
		{name: "lowercase scheme and host", in: "HTTPS://CDN.Example.COM/Apple.png", out: "https://cdn.example.com/Apple.png", ok: true},
		{name: "remove default https port", in: "https://cdn.example.com:443/a.png", out: "https://cdn.example.com/a.png", ok: true},
		{name: "keep non-default port", in: "http://localhost:8080/a.png", out: "http://localhost:8080/a.png", ok: true},
		{name: "clean path", in: "http://example.com//img/./x/../a.png/", out: "http://example.com/img/a.png", ok: true},
		{name: "remove fragment", in: "https://example.com/a.png?v=2#top", out: "https://example.com/a.png?v=2", ok: true},
		{name: "root-relative path", in: "/images/bread.jpg", out: "/images/bread.jpg", ok: true},
		{name: "relative path rejected", in: "images/bread.jpg", ok: false},
		{name: "other scheme rejected", in: "javascript:alert(1)", ok: false},
		{name: "unparsable rejected", in: "http://exa mple.com", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := shop.NormalizeImageURL(tc.in)
			if !tc.ok {
				require.ErrorIs(t, err, serrors.ErrBadRequest)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}

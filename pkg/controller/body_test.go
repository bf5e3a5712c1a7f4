package controller_test

import (
	"net/http"
	"net/http/httptest"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/serrors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runDecode(t *testing.T, contentType, body string) (*http.Request, error) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	next, verdict, err := controller.DecodeBody(controller.DefaultBodyLimit).Process(httptest.NewRecorder(), req)
	require.Equal(t, controller.Next, verdict)

	return next, err
}

func TestDecodeBody_JSON(t *testing.T) {
	next, err := runDecode(t, "application/json; charset=utf-8", `{"name":"Apple","price":1.5,"stock":3,"tags":["a",null,true]}`)
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"name":  "Apple",
		"price": 1.5,
		"stock": int64(3),
		"tags":  []any{"a", nil, true},
	}, controller.Body(next.Context()))
}

func TestDecodeBody_JSONArray(t *testing.T) {
	next, err := runDecode(t, "application/json", `[1,2]`)
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, controller.Body(next.Context()))
}

func TestDecodeBody_EmptyJSONIsEmptyObject(t *testing.T) {
	next, err := runDecode(t, "application/json", "  ")
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, controller.Body(next.Context()))
}

func TestDecodeBody_Malformed(t *testing.T) {
	cases := map[string]string{
		"broken object":   `{"name":`,
		"trailing data":   `{"a":1} x`,
		"scalar":          `"just a string"`,
		"number":          `42`,
		"single quotes":   `{'a':1}`,
		"unclosed array":  `[1,2`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runDecode(t, "application/json", body)
			require.Error(t, err)
			require.ErrorIs(t, err, serrors.ErrBadRequest)
		})
	}
}

func TestDecodeBody_TooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")

	_, _, err := controller.DecodeBody(16).Process(httptest.NewRecorder(), req)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	require.Contains(t, err.Error(), "request entity too large")
}

func TestDecodeBody_URLEncoded(t *testing.T) {
	next, err := runDecode(t, "application/x-www-form-urlencoded", "a%5Bb%5D=1&c[]=2&c[]=3&name=Ann+Lee")
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"a":    map[string]any{"b": "1"},
		"c":    []any{"2", "3"},
		"name": "Ann Lee",
	}, controller.Body(next.Context()))
}

func TestDecodeBody_MalformedURLEncoded(t *testing.T) {
	_, err := runDecode(t, "application/x-www-form-urlencoded", "a=%zz")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestDecodeBody_OtherContentTypesAreIgnored(t *testing.T) {
	next, err := runDecode(t, "text/plain", "{not json")
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, controller.Body(next.Context()))

	next, err = runDecode(t, "", "{not json")
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, controller.Body(next.Context()))
}

func TestBind(t *testing.T) {
	next, err := runDecode(t, "application/json", `{"name":"Apple","priceCents":150}`)
	require.NoError(t, err)

	var dst struct {
		Name       string `json:"name"`
		PriceCents int64  `json:"priceCents"`
	}
	require.NoError(t, controller.Bind(next, &dst))
	require.Equal(t, "Apple", dst.Name)
	require.Equal(t, int64(150), dst.PriceCents)

	next, err = runDecode(t, "application/json", `{"priceCents":"many"}`)
	require.NoError(t, err)
	require.ErrorIs(t, controller.Bind(next, &dst), serrors.ErrBadRequest)
}

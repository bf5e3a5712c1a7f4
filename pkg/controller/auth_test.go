package controller_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (string, error) {
	if sub, ok := f[token]; ok {
		return sub, nil
	}

	return "", errors.New("bad token")
}

func TestRequireBearer(t *testing.T) {
	var seen string
	h := controller.RequireBearer(fakeVerifier{"good": "user-1"}, func(w http.ResponseWriter, r *http.Request) error {
		seen = controller.Subject(r.Context())

		return nil
	})

	cases := map[string]error{
		"":             serrors.ErrUnauthorized,
		"Bearer":       serrors.ErrUnauthorized,
		"Basic good":   serrors.ErrUnauthorized,
		"Bearer wrong": serrors.ErrUnauthorized,
		"Bearer good":  nil,
		"bearer good":  nil,
	}
	for header, want := range cases {
		t.Run(header, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}

			err := h(httptest.NewRecorder(), req)
			if want == nil {
				require.NoError(t, err)
				require.Equal(t, "user-1", seen)

				return
			}
			require.ErrorIs(t, err, want)
			require.Empty(t, seen)
		})
	}
}

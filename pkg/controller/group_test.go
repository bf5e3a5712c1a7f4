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

func testGroup() *controller.MuxGroup {
	g := controller.NewMuxGroup("/api/things")
	g.Route(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) error {
		return controller.WriteJSON(w, http.StatusOK, []string{"a", "b"})
	})
	g.Route(http.MethodGet, "/{id}", func(w http.ResponseWriter, r *http.Request) error {
		return controller.WriteJSON(w, http.StatusOK, map[string]string{"id": controller.Vars(r)["id"]})
	})
	g.Route(http.MethodGet, "/missing/{id}", func(http.ResponseWriter, *http.Request) error {
		return serrors.With(serrors.ErrNotFound, "thing not found")
	})
	g.Route(http.MethodPost, "/broken", func(http.ResponseWriter, *http.Request) error {
		return errors.New("DB down")
	})

	return g
}

func TestMuxGroup_Routes(t *testing.T) {
	g := testGroup()

	cases := []struct {
		path    string
		status  int
		body    string
		verdict controller.Verdict
	}{
		{"/api/things", http.StatusOK, `["a","b"]`, controller.Responded},
		{"/api/things/", http.StatusOK, `["a","b"]`, controller.Responded},
		{"/api/things/42", http.StatusOK, `{"id":"42"}`, controller.Responded},
		{"/api/things/missing/1", http.StatusNotFound, `{"error":"thing not found"}`, controller.Responded},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			verdict, err := g.Handle(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.NoError(t, err)
			require.Equal(t, tc.verdict, verdict)
			require.Equal(t, tc.status, rec.Code)
			require.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestMuxGroup_PassesThroughUnmatched(t *testing.T) {
	g := testGroup()

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/things/1/2/3", nil),
		httptest.NewRequest(http.MethodDelete, "/api/things/42", nil),
	} {
		rec := httptest.NewRecorder()
		verdict, err := g.Handle(rec, req)
		require.NoError(t, err)
		require.Equal(t, controller.Next, verdict)
		require.False(t, controller.Written(rec))
		require.Zero(t, rec.Body.Len())
	}
}

func TestMuxGroup_InternalErrorsPropagate(t *testing.T) {
	g := testGroup()

	rec := httptest.NewRecorder()
	_, err := g.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/things/broken", nil))
	require.EqualError(t, err, "DB down")
	require.Zero(t, rec.Body.Len())
}

func TestDispatch(t *testing.T) {
	d := controller.Dispatch(testGroup())

	rec := httptest.NewRecorder()
	_, verdict, err := d.Process(rec, httptest.NewRequest(http.MethodGet, "/api/things", nil))
	require.NoError(t, err)
	require.Equal(t, controller.Responded, verdict)

	// a shared string prefix is not a path prefix
	rec = httptest.NewRecorder()
	_, verdict, err = d.Process(rec, httptest.NewRequest(http.MethodGet, "/api/thingsXYZ", nil))
	require.NoError(t, err)
	require.Equal(t, controller.Next, verdict)

	rec = httptest.NewRecorder()
	_, verdict, err = d.Process(rec, httptest.NewRequest(http.MethodGet, "/api/other", nil))
	require.NoError(t, err)
	require.Equal(t, controller.Next, verdict)
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, controller.StatusOf(serrors.KindOnly(serrors.ErrBadRequest)))
	require.Equal(t, http.StatusUnauthorized, controller.StatusOf(serrors.KindOnly(serrors.ErrUnauthorized)))
	require.Equal(t, http.StatusForbidden, controller.StatusOf(serrors.KindOnly(serrors.ErrForbidden)))
	require.Equal(t, http.StatusNotFound, controller.StatusOf(serrors.KindOnly(serrors.ErrNotFound)))
	require.Equal(t, http.StatusConflict, controller.StatusOf(serrors.KindOnly(serrors.ErrConflict)))
	require.Equal(t, http.StatusTooManyRequests, controller.StatusOf(serrors.KindOnly(serrors.ErrRateLimited)))
	require.Zero(t, controller.StatusOf(serrors.KindOnly(serrors.ErrInternal)))
	require.Zero(t, controller.StatusOf(errors.New("plain")))
}

package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"shoptogether/internal/api/handler"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/storage/memory"
	"shoptogether/pkg/token"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sequence struct{ n atomic.Int64 }

func (s *sequence) Next() int64 { return s.n.Add(1) }

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newClient(t *testing.T, limiter *controller.RateLimiter) *client {
	t.Helper()

	svc := shop.New(memory.New(), &sequence{}, shop.Options{BcryptCost: bcrypt.MinCost})
	tokens, err := token.NewEphemeral(time.Hour)
	require.NoError(t, err)

	groups := handler.Groups(handler.Deps{
		Catalog:     svc,
		Accounts:    svc,
		Families:    svc,
		Orders:      svc,
		Tokens:      tokens,
		AuthLimiter: limiter,
	})

	return &client{
		t: t,
		handler: controller.NewPipeline(controller.ErrorResponder(false),
			controller.DecodeBody(0),
			controller.Dispatch(groups...),
			controller.StageFunc(func(w http.ResponseWriter, r *http.Request) (*http.Request, controller.Verdict, error) {
				controller.NotFoundJSON(w, r)

				return r, controller.Responded, nil
			}),
		),
	}
}

func (c *client) as(token string) *client {
	return &client{t: c.t, handler: c.handler, token: token}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.RemoteAddr = "203.0.113.7:5000"

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}

	return rec.Code
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID       string  `json:"id"`
		Email    string  `json:"email"`
		FamilyID *string `json:"familyId"`
	} `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *client) register(name, email string) authBody {
	c.t.Helper()

	var out authBody
	status := c.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": name, "email": email, "password": "secret1"}, &out)
	require.Equal(c.t, http.StatusCreated, status)
	require.NotEmpty(c.t, out.Token)

	return out
}

func TestAuth(t *testing.T) {
	c := newClient(t, nil)

	ann := c.register("Ann", "Ann@Example.com")
	require.Equal(t, "ann@example.com", ann.User.Email)

	var e errorBody
	status := c.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret1"}, &e)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "email already registered", e.Error)

	var logged authBody
	status = c.do(http.MethodPost, "/api/auth/login",
		map[string]any{"email": "ann@example.com", "password": "secret1"}, &logged)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ann.User.ID, logged.User.ID)

	status = c.do(http.MethodPost, "/api/auth/login",
		map[string]any{"email": "ann@example.com", "password": "nope"}, &e)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid email or password", e.Error)

	var me map[string]any
	require.Equal(t, http.StatusOK, c.as(logged.Token).do(http.MethodGet, "/api/auth/me", nil, &me))
	require.Equal(t, ann.User.ID, me["id"])
	require.NotContains(t, me, "passwordHash")

	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/auth/me", nil, &e))
	require.Equal(t, "authentication required", e.Error)
	require.Equal(t, http.StatusUnauthorized, c.as("garbage").do(http.MethodGet, "/api/auth/me", nil, &e))
	require.Equal(t, "invalid or expired token", e.Error)
}

func TestAuth_RateLimited(t *testing.T) {
	c := newClient(t, controller.NewRateLimiter(0.001, 2))

	login := map[string]any{"email": "x@example.com", "password": "whatever"}
	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", login, nil))
	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", login, nil))

	var e errorBody
	require.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/auth/login", login, &e))
	require.Equal(t, "too many requests, please try again later", e.Error)
}

func TestProducts(t *testing.T) {
	c := newClient(t, nil)
	admin := c.as(c.register("Admin", "admin@example.com").Token)

	require.Equal(t, http.StatusUnauthorized,
		c.do(http.MethodPost, "/api/products", map[string]any{"name": "Apple"}, nil))

	var apple map[string]any
	require.Equal(t, http.StatusCreated, admin.do(http.MethodPost, "/api/products",
		map[string]any{"name": "Apple", "category": "fruit", "priceCents": 50, "stock": 10}, &apple))
	id, _ := apple["id"].(string)
	require.NotEmpty(t, id)

	require.Equal(t, http.StatusBadRequest,
		admin.do(http.MethodPost, "/api/products", map[string]any{"name": ""}, nil))

	var list []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products?category=fruit", nil, &list))
	require.Len(t, list, 1)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products?search=zzz", nil, &list))
	require.Empty(t, list)

	var got map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products/"+id, nil, &got))
	require.Equal(t, "Apple", got["name"])

	require.Equal(t, http.StatusOK,
		admin.do(http.MethodPut, "/api/products/"+id, map[string]any{"priceCents": 75}, &got))
	require.InDelta(t, 75, got["priceCents"], 0)

	require.Equal(t, http.StatusNoContent, admin.do(http.MethodDelete, "/api/products/"+id, nil, nil))

	var e errorBody
	require.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/products/"+id, nil, &e))
	require.Equal(t, "product not found", e.Error)
	require.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/products/not-a-uuid", nil, &e))
}

func TestUsers(t *testing.T) {
	c := newClient(t, nil)
	ann := c.register("Ann", "ann@example.com")
	bob := c.register("Bob", "bob@example.com")
	asAnn := c.as(ann.Token)

	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/users", nil, nil))

	var users []map[string]any
	require.Equal(t, http.StatusOK, asAnn.do(http.MethodGet, "/api/users", nil, &users))
	require.Len(t, users, 2)

	var e errorBody
	require.Equal(t, http.StatusForbidden,
		asAnn.do(http.MethodPut, "/api/users/"+bob.User.ID, map[string]any{"name": "Evil"}, &e))

	var updated map[string]any
	require.Equal(t, http.StatusOK,
		asAnn.do(http.MethodPut, "/api/users/"+ann.User.ID, map[string]any{"name": "Annie"}, &updated))
	require.Equal(t, "Annie", updated["name"])

	require.Equal(t, http.StatusForbidden, asAnn.do(http.MethodDelete, "/api/users/"+bob.User.ID, nil, nil))
	require.Equal(t, http.StatusNoContent, asAnn.do(http.MethodDelete, "/api/users/"+ann.User.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, c.as(bob.Token).do(http.MethodGet, "/api/users/"+ann.User.ID, nil, nil))
}

type orderBody struct {
	ID         string  `json:"id"`
	Number     string  `json:"number"`
	Status     string  `json:"status"`
	TotalCents int64   `json:"totalCents"`
	FamilyID   *string `json:"familyId"`
}

func TestOrdersAndFamilies(t *testing.T) {
	c := newClient(t, nil)
	ann := c.register("Ann", "ann@example.com")
	bob := c.register("Bob", "bob@example.com")
	asAnn, asBob := c.as(ann.Token), c.as(bob.Token)

	var product map[string]any
	require.Equal(t, http.StatusCreated, asAnn.do(http.MethodPost, "/api/products",
		map[string]any{"name": "Bread", "priceCents": 300, "stock": 2}, &product))
	productID, _ := product["id"].(string)

	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/orders", nil, nil))

	var family map[string]any
	require.Equal(t, http.StatusCreated,
		asAnn.do(http.MethodPost, "/api/families", map[string]any{"name": "Smiths"}, &family))
	familyID, _ := family["id"].(string)

	require.Equal(t, http.StatusForbidden, asBob.do(http.MethodGet, "/api/families/"+familyID, nil, nil))
	require.Equal(t, http.StatusOK, asBob.do(http.MethodPost, "/api/families/"+familyID+"/join", nil, &family))
	require.Len(t, family["members"], 2)

	var order orderBody
	require.Equal(t, http.StatusCreated, asAnn.do(http.MethodPost, "/api/orders", map[string]any{
		"items":     []map[string]any{{"productId": productID, "quantity": 2}},
		"forFamily": true,
	}, &order))
	require.Equal(t, "PENDING", order.Status)
	require.Regexp(t, `^[0-9]+$`, order.Number)
	require.Equal(t, int64(600), order.TotalCents)
	require.NotNil(t, order.FamilyID)

	var e errorBody
	require.Equal(t, http.StatusConflict, asBob.do(http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": 1}},
	}, &e))
	require.Equal(t, "insufficient stock for Bread", e.Error)

	var shared []orderBody
	require.Equal(t, http.StatusOK, asBob.do(http.MethodGet, "/api/families/"+familyID+"/orders", nil, &shared))
	require.Len(t, shared, 1)

	var own []orderBody
	require.Equal(t, http.StatusOK, asBob.do(http.MethodGet, "/api/orders", nil, &own))
	require.Empty(t, own)
	require.Equal(t, http.StatusNotFound, asBob.do(http.MethodGet, "/api/orders/"+order.ID, nil, nil))

	require.Equal(t, http.StatusOK, asAnn.do(http.MethodGet, "/api/orders/"+order.ID, nil, &order))
	require.Equal(t, http.StatusOK, asAnn.do(http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil, &order))
	require.Equal(t, "CANCELLED", order.Status)
	require.Equal(t, http.StatusConflict, asAnn.do(http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil, nil))

	require.Equal(t, http.StatusConflict, asAnn.do(http.MethodPost, "/api/families/leave", nil, &e))
	require.Equal(t, "the owner cannot leave while other members remain", e.Error)
	require.Equal(t, http.StatusNoContent, asBob.do(http.MethodPost, "/api/families/leave", nil, nil))
	require.Equal(t, http.StatusNoContent, asAnn.do(http.MethodPost, "/api/families/leave", nil, nil))
}

func TestHealth(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	g := handler.NewHealth(func() time.Time { return now })

	rec := httptest.NewRecorder()
	verdict, err := g.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	require.Equal(t, controller.Responded, verdict)
	require.JSONEq(t, `{"status":"OK","message":"ShopTogether API is running",
		"timestamp":"2025-03-01T12:30:00.000Z","version":"1.0.0"}`, rec.Body.String())

	verdict, err = g.Handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/health", nil))
	require.NoError(t, err)
	require.Equal(t, controller.Next, verdict)
}

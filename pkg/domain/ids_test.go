package domain_test

import (
	"encoding/json"
	"shoptogether/pkg/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIDsMarshalAsStrings(t *testing.T) {
	raw := uuid.MustParse("7b1c0a52-6f0e-4d7e-9d3a-2b4c1f0e9a11")
	fid := domain.FamilyID(raw)

	out, err := json.Marshal(domain.User{ID: domain.UserID(raw), FamilyID: &fid})
	require.NoError(t, err)
	require.Contains(t, string(out), `"id":"7b1c0a52-6f0e-4d7e-9d3a-2b4c1f0e9a11"`)
	require.Contains(t, string(out), `"familyId":"7b1c0a52-6f0e-4d7e-9d3a-2b4c1f0e9a11"`)
	require.NotContains(t, string(out), "PasswordHash")

	var item domain.OrderItem
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"7b1c0a52-6f0e-4d7e-9d3a-2b4c1f0e9a11","quantity":2}`), &item))
	require.Equal(t, domain.ProductID(raw), item.ProductID)

	require.Error(t, json.Unmarshal([]byte(`{"productId":"nope"}`), &item))
}

func TestParseIDs(t *testing.T) {
	s := "7b1c0a52-6f0e-4d7e-9d3a-2b4c1f0e9a11"

	pid, err := domain.ParseProductID(s)
	require.NoError(t, err)
	require.Equal(t, s, pid.String())

	oid, err := domain.ParseOrderID(s)
	require.NoError(t, err)
	require.Equal(t, s, oid.String())

	_, err = domain.ParseUserID("x")
	require.Error(t, err)
	require.True(t, domain.UserID{}.IsZero())
}

func TestTotalAndHasMember(t *testing.T) {
	items := []domain.OrderItem{{Quantity: 2, UnitPriceCents: 150}, {Quantity: 1, UnitPriceCents: 99}}
	require.Equal(t, int64(399), domain.Total(items))
	require.Zero(t, domain.Total(nil))

	a, b := domain.UserID(uuid.New()), domain.UserID(uuid.New())
	f := domain.Family{Members: []domain.UserID{a}}
	require.True(t, f.HasMember(a))
	require.False(t, f.HasMember(b))
}

func TestOrderNumberMarshalsAsString(t *testing.T) {
	const number = int64(237815463776612353)

	out, err := json.Marshal(domain.Order{Number: number})
	require.NoError(t, err)
	require.Contains(t, string(out), `"number":"237815463776612353"`)

	var back domain.Order
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, number, back.Number)
}

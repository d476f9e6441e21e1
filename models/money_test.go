package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMoney_Format(t *testing.T) {
	cases := map[string]string{
		"0":         "$0.00",
		"600":       "$600.00",
		"1200.5":    "$1,200.50",
		"1234567.8": "$1,234,567.80",
		"-45.678":   "-$45.68",
	}
	for in, want := range cases {
		assert.Equal(t, want, MustMoney(in).Format("$"), in)
	}
}

func TestMoney_TimesAndMinorUnits(t *testing.T) {
	total := MustMoney("199.99").Times(3)
	assert.Equal(t, "599.97", total.StringFixed(2))
	assert.Equal(t, int64(59997), total.MinorUnits())
	assert.Equal(t, int64(1001), MustMoney("10.005").MinorUnits())
	assert.Equal(t, int64(600), MustMoney("600.00").MinorUnitsExp(0))
	assert.Equal(t, int64(1235), MustMoney("1234.5").MinorUnitsExp(0))
	assert.Equal(t, int64(12500), MustMoney("12.5").MinorUnitsExp(3))
}

func TestMoneyFromString_Invalid(t *testing.T) {
	_, err := MoneyFromString("two hundred")
	assert.Error(t, err)
}

func TestMoney_BSONDecimal128(t *testing.T) {
	type doc struct {
		Amount Money `bson:"amount"`
	}
	raw, err := bson.Marshal(doc{Amount: MustMoney("350.25")})
	require.NoError(t, err)

	var generic bson.M
	require.NoError(t, bson.Unmarshal(raw, &generic))
	assert.IsType(t, primitive.Decimal128{}, generic["amount"])

	var out doc
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.Amount.Equal(MustMoney("350.25").Decimal))
}

func TestMoney_BSONLegacyEncodings(t *testing.T) {
	type doc struct {
		Amount Money `bson:"amount"`
	}
	for _, legacy := range []bson.M{
		{"amount": 200.5},
		{"amount": int32(200)},
		{"amount": int64(200)},
		{"amount": "200.50"},
	} {
		raw, err := bson.Marshal(legacy)
		require.NoError(t, err)
		var out doc
		require.NoError(t, bson.Unmarshal(raw, &out))
		assert.True(t, out.Amount.GreaterThanOrEqual(MustMoney("200").Decimal), "%v", legacy)
	}
}

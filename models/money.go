package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a decimal amount in the hotel's currency. It is stored in Mongo as Decimal128.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromString parses a plain decimal string such as "199.50".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

// MustMoney is MoneyFromString for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Times multiplies the amount by an integer quantity (e.g. nights).
func (m Money) Times(n int) Money {
	return Money{Decimal: m.Mul(decimal.NewFromInt(int64(n)))}
}

// Format renders the amount with two decimals, thousands separators and a symbol prefix,
// e.g. "$1,200.00".
func (m Money) Format(symbol string) string {
	fixed := m.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String() + "." + frac
}

// MinorUnits returns the amount in cents, rounded half away from zero.
func (m Money) MinorUnits() int64 {
	return m.MinorUnitsExp(2)
}

// MinorUnitsExp returns the amount in the smallest unit of a currency with exp decimal
// places (0 for JPY, 3 for KWD), rounded half away from zero.
func (m Money) MinorUnitsExp(exp int32) int64 {
	return m.Shift(exp).Round(0).IntPart()
}

// MarshalBSONValue stores the amount as a Decimal128.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.String())
	if err != nil {
		return 0, nil, fmt.Errorf("encode money %s: %w", m.String(), err)
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue accepts Decimal128 as well as the numeric and string encodings older
// documents may carry.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(raw.Decimal128().String())
		if err != nil {
			return fmt.Errorf("decode money: %w", err)
		}
		m.Decimal = d
	case bsontype.Double:
		m.Decimal = decimal.NewFromFloat(raw.Double())
	case bsontype.Int32:
		m.Decimal = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		m.Decimal = decimal.NewFromInt(raw.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return fmt.Errorf("decode money: %w", err)
		}
		m.Decimal = d
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("decode money: unsupported bson type %s", t)
	}
	return nil
}

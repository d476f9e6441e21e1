package flow

import (
	"errors"
	"fmt"
	"reflect"

	"hotelbot/models"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// errCorruptMetadata marks a metadata bag that does not fit the current state.
var errCorruptMetadata = errors.New("conversation metadata does not match state")

// DurationSelectionData is what DURATION_SELECTION expects in the bag.
type DurationSelectionData struct {
	CheckIn string `mapstructure:"check_in"`
}

func (d DurationSelectionData) validate() error {
	if d.CheckIn == "" {
		return fmt.Errorf("%w: missing check_in", errCorruptMetadata)
	}
	return nil
}

// RoomSelectionData is what ROOM_SELECTION expects in the bag.
type RoomSelectionData struct {
	CheckIn     string            `mapstructure:"check_in"`
	Nights      int               `mapstructure:"nights"`
	RoomOptions map[string]string `mapstructure:"room_options"` // 1-based index -> room type id
}

func (d RoomSelectionData) validate() error {
	switch {
	case d.CheckIn == "":
		return fmt.Errorf("%w: missing check_in", errCorruptMetadata)
	case d.Nights < 1:
		return fmt.Errorf("%w: nights must be at least 1", errCorruptMetadata)
	case len(d.RoomOptions) == 0:
		return fmt.Errorf("%w: missing room_options", errCorruptMetadata)
	}
	return nil
}

// ConfirmationData is what CONFIRMATION expects in the bag.
type ConfirmationData struct {
	CheckIn    string       `mapstructure:"check_in"`
	Nights     int          `mapstructure:"nights"`
	RoomTypeID string       `mapstructure:"room_type_id"`
	TotalPrice models.Money `mapstructure:"total_price"`
}

func (d ConfirmationData) validate() error {
	switch {
	case d.CheckIn == "":
		return fmt.Errorf("%w: missing check_in", errCorruptMetadata)
	case d.Nights < 1:
		return fmt.Errorf("%w: nights must be at least 1", errCorruptMetadata)
	case d.RoomTypeID == "":
		return fmt.Errorf("%w: missing room_type_id", errCorruptMetadata)
	case !d.TotalPrice.IsPositive():
		return fmt.Errorf("%w: total_price must be positive", errCorruptMetadata)
	}
	return nil
}

var moneyType = reflect.TypeOf(models.Money{})

// moneyHook lets total_price be stored as a plain string or number.
func moneyHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != moneyType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return models.MoneyFromString(v)
	case float64:
		return models.NewMoney(decimal.NewFromFloat(v)), nil
	case int:
		return models.NewMoney(decimal.NewFromInt(int64(v))), nil
	case int32:
		return models.NewMoney(decimal.NewFromInt(int64(v))), nil
	case int64:
		return models.NewMoney(decimal.NewFromInt(v)), nil
	}
	return data, nil
}

type view interface {
	validate() error
}

// decodeView reads the bag into a typed per-state view and validates it.
func decodeView(bag models.Metadata, out view) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       moneyHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]interface{}(bag)); err != nil {
		return fmt.Errorf("%w: %v", errCorruptMetadata, err)
	}
	return out.validate()
}

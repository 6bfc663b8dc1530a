package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const MaxParcels = 10

var (
	distanceUnits = map[string]bool{"cm": true, "in": true, "ft": true, "mm": true, "m": true, "yd": true}
	massUnits     = map[string]bool{"g": true, "oz": true, "lb": true, "kg": true}
)

type Parcel struct {
	Length       decimal.Decimal `json:"length"`
	Width        decimal.Decimal `json:"width"`
	Height       decimal.Decimal `json:"height"`
	DistanceUnit string          `json:"distanceUnit"`
	Weight       decimal.Decimal `json:"weight"`
	MassUnit     string          `json:"massUnit"`
}

// Validate fills default units and checks dimensions.
func (p *Parcel) Validate() error {
	if p.DistanceUnit == "" {
		p.DistanceUnit = "cm"
	}
	if p.MassUnit == "" {
		p.MassUnit = "kg"
	}
	if !distanceUnits[p.DistanceUnit] {
		return fmt.Errorf("unsupported distance unit %q", p.DistanceUnit)
	}
	if !massUnits[p.MassUnit] {
		return fmt.Errorf("unsupported mass unit %q", p.MassUnit)
	}

	for _, d := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"length", p.Length},
		{"width", p.Width},
		{"height", p.Height},
		{"weight", p.Weight},
	} {
		if !d.value.IsPositive() {
			return fmt.Errorf("%s must be greater than zero", d.name)
		}
	}
	return nil
}

type RateQuote struct {
	Provider          string `json:"provider"`
	ServiceLevelName  string `json:"serviceLevelName"`
	ServiceLevelToken string `json:"serviceLevelToken"`
	Amount            Money  `json:"amount"`
	Currency          string `json:"currency"`
	EstimatedDays     *int   `json:"estimatedDays,omitempty"`
}

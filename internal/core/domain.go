package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates, TimeLayout for local
// clock times. Both match what the persisted records carry.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const (
	VehicleCar             VehicleType = "car"
	VehicleMotorcycle      VehicleType = "motorcycle"
	VehicleBike            VehicleType = "bike"
	VehiclePublicTransport VehicleType = "public_transport"
)

type (
	VehicleType string

	// ID identifies a record. Legacy data carries numeric ids, newer data
	// uses generated strings; both decode into the same type.
	ID string

	// TransportRecord is a single journey owned by a Trip. It has no
	// independent existence: deleting the trip deletes its records.
	TransportRecord struct {
		ID              ID              `json:"id"`
		Date            string          `json:"date"`
		Distance        decimal.Decimal `json:"distance"`
		TotalKm         decimal.Decimal `json:"totalKm"`
		Allowance       decimal.Decimal `json:"allowance"`
		VehicleType     VehicleType     `json:"vehicleType"`
		Destination     string          `json:"destination,omitempty"`
		ReceiptFileName string          `json:"receiptFileName,omitempty"`
	}

	// Trip is one work-related absence from home. MealAllowance and
	// SumTransportAllowances are derived fields, never user-entered.
	Trip struct {
		ID                     ID                `json:"id"`
		Date                   string            `json:"date"`
		EndDate                string            `json:"endDate,omitempty"`
		DepartureTime          string            `json:"departureTime,omitempty"`
		ReturnTime             string            `json:"returnTime,omitempty"`
		Destination            string            `json:"destination,omitempty"`
		Purpose                string            `json:"purpose,omitempty"`
		MealAllowance          decimal.Decimal   `json:"mealAllowance"`
		TransportRecords       []TransportRecord `json:"transportRecords"`
		SumTransportAllowances decimal.Decimal   `json:"sumTransportAllowances"`
		IsMultiDay             bool              `json:"isMultiDay,omitempty"`
	}

	EquipmentEntry struct {
		ID                ID              `json:"id"`
		Date              string          `json:"date"`
		Name              string          `json:"name"`
		Price             decimal.Decimal `json:"price"`
		Category          string          `json:"category,omitempty"`
		DepreciationYears int             `json:"depreciationYears"`
		ReceiptFileName   string          `json:"receiptFileName,omitempty"`
	}

	// ExpenseEntry is a private out-of-pocket cost, independent of trips.
	ExpenseEntry struct {
		ID              ID              `json:"id"`
		Date            string          `json:"date"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		Category        string          `json:"category,omitempty"`
		ReceiptFileName string          `json:"receiptFileName,omitempty"`
	}

	// MonthlyEmployerExpense is the employer reimbursement for one month.
	// At most one entry exists per (year, month).
	MonthlyEmployerExpense struct {
		ID     ID              `json:"id"`
		Year   int             `json:"year"`
		Month  int             `json:"month"`
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note,omitempty"`
	}

	CommuteMode struct {
		Active   bool            `json:"active"`
		Distance decimal.Decimal `json:"distance"`
	}

	PublicTransportMode struct {
		Active bool            `json:"active"`
		Cost   decimal.Decimal `json:"cost"`
	}

	// CommuteDefaults holds the configured commute per vehicle. Public
	// transport is never permitted as a default; Sanitized enforces that.
	CommuteDefaults struct {
		Car             CommuteMode         `json:"car"`
		Motorcycle      CommuteMode         `json:"motorcycle"`
		Bike            CommuteMode         `json:"bike"`
		PublicTransport PublicTransportMode `json:"public_transport"`
	}

	// EmployerRefundSettings drives refund suggestions and per-km netting.
	EmployerRefundSettings struct {
		ThresholdHours    float64         `json:"thresholdHours"`
		Amount            decimal.Decimal `json:"amount"`
		MileageRefundRate decimal.Decimal `json:"mileageRefundRate"`
	}

	// RateTable holds the configurable tax constants consumed by all
	// calculators. The JSON keys match the persisted settings record.
	RateTable struct {
		MealRate8h            decimal.Decimal `json:"mealRate8h"`
		MealRate24h           decimal.Decimal `json:"mealRate24h"`
		MileageRateCar        decimal.Decimal `json:"mileageRateCar"`
		MileageRateMotorcycle decimal.Decimal `json:"mileageRateMotorcycle"`
		MileageRateBike       decimal.Decimal `json:"mileageRateBike"`
		MinorAssetLimit       decimal.Decimal `json:"gwgLimit"`
	}
)

var (
	ErrEmptyID          = errors.New("empty id")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrNegativeRate     = errors.New("negative rate")
	ErrEmptyName        = errors.New("empty name")
	ErrUnknownVehicle   = errors.New("unknown vehicle type")
	ErrTripNotFound     = errors.New("trip not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrEndBeforeStart   = errors.New("end date before start date")
	ErrPublicDefault    = errors.New("public transport not allowed as commute default")
	ErrEmptyDescription = errors.New("empty description")
)

// NewID returns a fresh record id.
func NewID() ID {
	return ID(uuid.NewString())
}

// UnmarshalJSON accepts both string and numeric ids.
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*id = ID(str)
		return nil
	}
	// Numeric id from legacy data; keep its textual form.
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// ParseDate parses a wire-format date. The zero time and false are
// returned for empty or malformed input.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleCar, VehicleMotorcycle, VehicleBike, VehiclePublicTransport:
		return true
	}
	return false
}

// Motorized reports whether the allowance is computed from distance
// (public transport allowances are user-supplied ticket costs instead).
func (v VehicleType) Motorized() bool {
	switch v {
	case VehicleCar, VehicleMotorcycle, VehicleBike:
		return true
	}
	return false
}

// DefaultRateTable returns the hardcoded fallback constants used when no
// stored rate table exists yet.
func DefaultRateTable() RateTable {
	return RateTable{
		MealRate8h:            decimal.NewFromInt(14),
		MealRate24h:           decimal.NewFromInt(28),
		MileageRateCar:        decimal.NewFromFloat(0.30),
		MileageRateMotorcycle: decimal.NewFromFloat(0.20),
		MileageRateBike:       decimal.NewFromFloat(0.05),
		MinorAssetLimit:       decimal.NewFromInt(952),
	}
}

// MileageRate returns the per-km rate for a vehicle type; unknown types
// fall back to the car rate, matching how records were priced historically.
func (r RateTable) MileageRate(v VehicleType) decimal.Decimal {
	switch v {
	case VehicleMotorcycle:
		return r.MileageRateMotorcycle
	case VehicleBike:
		return r.MileageRateBike
	default:
		return r.MileageRateCar
	}
}

func (r RateTable) Validate() error {
	for _, d := range []decimal.Decimal{
		r.MealRate8h, r.MealRate24h,
		r.MileageRateCar, r.MileageRateMotorcycle, r.MileageRateBike,
		r.MinorAssetLimit,
	} {
		if d.IsNegative() {
			return ErrNegativeRate
		}
	}
	return nil
}

// DefaultCommute returns the initial commute configuration for new stores.
func DefaultCommute() CommuteDefaults {
	return CommuteDefaults{
		Car: CommuteMode{Active: true},
	}
}

// Sanitized normalizes a commute configuration for saving: a mode is only
// active with a positive distance, and public transport is forced off.
func (c CommuteDefaults) Sanitized() CommuteDefaults {
	sanitize := func(m CommuteMode) CommuteMode {
		if !m.Distance.IsPositive() {
			return CommuteMode{}
		}
		return CommuteMode{Active: m.Active, Distance: m.Distance}
	}
	return CommuteDefaults{
		Car:             sanitize(c.Car),
		Motorcycle:      sanitize(c.Motorcycle),
		Bike:            sanitize(c.Bike),
		PublicTransport: PublicTransportMode{},
	}
}

func (t Trip) Validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	start, ok := ParseDate(t.Date)
	if !ok {
		return ErrInvalidDate
	}
	if t.EndDate != "" {
		end, ok := ParseDate(t.EndDate)
		if !ok {
			return ErrInvalidDate
		}
		if end.Before(start) {
			return ErrEndBeforeStart
		}
	}
	if t.MealAllowance.IsNegative() {
		return ErrNegativeAmount
	}
	for _, r := range t.TransportRecords {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r TransportRecord) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if !r.VehicleType.Valid() {
		return ErrUnknownVehicle
	}
	if r.Allowance.IsNegative() || r.Distance.IsNegative() || r.TotalKm.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (e EquipmentEntry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if _, ok := ParseDate(e.Date); !ok {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.Price.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if _, ok := ParseDate(e.Date); !ok {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (m MonthlyEmployerExpense) Validate() error {
	if m.Month < 1 || m.Month > 12 {
		return ErrInvalidMonth
	}
	if m.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

package librelinkup

import (
	"encoding/json"
	"math"
	"time"
)

// Credentials are the account email and password. They are only used for the
// login request and never stored on the client.
type Credentials struct {
	Username string
	Password string
}

// loginRequest is the body of the login POST
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginStatus is the discriminator shared by every login reply. Status is nil
// when the field is absent.
type loginStatus struct {
	Status *int `json:"status"`
}

// loginSuccess is the status 0 reply
type loginSuccess struct {
	Status int       `json:"status"`
	Data   loginData `json:"data"`
}

type loginData struct {
	AuthTicket AuthTicket `json:"authTicket"`
	User       User       `json:"user"`
	Redirect   bool       `json:"redirect"`
	Region     string     `json:"region"`
}

// loginFailure is the reply for every non-zero status. Error may be null.
type loginFailure struct {
	Status int `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AuthTicket is the bearer token issued by the login endpoint
type AuthTicket struct {
	Token    string `json:"token"`
	Expires  int64  `json:"expires"`
	Duration int64  `json:"duration"`
}

// ExpiresAt returns the expiry as a time, or the zero time when unknown
func (t AuthTicket) ExpiresAt() time.Time {
	if t.Expires <= 0 {
		return time.Time{}
	}
	return time.Unix(t.Expires, 0)
}

// User is the account returned with a successful login
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Country   string `json:"country,omitempty"`
}

// GlucoseUnit is the unit a value is expressed in
type GlucoseUnit int

const (
	// UnitMmolPerL reports values in mmol/L
	UnitMmolPerL GlucoseUnit = 0
	// UnitMgPerDl reports values in mg/dL
	UnitMgPerDl GlucoseUnit = 1
)

// String returns the unit label
func (u GlucoseUnit) String() string {
	if u == UnitMgPerDl {
		return "mg/dL"
	}
	return "mmol/L"
}

// TrendArrow is the sensor's rate-of-change indicator
type TrendArrow int

const (
	// TrendUnknown is reported when the sensor has no trend
	TrendUnknown TrendArrow = iota
	// TrendFallingQuickly indicates a drop of more than 2 mg/dL per minute
	TrendFallingQuickly
	// TrendFalling indicates a drop between 1 and 2 mg/dL per minute
	TrendFalling
	// TrendStable indicates a change under 1 mg/dL per minute
	TrendStable
	// TrendRising indicates a rise between 1 and 2 mg/dL per minute
	TrendRising
	// TrendRisingQuickly indicates a rise of more than 2 mg/dL per minute
	TrendRisingQuickly
)

// String returns the string representation of a TrendArrow
func (t TrendArrow) String() string {
	switch t {
	case TrendFallingQuickly:
		return "FALLING_QUICKLY"
	case TrendFalling:
		return "FALLING"
	case TrendStable:
		return "STABLE"
	case TrendRising:
		return "RISING"
	case TrendRisingQuickly:
		return "RISING_QUICKLY"
	default:
		return "UNKNOWN"
	}
}

// Symbol returns an arrow for terminal output
func (t TrendArrow) Symbol() string {
	switch t {
	case TrendFallingQuickly:
		return "↓"
	case TrendFalling:
		return "↘"
	case TrendStable:
		return "→"
	case TrendRising:
		return "↗"
	case TrendRisingQuickly:
		return "↑"
	default:
		return "?"
	}
}

// timestampLayout is the layout LibreLinkUp uses for measurement times
const timestampLayout = "1/2/2006 3:04:05 PM"

// GlucoseItem is a single sensor measurement
type GlucoseItem struct {
	FactoryTimestamp string      `json:"FactoryTimestamp"`
	Timestamp        string      `json:"Timestamp"`
	Type             int         `json:"type"`
	ValueInMgPerDl   float64     `json:"ValueInMgPerDl"`
	TrendArrow       TrendArrow  `json:"TrendArrow,omitempty"`
	TrendMessage     *string     `json:"TrendMessage"`
	MeasurementColor int         `json:"MeasurementColor"`
	GlucoseUnits     GlucoseUnit `json:"GlucoseUnits"`
	Value            float64     `json:"Value"`
	IsHigh           bool        `json:"isHigh"`
	IsLow            bool        `json:"isLow"`
	AlarmType        *int        `json:"alarmType,omitempty"`
}

// Time parses the local Timestamp, falling back to FactoryTimestamp (UTC).
// It returns the zero time if neither can be parsed.
func (g GlucoseItem) Time() time.Time {
	if t, err := time.ParseInLocation(timestampLayout, g.Timestamp, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(timestampLayout, g.FactoryTimestamp); err == nil {
		return t
	}
	return time.Time{}
}

// MgPerDlToMmol converts mg/dL to mmol/L rounded to one decimal
func MgPerDlToMmol(v float64) float64 {
	return math.Round(v/18.0182*10) / 10
}

// Sensor is the active sensor attached to a connection
type Sensor struct {
	DeviceID     string `json:"deviceId"`
	SerialNumber string `json:"sn"`
	Activated    int64  `json:"a"`
	Warmup       int    `json:"w"`
	ProductType  int    `json:"pt"`
	Started      bool   `json:"s,omitempty"`
	LowJourney   bool   `json:"lj,omitempty"`
}

// ActivatedAt returns the sensor activation time
func (s Sensor) ActivatedAt() time.Time {
	if s.Activated <= 0 {
		return time.Time{}
	}
	return time.Unix(s.Activated, 0)
}

// Connection is a patient that shares glucose data with the account
type Connection struct {
	ID                 string          `json:"id"`
	PatientID          string          `json:"patientId"`
	Country            string          `json:"country"`
	Status             int             `json:"status"`
	FirstName          string          `json:"firstName"`
	LastName           string          `json:"lastName"`
	TargetLow          float64         `json:"targetLow"`
	TargetHigh         float64         `json:"targetHigh"`
	UOM                GlucoseUnit     `json:"uom"`
	Sensor             *Sensor         `json:"sensor,omitempty"`
	AlarmRules         json.RawMessage `json:"alarmRules,omitempty"`
	GlucoseMeasurement *GlucoseItem    `json:"glucoseMeasurement,omitempty"`
	GlucoseItem        *GlucoseItem    `json:"glucoseItem,omitempty"`
	GlucoseAlarm       json.RawMessage `json:"glucoseAlarm,omitempty"`
	PatientDevice      json.RawMessage `json:"patientDevice,omitempty"`
	Created            int64           `json:"created"`
}

// FullName returns the patient's display name
func (c *Connection) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	case c.LastName != "":
		return c.LastName
	default:
		return c.PatientID
	}
}

// Ticket is the refreshed token LibreLinkUp attaches to data replies.
// The client never swaps its token for it.
type Ticket struct {
	Token    string `json:"token"`
	Expires  int64  `json:"expires"`
	Duration int64  `json:"duration"`
}

// ConnectionsResponse is the reply of llu/connections
type ConnectionsResponse struct {
	Status int          `json:"status"`
	Data   []Connection `json:"data"`
	Ticket Ticket       `json:"ticket"`
}

// ActiveSensor pairs a sensor with the reader device it reports through
type ActiveSensor struct {
	Sensor Sensor          `json:"sensor"`
	Device json.RawMessage `json:"device,omitempty"`
}

// GraphData is the payload of llu/connections/{id}/graph
type GraphData struct {
	Connection    Connection     `json:"connection"`
	ActiveSensors []ActiveSensor `json:"activeSensors"`
	GraphData     []GlucoseItem  `json:"graphData"`
}

// GraphResponse is the reply of llu/connections/{id}/graph
type GraphResponse struct {
	Status int       `json:"status"`
	Data   GraphData `json:"data"`
	Ticket Ticket    `json:"ticket"`
}

// HistoryPeriod is one aggregation window of glucoseHistory
type HistoryPeriod struct {
	DateStart          int64   `json:"dateStart"`
	DateEnd            int64   `json:"dateEnd"`
	NoData             bool    `json:"noData"`
	DataType           string  `json:"dataType,omitempty"`
	AvgGlucose         float64 `json:"avgGlucose"`
	HypoEvents         int     `json:"hypoEvents"`
	AvgTestsPerDay     float64 `json:"avgTestsPerDay"`
	DaysOfData         int     `json:"daysOfData"`
	SerialNumber       string  `json:"serialNumber,omitempty"`
	SensorCount        int     `json:"sensorCount,omitempty"`
	PercentTimeInRange float64 `json:"percentTimeInRange,omitempty"`
}

// Start returns the period start time
func (p HistoryPeriod) Start() time.Time {
	return time.Unix(p.DateStart, 0)
}

// End returns the period end time
func (p HistoryPeriod) End() time.Time {
	return time.Unix(p.DateEnd, 0)
}

// HistoryData is the payload of glucoseHistory
type HistoryData struct {
	LastUpload    int64           `json:"lastUpload"`
	LastUploadCGM int64           `json:"lastUploadCGM"`
	LastUploadPro int64           `json:"lastUploadPro"`
	ReminderSent  int64           `json:"reminderSent"`
	Devices       json.RawMessage `json:"devices,omitempty"`
	Periods       []HistoryPeriod `json:"periods"`
}

// GlucoseHistory is the reply of glucoseHistory
type GlucoseHistory struct {
	Status int         `json:"status"`
	Data   HistoryData `json:"data"`
	Ticket Ticket      `json:"ticket"`
}

// LogBook is the reply of llu/connections/{id}/logbook
type LogBook struct {
	Status int           `json:"status"`
	Data   []GlucoseItem `json:"data"`
	Ticket Ticket        `json:"ticket"`
}

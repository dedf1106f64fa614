// Package potability classifies a water reading and writes the indicator
// slots shown next to the chart.
package potability

import (
	"fmt"
	"strconv"

	"github.com/02loveslollipop/water-quality-viewer/internal/models"
)

// Upper limits; a reading is safe only when every value is strictly below its limit.
const (
	TDSLimit          = 500.0
	ConductivityLimit = 2500.0
	HardnessLimit     = 1000.0
)

const (
	UnitTDS          = "ppm"
	UnitConductivity = "µS/cm"
	UnitHardness     = "mg/L"
)

// Slot names the display slots written by UpdateIndicators.
type Slot string

const (
	SlotTDS          Slot = "tdsValue"
	SlotConductivity Slot = "condValue"
	SlotHardness     Slot = "hardValue"
	SlotStatusText   Slot = "statusText"
	SlotStatusIcon   Slot = "statusIcon"
	SlotStatusBox    Slot = "statusBox"
)

// FlagSafe is toggled on SlotStatusBox.
const FlagSafe = "safe"

const (
	safeText   = "Água potável 💧"
	safeIcon   = "✅"
	unsafeText = "Água não potável ⚠️"
	unsafeIcon = "⚠️"
)

// Status is the binary potability classification. StatusUnknown is only
// reported before the first update.
type Status int

const (
	StatusUnknown Status = iota
	StatusSafe
	StatusUnsafe
)

func (s Status) String() string {
	switch s {
	case StatusSafe:
		return "safe"
	case StatusUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "safe":
		*s = StatusSafe
	case "unsafe":
		*s = StatusUnsafe
	case "unknown", "":
		*s = StatusUnknown
	default:
		return fmt.Errorf("unknown potability status %q", text)
	}
	return nil
}

// Classify applies the fixed thresholds.
func Classify(tds, conductivity, hardness float64) Status {
	if tds < TDSLimit && conductivity < ConductivityLimit && hardness < HardnessLimit {
		return StatusSafe
	}
	return StatusUnsafe
}

// FormatValue renders a value with its unit suffix, e.g. "400 ppm".
// Negative zero prints as "0".
func FormatValue(v float64, unit string) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}

// Indicator is the derived view of one displayed Reading.
type Indicator struct {
	Index        int    `json:"index"`
	Timestamp    string `json:"timestamp"`
	TDS          string `json:"tds"`
	Conductivity string `json:"conductivity"`
	Hardness     string `json:"hardness"`
	Status       Status `json:"status"`
	Safe         bool   `json:"safe"`
	StatusText   string `json:"status_text"`
	StatusIcon   string `json:"status_icon"`
}

// Build derives the Indicator for a reading at a given series index.
func Build(r models.Reading, index int) Indicator {
	status := Classify(r.TDS, r.Conductivity, r.Hardness)
	ind := Indicator{
		Index:        index,
		Timestamp:    r.Timestamp,
		TDS:          FormatValue(r.TDS, UnitTDS),
		Conductivity: FormatValue(r.Conductivity, UnitConductivity),
		Hardness:     FormatValue(r.Hardness, UnitHardness),
		Status:       status,
	}
	if status == StatusSafe {
		ind.Safe = true
		ind.StatusText = safeText
		ind.StatusIcon = safeIcon
	} else {
		ind.StatusText = unsafeText
		ind.StatusIcon = unsafeIcon
	}
	return ind
}

// Display is the host surface the indicator writes to.
type Display interface {
	SetText(slot Slot, text string)
	SetFlag(slot Slot, flag string, on bool)
}

// UpdateIndicators formats the triple, classifies it and writes the result to d.
func UpdateIndicators(d Display, tds, conductivity, hardness float64) Indicator {
	ind := Build(models.Reading{TDS: tds, Conductivity: conductivity, Hardness: hardness}, -1)
	Apply(d, ind)
	return ind
}

// Apply writes a prepared Indicator to the display slots.
func Apply(d Display, ind Indicator) {
	d.SetText(SlotTDS, ind.TDS)
	d.SetText(SlotConductivity, ind.Conductivity)
	d.SetText(SlotHardness, ind.Hardness)
	d.SetFlag(SlotStatusBox, FlagSafe, ind.Safe)
	d.SetText(SlotStatusText, ind.StatusText)
	d.SetText(SlotStatusIcon, ind.StatusIcon)
}

package report

import (
	"sort"
	"strings"

	"locoboard/internal/model"
	"locoboard/internal/parser"
)

// Subsystem categories.
const (
	SubsystemTraction  = "Traction"
	SubsystemAuxiliary = "Auxiliary"
	SubsystemControl   = "Control & Electronics"
	SubsystemBrake     = "Brake & Pneumatic"
	SubsystemBogie     = "Bogie & Mechanical"
	SubsystemOthers    = "Others"
)

// AnyFleet is the classification table consulted for every fleet.
const AnyFleet = "*"

// defaultSubsystems maps fleet → category → raw equipment codes.
var defaultSubsystems = map[string]map[string][]string{
	AnyFleet: {
		SubsystemTraction:  {"TM", "Traction Motor", "Transformer", "TFR", "Pantograph", "Panto", "VCB", "Converter", "SR", "Smoothing Reactor"},
		SubsystemAuxiliary: {"Aux", "Auxiliary", "Aux Converter", "BUR", "MCP", "Compressor", "Blower", "TM Blower", "Oil Pump", "Battery", "Battery Charger"},
		SubsystemControl:   {"VCU", "Control Electronics", "Relay", "Cab", "DDS", "Speedometer", "Loco Pilot Panel", "Cable", "Wiring"},
		SubsystemBrake:     {"Brake", "Air Brake", "CCB", "E70", "Pneumatic", "Pipe", "Brake Rigging"},
		SubsystemBogie:     {"Bogie", "Wheel", "Axle", "Suspension", "Coupler", "CBC", "Gear Case", "Body"},
	},
	"WAG-9": {
		SubsystemTraction: {"Line Converter", "Motor Converter", "Harmonic Filter", "HB1", "HB2"},
		SubsystemControl:  {"SB1", "SB2", "FLG", "Processor"},
	},
	"WAP-7": {
		SubsystemTraction: {"Line Converter", "Motor Converter", "Harmonic Filter", "HB1", "HB2"},
		SubsystemControl:  {"SB1", "SB2", "FLG", "Processor"},
	},
	"WAG-7": {
		SubsystemTraction: {"Tap Changer", "GR", "RPS", "Rectifier", "Line Contactor"},
		SubsystemControl:  {"Q Relay", "QOP", "Control Circuit"},
	},
}

// Classifier maps raw equipment codes to subsystem categories per fleet.
type Classifier struct {
	table map[string]map[string]string // fleet key → code key → category
}

// NewClassifier builds a classifier from fleet → category → codes. Codes and
// fleets are matched on their normalized form.
func NewClassifier(src map[string]map[string][]string) *Classifier {
	c := &Classifier{table: make(map[string]map[string]string, len(src))}
	for fleet, cats := range src {
		fk := fleetKey(fleet)
		m := c.table[fk]
		if m == nil {
			m = make(map[string]string)
			c.table[fk] = m
		}
		for cat, codes := range cats {
			for _, code := range codes {
				if k := parser.NormalizeKey(code); k != "" {
					m[k] = cat
				}
			}
		}
	}
	return c
}

var defaultClassifier = NewClassifier(defaultSubsystems)

// DefaultClassifier returns the built-in classification table.
func DefaultClassifier() *Classifier {
	return defaultClassifier
}

// DefaultSubsystems returns a copy of the built-in table for configuration
// files to extend.
func DefaultSubsystems() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(defaultSubsystems))
	for fleet, cats := range defaultSubsystems {
		m := make(map[string][]string, len(cats))
		for cat, codes := range cats {
			m[cat] = append([]string(nil), codes...)
		}
		out[fleet] = m
	}
	return out
}

// Classify returns the category of an equipment code in a fleet, looking at
// the fleet's own table before the shared one. Unknown codes are Others.
func (c *Classifier) Classify(fleet, equipment string) string {
	code := parser.NormalizeKey(equipment)
	if code == "" {
		return ""
	}
	if m, ok := c.table[fleetKey(fleet)]; ok {
		if cat, ok := m[code]; ok {
			return cat
		}
	}
	if cat, ok := c.table[AnyFleet][code]; ok {
		return cat
	}
	return SubsystemOthers
}

// Key groups a record by its subsystem.
func (c *Classifier) Key(f model.FailureRecord) string {
	return c.Classify(f.Fleet, f.Equipment)
}

// Categories lists every category known to the classifier, sorted.
func (c *Classifier) Categories() []string {
	seen := map[string]struct{}{SubsystemOthers: {}}
	for _, m := range c.table {
		for _, cat := range m {
			seen[cat] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

func fleetKey(fleet string) string {
	if strings.TrimSpace(fleet) == AnyFleet {
		return AnyFleet
	}
	return parser.NormalizeKey(fleet)
}

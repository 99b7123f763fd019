package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"locoboard/internal/model"
	"locoboard/internal/report"
)

// Labels holds display labels per table and the subsystem classification
// table per fleet.
type Labels struct {
	Columns    map[string]map[string]string   `yaml:"columns" json:"columns"`
	Subsystems map[string]map[string][]string `yaml:"subsystems" json:"-"`
}

var defaultFailureLabels = map[string]string{
	model.FieldDateFailed:          "Date Failed",
	model.FieldLocoNo:              "Loco No.",
	model.FieldMUWith:              "MU With",
	model.FieldICMS:                "ICMS / Message",
	model.FieldDivision:            "Division",
	model.FieldRailway:             "Railway",
	model.FieldBriefMessage:        "Brief Message",
	model.FieldCauseOfFailure:      "Cause of Failure",
	model.FieldEquipment:           "Equipment",
	model.FieldComponent:           "Component",
	model.FieldResponsibility:      "Responsibility",
	model.FieldInvestigationStatus: "Investigation Status",
	model.FieldReportLink:          "Report",
	model.FieldMediaLink:           "Media",
	model.FieldSubsystem:           "Subsystem",
	model.FieldFleet:               "Fleet",
}

// DefaultLabels returns the built-in labels.
func DefaultLabels() *Labels {
	failures := make(map[string]string, len(defaultFailureLabels))
	for k, v := range defaultFailureLabels {
		failures[k] = v
	}
	return &Labels{
		Columns: map[string]map[string]string{
			string(model.TableFailures): failures,
		},
		Subsystems: report.DefaultSubsystems(),
	}
}

// LoadLabels reads a labels file over the defaults. Tables and fleets present
// in the file replace the built-in entries; a missing file yields defaults.
func LoadLabels(path string) (*Labels, error) {
	labels := DefaultLabels()
	if path == "" {
		return labels, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return labels, nil
	}
	if err != nil {
		return nil, err
	}

	var file Labels
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for table, cols := range file.Columns {
		if labels.Columns[table] == nil {
			labels.Columns[table] = make(map[string]string, len(cols))
		}
		for k, v := range cols {
			labels.Columns[table][k] = v
		}
	}
	for fleet, cats := range file.Subsystems {
		labels.Subsystems[fleet] = cats
	}
	return labels, nil
}

// SaveLabels writes labels as YAML.
func SaveLabels(labels *Labels, path string) error {
	data, err := yaml.Marshal(labels)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Label returns the display label of a column, or the key itself.
func (l *Labels) Label(table model.TableKind, key string) string {
	if l != nil {
		if v, ok := l.Columns[string(table)][key]; ok && v != "" {
			return v
		}
	}
	return key
}

// Classifier builds the subsystem classifier from the labels.
func (l *Labels) Classifier() *report.Classifier {
	if l == nil || len(l.Subsystems) == 0 {
		return report.DefaultClassifier()
	}
	return report.NewClassifier(l.Subsystems)
}

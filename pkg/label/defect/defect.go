// Package defect describes non-fatal problems found while laying out and
// rendering labels. Defects are collected and reported alongside the labels;
// none of them aborts a batch.
package defect

import (
	"fmt"

	"github.com/matzehuels/etiket/pkg/errors"
)

// Kind classifies a defect.
type Kind string

const (
	// KindLayout: a cell span did not fit the grid and the cell was skipped.
	KindLayout Kind = "layout"
	// KindMissingField: a bound field is absent from the row; a placeholder was rendered.
	KindMissingField Kind = "missing_field"
	// KindResolution: the code-image resolver failed; an error placeholder was rendered.
	KindResolution Kind = "resolution"
)

// TemplateLevel is the Label index of defects that belong to the template
// rather than to a specific row.
const TemplateLevel = -1

// Defect is a single diagnostic.
type Defect struct {
	Kind Kind `json:"kind"`
	// Label is the index of the affected label, or TemplateLevel.
	Label int `json:"label"`
	// CellID names the template cell the defect belongs to.
	CellID string `json:"cell_id"`
	// Field is the row field involved, if any.
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements error so defects can be logged and wrapped like errors.
func (d Defect) Error() string {
	if d.Label == TemplateLevel {
		return fmt.Sprintf("%s: cell %s: %s", d.Kind, d.CellID, d.Message)
	}
	return fmt.Sprintf("%s: label %d: cell %s: %s", d.Kind, d.Label, d.CellID, d.Message)
}

// Code maps the defect kind to the structured error code used in API responses.
func (d Defect) Code() errors.Code {
	switch d.Kind {
	case KindLayout:
		return errors.ErrCodeInvalidTemplate
	case KindMissingField:
		return errors.ErrCodeInvalidField
	case KindResolution:
		return errors.ErrCodeResolutionFailed
	default:
		return errors.ErrCodeInternal
	}
}

// WithLabel returns a copy of d attributed to label i.
func (d Defect) WithLabel(i int) Defect {
	d.Label = i
	return d
}

// Count tallies defects by kind.
func Count(ds []Defect) map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range ds {
		counts[d.Kind]++
	}
	return counts
}

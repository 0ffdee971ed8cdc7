package sink

import (
	"encoding/json"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/defect"
)

type jsonOutput struct {
	Template string          `json:"template,omitempty"`
	Count    int             `json:"count"`
	Labels   []label.Label   `json:"labels"`
	Defects  []defect.Defect `json:"defects,omitempty"`
	Summary  map[string]int  `json:"defect_summary,omitempty"`
}

// RenderJSON exports the batch with a per-kind defect summary.
// Inline image bytes are base64 encoded by encoding/json.
func RenderJSON(b *label.Batch) ([]byte, error) {
	out := jsonOutput{
		Template: b.Template,
		Count:    b.Len(),
		Labels:   b.Labels,
		Defects:  b.Defects,
	}
	if out.Labels == nil {
		out.Labels = []label.Label{}
	}
	if len(b.Defects) > 0 {
		out.Summary = make(map[string]int)
		for k, n := range defect.Count(b.Defects) {
			out.Summary[string(k)] = n
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

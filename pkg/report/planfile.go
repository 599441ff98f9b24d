package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
	"gopkg.in/yaml.v3"
)

// WritePlanYAML dumps the evaluated plan to a YAML file so operators
// can review or archive what an invocation decided, independent of
// whether it ran.
func WritePlanYAML(path string, p plan.Plan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	type yamlOperation struct {
		Target    string  `yaml:"target"`
		Kind      string  `yaml:"kind"`
		Tier      string  `yaml:"tier"`
		Reason    string  `yaml:"reason"`
		State     string  `yaml:"state"`
		SkipNote  string  `yaml:"skip_note,omitempty"`
		SizeBytes int64   `yaml:"size_bytes"`
		DeadRatio float64 `yaml:"dead_ratio"`
	}

	type yamlPlan struct {
		Mode       string          `yaml:"mode"`
		CreatedAt  string          `yaml:"created_at"`
		Operations []yamlOperation `yaml:"operations"`
	}

	yp := yamlPlan{
		Mode:      string(p.Mode),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, op := range p.Operations {
		yp.Operations = append(yp.Operations, yamlOperation{
			Target:    op.Target.Name(),
			Kind:      string(op.Kind),
			Tier:      op.Tier.String(),
			Reason:    op.Reason.String(),
			State:     string(op.State),
			SkipNote:  op.SkipNote,
			SizeBytes: op.Target.SizeBytes,
			DeadRatio: op.Target.DeadTupleRatio(),
		})
	}

	data, err := yaml.Marshal(yp)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

package pipeline

import (
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/types"
)

// Receipt is the YAML record of the last run, written to the state
// directory at the end of a run. It is informational only; rigup never
// reads it back.
type Receipt struct {
	Started  time.Time     `yaml:"started"`
	Finished time.Time     `yaml:"finished"`
	Aborted  bool          `yaml:"aborted"`
	Steps    []ReceiptStep `yaml:"steps"`
	Warnings []string      `yaml:"warnings,omitempty"`
}

// ReceiptStep is one step entry in the receipt.
type ReceiptStep struct {
	Name     string `yaml:"name"`
	Status   string `yaml:"status"`
	Skipped  bool   `yaml:"skipped,omitempty"`
	Message  string `yaml:"message,omitempty"`
	Duration string `yaml:"duration"`
}

// WriteReceipt serializes the run result to path.
func WriteReceipt(fsys types.FS, path string, result RunResult) error {
	receipt := Receipt{
		Started:  result.Started,
		Finished: result.Finished,
		Aborted:  result.Aborted,
		Warnings: result.Warnings,
	}
	for _, sr := range result.Steps {
		receipt.Steps = append(receipt.Steps, ReceiptStep{
			Name:     sr.Name,
			Status:   sr.Status.String(),
			Skipped:  sr.Skipped,
			Message:  sr.Message,
			Duration: sr.Duration.Round(time.Millisecond).String(),
		})
	}

	data, err := yaml.Marshal(&receipt)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize run receipt")
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create state directory for %s", path)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write run receipt %s", path)
	}
	return nil
}

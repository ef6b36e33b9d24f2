package convert

import (
	"path/filepath"
	"strings"
)

// BatchOutcome is the per-input result of a batch run: exactly one of Result
// or Err is set.
type BatchOutcome struct {
	Input  string
	Output string
	Result *Result
	Err    error
}

// OutputName derives the PCD output path for an input LVX path, replacing
// the extension and re-rooting into outDir.
func OutputName(outDir, inputPath string) string {
	base := filepath.Base(inputPath)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".lvx") {
		base = base[:len(base)-len(ext)]
	}
	return filepath.Join(outDir, base+".pcd")
}

// Batch converts inputs in order with one shared config, writing each output
// into outDir. Runs are independent: each input gets a fresh Converter and
// one failure does not abort the rest. obs, if non-nil, observes every run
// in sequence.
func Batch(inputs []string, outDir string, cfg Config, obs Observer) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(inputs))
	for _, input := range inputs {
		runCfg := cfg
		runCfg.OutputPath = OutputName(outDir, input)

		res, err := New(runCfg, obs).Convert(input)
		outcomes = append(outcomes, BatchOutcome{
			Input:  input,
			Output: runCfg.OutputPath,
			Result: res,
			Err:    err,
		})
	}
	return outcomes
}

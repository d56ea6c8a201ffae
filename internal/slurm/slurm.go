// Package slurm submits units of work to a batch cluster as one job
// array. Submission is fire-and-forget: completion is observed later by
// collecting jobout files, never by polling from the submitting process.
package slurm

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/qecbench/montesweep/internal/sweep"
)

// Resources are the per-job resource directives, set once per experiment
// rather than per unit.
type Resources struct {
	CPUsPerTask int
	MemPerTask  string
	Time        string
	Partition   string
}

// Submission records one accepted job array.
type Submission struct {
	BatchDir string
	JobID    string
	NumTasks int
}

// SubmissionError reports a rejected batch. The whole batch fails as one;
// there is no partial resubmission.
type SubmissionError struct {
	Output string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("sbatch submission failed: %v\noutput: %s", e.Err, strings.TrimSpace(e.Output))
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Test seam, same trick the sbatch output parser is tested through.
var execCommand = exec.Command

// Submit writes a batch directory (command manifest, array script, output
// dir) under jobsDir and submits it as one job array. Each array task
// runs one unit and redirects its stdout to out/<point-key>.jobout for a
// later collect pass.
func Submit(jobsDir, sweepName string, units []sweep.Unit, res Resources) (*Submission, error) {
	if len(units) == 0 {
		return nil, fmt.Errorf("no units to submit")
	}
	batchDir := filepath.Join(jobsDir, fmt.Sprintf("%s-%s", sweepName, uuid.NewString()[:8]))
	batchDir, err := filepath.Abs(batchDir)
	if err != nil {
		return nil, fmt.Errorf("resolving batch dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(batchDir, "out"), 0o755); err != nil {
		return nil, fmt.Errorf("creating batch dir: %w", err)
	}

	var manifest strings.Builder
	for _, u := range units {
		manifest.WriteString(u.Key())
		manifest.WriteByte('\t')
		manifest.WriteString(shellJoin(u.Argv))
		manifest.WriteByte('\n')
	}
	manifestPath := filepath.Join(batchDir, "commands.tsv")
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		return nil, fmt.Errorf("writing command manifest: %w", err)
	}

	scriptPath := filepath.Join(batchDir, "job.sbatch")
	if err := os.WriteFile(scriptPath, []byte(arrayScript(batchDir)), 0o755); err != nil {
		return nil, fmt.Errorf("writing job script: %w", err)
	}

	args := []string{
		fmt.Sprintf("--array=0-%d", len(units)-1),
		fmt.Sprintf("--cpus-per-task=%d", res.CPUsPerTask),
		fmt.Sprintf("--mem=%s", res.MemPerTask),
		fmt.Sprintf("--time=%s", res.Time),
		fmt.Sprintf("--output=%s", filepath.Join(batchDir, "slurm-%A_%a.out")),
	}
	if res.Partition != "" {
		args = append(args, fmt.Sprintf("--partition=%s", res.Partition))
	}
	args = append(args, scriptPath)

	cmd := execCommand("sbatch", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &SubmissionError{Output: string(out), Err: err}
	}
	jobID, err := ParseJobID(string(out))
	if err != nil {
		return nil, &SubmissionError{Output: string(out), Err: err}
	}
	return &Submission{BatchDir: batchDir, JobID: jobID, NumTasks: len(units)}, nil
}

// ParseJobID extracts the job id from sbatch's stdout, typically
// "Submitted batch job 2723147": the last whitespace-separated field.
func ParseJobID(out string) (string, error) {
	parts := strings.Fields(out)
	if len(parts) == 0 {
		return "", fmt.Errorf("unable to parse sbatch output: %q", out)
	}
	return parts[len(parts)-1], nil
}

// arrayScript indexes the command manifest by array task id. The batch
// dir is baked in so the script is self-contained under scontrol requeue.
func arrayScript(batchDir string) string {
	return fmt.Sprintf(`#!/bin/bash
set -u
BATCH_DIR=%s
LINE=$(sed -n "$((SLURM_ARRAY_TASK_ID + 1))p" "$BATCH_DIR/commands.tsv")
KEY=${LINE%%%%$'\t'*}
CMD=${LINE#*$'\t'}
eval "$CMD" > "$BATCH_DIR/out/$KEY.jobout"
`, shellQuote(batchDir))
}

func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/chatlens/chatlens/transcript"
)

// PersistBundle is the session-level record written beside the messages.
type PersistBundle struct {
	SessionID          string                    `json:"session_id"`
	GeneratedAt        time.Time                 `json:"generated_at"`
	Status             Status                    `json:"status"`
	FailureReason      string                    `json:"failure_reason,omitempty"`
	Warnings           []transcript.ParseWarning `json:"warnings"`
	ParticipantMapping map[string]string         `json:"participant_mapping,omitempty"`
	Summary            *ConversationSummary      `json:"summary"`
}

func mkSessionDir(outputsRoot string) (string, string, error) {
	ts := time.Now().Format("20060102-150405")
	sid := "session_" + ts
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Persist writes a run's output as JSON into a timestamped session
// directory. This is the collaborator boundary: the pipeline itself never
// stores anything, the CLI hands its result here.
func Persist(outputsRoot string, res *Result) (sessionID, messagesPath, summaryPath string, err error) {
	sid, outDir, err := mkSessionDir(outputsRoot)
	if err != nil {
		return "", "", "", err
	}

	msgPath := filepath.Join(outDir, "messages.json")
	sumPath := filepath.Join(outDir, "summary.json")

	if err = writeJSON(msgPath, res.Messages); err != nil {
		return "", "", "", err
	}

	bundle := PersistBundle{
		SessionID:          sid,
		GeneratedAt:        time.Now(),
		Status:             res.Status,
		FailureReason:      res.FailureReason,
		Warnings:           res.Warnings,
		ParticipantMapping: res.ParticipantMapping,
		Summary:            res.Summary,
	}
	if err = writeJSON(sumPath, bundle); err != nil {
		return "", "", "", err
	}

	return sid, msgPath, sumPath, nil
}

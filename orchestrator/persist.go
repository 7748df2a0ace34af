package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type RunManifest struct {
	RunID        string    `json:"run_id"`
	Subdomain    string    `json:"subdomain"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	GeneratedAt  time.Time `json:"generated_at"`
	MeetingCount int       `json:"meeting_count"`
	Matched      int       `json:"matched"`
	Pages        int       `json:"pages"`
	StoppedEarly bool      `json:"stopped_early"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	ReportPath   string    `json:"report_path"`
}

// ReportName is the default report file name for day.
func ReportName(day time.Time) string {
	return "Transcripts_" + day.Format("20060102") + ".txt"
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

// Persist writes the report text to reportPath and a JSON manifest beside
// it with the same base name.
func Persist(reportPath string, r *Report) (manifestPath string, err error) {
	if dir := filepath.Dir(reportPath); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err = os.WriteFile(reportPath, []byte(r.Text), 0o644); err != nil {
		return "", err
	}

	manifestPath = strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".json"
	if manifestPath == reportPath {
		manifestPath = reportPath + ".manifest.json"
	}
	m := RunManifest{
		RunID:        r.RunID,
		Subdomain:    r.Subdomain,
		WindowStart:  r.Window.Start,
		WindowEnd:    r.Window.End,
		GeneratedAt:  time.Now(),
		MeetingCount: r.MeetingCount,
		Matched:      r.Matched,
		Pages:        r.Pages,
		StoppedEarly: r.StoppedEarly,
		ElapsedMS:    r.Elapsed.Milliseconds(),
		ReportPath:   reportPath,
	}
	if err = writeJSON(manifestPath, m); err != nil {
		return "", err
	}
	return manifestPath, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Returned when the backup mapping has no entry that matches the input.
const backupApology = "Sorry, our main AI is temporarily down, but I'm still here! Try asking something else."

// BackupService produces a canned best-effort answer when the primary
// provider path has failed. The phrase-to-answer mapping is fetched from
// an external URL at call time; a fetch failure is terminal for this
// path.
type BackupService interface {
	Respond(ctx context.Context, userText string) (string, error)
}

type backupService struct {
	dataURL    string
	httpClient *http.Client
}

// NewBackupService creates a BackupService reading its mapping from dataURL.
func NewBackupService(dataURL string) BackupService {
	return &backupService{dataURL: dataURL, httpClient: &http.Client{}}
}

// NewBackupServiceWithClient is NewBackupService with an injected HTTP
// client for tests.
func NewBackupServiceWithClient(dataURL string, client *http.Client) BackupService {
	return &backupService{dataURL: dataURL, httpClient: client}
}

func (s *backupService) Respond(ctx context.Context, userText string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.dataURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build backup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("backup data source unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("backup data source returned status %d", resp.StatusCode)
	}

	var mapping map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&mapping); err != nil {
		return "", fmt.Errorf("failed to decode backup data: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(userText))

	// Exact match precedes partial containment.
	if answer, ok := mapping[normalized]; ok {
		return answer, nil
	}

	// First key, in map iteration order, where either string contains the
	// other. The order is deliberately left arbitrary; see DESIGN.md.
	for key, answer := range mapping {
		lowerKey := strings.ToLower(key)
		if strings.Contains(normalized, lowerKey) || strings.Contains(lowerKey, normalized) {
			log.Printf("INFO: [Backup] Partial match '%s' for input '%.40s'.", key, normalized)
			return answer, nil
		}
	}

	return backupApology, nil
}

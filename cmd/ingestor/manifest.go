package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// Manifest lists the surveys to register and where their header exports live.
type Manifest struct {
	Source  string        `json:"source"`
	Surveys []SurveyEntry `json:"surveys"`
}

type SurveyEntry struct {
	SDPath  string `json:"sdpath"`
	Name    string `json:"name"`
	Headers string `json:"headers"` // local path or http(s) URL
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// loadSurvey fetches an entry's header export and turns it into a survey.
func loadSurvey(ctx context.Context, client *http.Client, e SurveyEntry) (domain.Survey, error) {
	raw, err := fetch(ctx, client, e.Headers)
	if err != nil {
		return domain.Survey{}, err
	}

	var h domain.VolumeHeaders
	if err := json.Unmarshal(raw, &h); err != nil {
		return domain.Survey{}, fmt.Errorf("parse headers %s: %w", e.Headers, err)
	}

	return domain.Survey{SDPath: e.SDPath, Name: e.Name, Geometry: h.Geometry()}, nil
}

func fetch(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.ReadFile(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: HTTP %d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

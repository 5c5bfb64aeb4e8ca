// Package hotpot downloads, caches, and loads the HotpotQA benchmark
// dataset. See https://hotpotqa.github.io/ for dataset details.
package hotpot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// urlTemplate is the public download location for the HotpotQA JSON
// files, parameterized by dataset name.
const urlTemplate = "http://curtis.ml.cmu.edu/datasets/hotpot/hotpot_%s_v1.json"

// Supported dataset names.
const (
	DatasetDistractor = "dev_distractor"
	DatasetFullwiki   = "dev_fullwiki"
)

// Question is one labeled HotpotQA question object.
type Question struct {
	ID       string      `json:"_id"`
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Type     string      `json:"type,omitempty"`
	Level    string      `json:"level,omitempty"`
	Context  []Paragraph `json:"context,omitempty"`
}

// Paragraph is one supporting or distractor passage: a title plus its
// sentences. On the wire it is a two-element mixed array
// [title, [sentence, ...]], hence the custom unmarshaler.
type Paragraph struct {
	Title     string
	Sentences []string
}

// UnmarshalJSON decodes the [title, [sentences...]] pair form.
func (p *Paragraph) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hotpot: parse context entry: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("hotpot: context entry has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Title); err != nil {
		return fmt.Errorf("hotpot: parse context title: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Sentences); err != nil {
		return fmt.Errorf("hotpot: parse context sentences: %w", err)
	}
	return nil
}

// MarshalJSON encodes the pair form back out, round-tripping the wire
// format.
func (p Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Title, p.Sentences})
}

// Text joins the paragraph sentences with newlines.
func (p Paragraph) Text() string {
	return strings.Join(p.Sentences, "\n")
}

// Supported reports whether name is a dataset this package knows how
// to evaluate.
func Supported(name string) bool {
	switch strings.TrimSpace(name) {
	case DatasetDistractor, DatasetFullwiki:
		return true
	default:
		return false
	}
}

// Downloader fetches dataset files into a local cache directory. The
// cache is an idempotent fill: a file present under CacheDir is never
// re-fetched or invalidated.
type Downloader struct {
	CacheDir string
	Client   *http.Client
}

// Path returns the cache location for a dataset without touching the
// network or filesystem.
func (d *Downloader) Path(name string) string {
	if d == nil {
		return ""
	}
	return filepath.Join(d.CacheDir, "datasets", "HotpotQA", strings.TrimSpace(name)+".json")
}

// Download ensures the named dataset exists in the cache and returns
// its path. If the cached file already exists no network call occurs.
// On any download or write failure the partial file is removed before
// the error is returned.
func (d *Downloader) Download(ctx context.Context, name string) (string, error) {
	if d == nil {
		return "", errors.New("hotpot: nil downloader")
	}
	if ctx == nil {
		return "", errors.New("hotpot: nil context")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("hotpot: empty dataset name")
	}
	if strings.TrimSpace(d.CacheDir) == "" {
		return "", errors.New("hotpot: empty cache dir")
	}

	path := d.Path(name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := d.fetch(ctx, name, path); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			_ = os.Remove(path)
		}
		return "", fmt.Errorf("hotpot: download dataset %q: %w", name, err)
	}
	return path, nil
}

func (d *Downloader) fetch(ctx context.Context, name, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	url := fmt.Sprintf(urlTemplate, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadStats reports what a Load call selected from a dataset file.
type LoadStats struct {
	Total    int
	Loaded   int
	Fraction float64
}

// Load reads a cached dataset file and returns up to limit questions.
// When fraction is positive it overrides limit and selects
// fraction*total questions. The reported fraction is what was actually
// loaded relative to the file total, rounded to five decimals.
func Load(path string, limit int, fraction float64) ([]Question, LoadStats, error) {
	var stats LoadStats

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, stats, errors.New("hotpot: empty dataset path")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, stats, fmt.Errorf("hotpot: read dataset %q: %w", path, err)
	}

	var all []Question
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, stats, fmt.Errorf("hotpot: parse dataset %q: %w", path, err)
	}
	if len(all) == 0 {
		return nil, stats, fmt.Errorf("hotpot: dataset %q is empty", path)
	}

	n := limit
	if fraction > 0 {
		n = int(float64(len(all)) * fraction)
	} else {
		fraction = math.Round(float64(limit)/float64(len(all))*1e5) / 1e5
	}
	if n <= 0 || n > len(all) {
		n = len(all)
	}

	stats = LoadStats{Total: len(all), Loaded: n, Fraction: fraction}
	out := make([]Question, n)
	copy(out, all[:n])
	return out, stats, nil
}

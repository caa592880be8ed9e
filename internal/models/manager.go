// Package models manages the speech recognition models used for optional
// per-segment transcription: a small catalog of downloadable Vosk models,
// local storage under the user's data directory, and a persisted default.
package models

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Model describes a downloadable Vosk model
type Model struct {
	Name        string
	Language    string
	Size        string
	URL         string
	Description string
}

// AvailableModels is the catalog of models the transcription engine supports
var AvailableModels = []Model{
	{
		Name:        "vosk-model-small-en-us-0.15",
		Language:    "en-US",
		Size:        "40M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip",
		Description: "Lightweight English model, fast but less accurate",
	},
	{
		Name:        "vosk-model-en-us-0.22-lgraph",
		Language:    "en-US",
		Size:        "128M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22-lgraph.zip",
		Description: "Medium English model, balanced speed and accuracy",
	},
	{
		Name:        "vosk-model-en-us-0.22",
		Language:    "en-US",
		Size:        "1.8G",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22.zip",
		Description: "Large English model, slower but more accurate",
	},
}

// DefaultModelName is the model used when no default has been set
const DefaultModelName = "vosk-model-small-en-us-0.15"

// defaultMarkerFile persists the user-selected default model name
const defaultMarkerFile = ".default_model"

// FindModel returns the catalog entry for name, or nil if unknown
func FindModel(name string) *Model {
	for i := range AvailableModels {
		if AvailableModels[i].Name == name {
			return &AvailableModels[i]
		}
	}
	return nil
}

// Dir returns the directory where models are stored (~/.diar/models)
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".diar", "models"), nil
}

// GetDefaultModel returns the configured default model name
func GetDefaultModel() (string, error) {
	dir, err := Dir()
	if err != nil {
		return DefaultModelName, err
	}

	data, err := os.ReadFile(filepath.Join(dir, defaultMarkerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultModelName, nil
		}
		return DefaultModelName, err
	}

	name := strings.TrimSpace(string(data))
	if name == "" {
		return DefaultModelName, nil
	}
	return name, nil
}

// SetDefaultModel persists name as the default model
func SetDefaultModel(name string) error {
	if FindModel(name) == nil {
		return fmt.Errorf("unknown model: %s", name)
	}

	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, defaultMarkerFile), []byte(name), 0644); err != nil {
		return fmt.Errorf("failed to save default model: %w", err)
	}
	return nil
}

// IsDownloaded checks whether a model is present locally
func IsDownloaded(name string) (bool, error) {
	dir, err := Dir()
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// GetModelPath returns the local path of a downloaded model
func GetModelPath(name string) (string, error) {
	downloaded, err := IsDownloaded(name)
	if err != nil {
		return "", err
	}
	if !downloaded {
		return "", fmt.Errorf("model %s is not downloaded (use --download-model %s)", name, name)
	}

	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ListDownloaded returns the names of locally available models
func ListDownloaded() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Download fetches a model archive and extracts it into the models directory
func Download(name string) error {
	model := FindModel(name)
	if model == nil {
		return fmt.Errorf("unknown model: %s", name)
	}

	downloaded, err := IsDownloaded(name)
	if err != nil {
		return err
	}
	if downloaded {
		return nil
	}

	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	archivePath := filepath.Join(dir, name+".zip")
	if err := downloadFile(model.URL, archivePath); err != nil {
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	defer os.Remove(archivePath)

	if err := extractZip(archivePath, dir); err != nil {
		return fmt.Errorf("failed to extract %s: %w", name, err)
	}
	return nil
}

// downloadFile fetches url into path
func downloadFile(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// extractZip extracts a model archive into destDir, rejecting entries that
// would escape it.
func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, file := range r.File {
		target := filepath.Join(destDir, file.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %s escapes destination", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		src, err := file.Open()
		if err != nil {
			return err
		}

		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
		if err != nil {
			src.Close()
			return err
		}

		_, err = io.Copy(dst, src)
		dst.Close()
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

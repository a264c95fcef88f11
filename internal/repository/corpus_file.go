package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/openlive/faq-chatbot/internal/models"
)

// ErrUnsupportedFormat is returned for corpus files that are neither JSON nor
// YAML.
var ErrUnsupportedFormat = errors.New("unsupported corpus format")

const watchDebounce = 250 * time.Millisecond

// FileCorpusRepository stores the corpus in a single JSON or YAML file. The
// format follows the file extension.
type FileCorpusRepository struct {
	path string

	mu       sync.Mutex
	lastHash [sha256.Size]byte
}

// NewFileCorpusRepository returns a repository for the file at path.
func NewFileCorpusRepository(path string) *FileCorpusRepository {
	return &FileCorpusRepository{path: path}
}

// Path returns the corpus file location.
func (r *FileCorpusRepository) Path() string { return r.path }

// Load reads and decodes the corpus file.
func (r *FileCorpusRepository) Load(_ context.Context) (models.Corpus, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return models.Corpus{}, fmt.Errorf("read %s: %w", r.path, err)
	}

	corpus, err := DecodeCorpus(r.path, data)
	if err != nil {
		return models.Corpus{}, err
	}

	r.remember(data)
	return corpus, nil
}

// Save writes the corpus atomically: a temp file in the same directory is
// renamed over the target.
func (r *FileCorpusRepository) Save(_ context.Context, corpus models.Corpus) error {
	data, err := EncodeCorpus(r.path, corpus)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".faq-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Remember first so the watcher ignores the event caused by our own rename.
	prev := r.remember(data)
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		r.restore(prev)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	log.Printf("[Corpus File] Saved %d categories to %s", len(corpus.Categories), r.path)
	return nil
}

// Watch calls onChange whenever the corpus file changes on disk with content
// different from what this repository last read or wrote. Bursts of events
// are coalesced. Watch blocks until ctx is done.
func (r *FileCorpusRepository) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and Save replace the file by rename.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}
	log.Printf("[Corpus File] Watching %s for changes", r.path)

	target := filepath.Clean(r.path)
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Corpus File] Watcher error: %v", err)

		case <-timer.C:
			if r.changed() {
				log.Printf("[Corpus File] %s changed on disk", r.path)
				onChange()
			}
		}
	}
}

// remember records the hash of data and returns the one it replaced.
func (r *FileCorpusRepository) remember(data []byte) [32]byte {
	sum := sha256.Sum256(data)
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.lastHash
	r.lastHash = sum
	return prev
}

func (r *FileCorpusRepository) restore(hash [32]byte) {
	r.mu.Lock()
	r.lastHash = hash
	r.mu.Unlock()
}

func (r *FileCorpusRepository) changed() bool {
	data, err := os.ReadFile(r.path)
	if err != nil {
		log.Printf("[Corpus File] Cannot read %s: %v", r.path, err)
		return false
	}
	sum := sha256.Sum256(data)

	r.mu.Lock()
	defer r.mu.Unlock()
	return sum != r.lastHash
}

// DecodeCorpus parses data as JSON or YAML depending on the extension of
// path.
func DecodeCorpus(path string, data []byte) (models.Corpus, error) {
	var corpus models.Corpus
	switch format(path) {
	case "json":
		if err := json.Unmarshal(data, &corpus); err != nil {
			return models.Corpus{}, fmt.Errorf("decode %s: %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &corpus); err != nil {
			return models.Corpus{}, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return models.Corpus{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return corpus, nil
}

// EncodeCorpus renders corpus in the format implied by path.
func EncodeCorpus(path string, corpus models.Corpus) ([]byte, error) {
	switch format(path) {
	case "json":
		data, err := json.MarshalIndent(corpus, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode corpus: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(corpus); err != nil {
			return nil, fmt.Errorf("encode corpus: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode corpus: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

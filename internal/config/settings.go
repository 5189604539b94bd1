package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// File implements ports.Settings by editing the YAML config file in place.
// Only the touched keys change; other keys, their order and comments stay.
type File struct {
	mu   sync.Mutex
	path string
	cfg  *Config
}

// NewFile binds the loaded cfg to the file at path.
func NewFile(path string, cfg *Config) *File {
	return &File{path: path, cfg: cfg}
}

func (f *File) Path() string { return f.path }

func (f *File) NotifierEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.UseNotifier
}

func (f *File) APIKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Toggl.APIToken
}

func (f *File) SetNotifier(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.edit(func(root *yaml.Node) {
		setScalar(root, "use_notifier", "!!bool", strconv.FormatBool(enabled))
	})
	if err != nil {
		return err
	}
	f.cfg.UseNotifier = enabled
	return nil
}

// ClearAPIKey forgets the stored key. A key set through TOGGL_API_TOKEN
// comes back on the next run.
func (f *File) ClearAPIKey() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.edit(func(root *yaml.Node) {
		if toggl := child(root, "toggl"); toggl != nil && toggl.Kind == yaml.MappingNode {
			deleteKey(toggl, "api_key")
		}
	})
	if err != nil {
		return err
	}
	f.cfg.Toggl.APIToken = ""
	return nil
}

// edit applies fn to the top-level mapping of the file, keeping comments
// and key order.
func (f *File) edit(fn func(root *yaml.Node)) error {
	if f.path == "" {
		return errors.New("config: no file to write")
	}
	var doc yaml.Node
	content, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return errors.New("parse config: top level is not a mapping")
	}

	fn(root)

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(f.path, out.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// child returns the value node under key in mapping m, or nil.
func child(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setScalar(m *yaml.Node, key, tag, value string) {
	if v := child(m, key); v != nil {
		v.Kind, v.Tag, v.Value, v.Content = yaml.ScalarNode, tag, value, nil
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
}

func deleteKey(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/roy/pkg/roy"
	"gopkg.in/yaml.v3"
)

// configFile represents the structure of the profiles configuration file.
type configFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Profile describes one API target: where it lives and how to authenticate.
type Profile struct {
	ID             string            `json:"id" yaml:"id"`
	BaseURL        string            `json:"base_url" yaml:"base_url"`
	Token          string            `json:"token" yaml:"token"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Registry materializes profile definitions loaded from config files.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

// LoadRegistry loads the profile registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	fileReg, err := parseProfiles(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Profiles) == 0 {
		return nil, errors.New("profiles file contains no profiles entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(fileReg.Profiles)),
		idx:      make(map[string]Profile, len(fileReg.Profiles)),
	}
	for i := range fileReg.Profiles {
		p := sanitizeProfile(fileReg.Profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		reg.profiles[i] = p
		reg.idx[p.ID] = p
	}

	return reg, nil
}

// parseProfiles decodes the file content, picking the decoder from the extension
// when there is one.
func parseProfiles(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cfg configFile
		if err := d.fn(data, &cfg); err != nil {
			errs = append(errs, fmt.Errorf("decode %s profiles: %w", d.name, err))
			continue
		}
		return cfg, nil
	}
	if len(errs) > 0 {
		return configFile{}, errors.Join(errs...)
	}
	return configFile{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

// sanitizeProfile trims the profile fields. The base URL keeps its inner
// content untouched since it is concatenated verbatim.
func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.Token = strings.TrimSpace(p.Token)
	p.Headers = sanitizeHeaders(p.Headers)
	if p.TimeoutSeconds < 0 {
		p.TimeoutSeconds = 0
	}
	return p
}

// sanitizeHeaders trims, canonicalizes keys and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := http.CanonicalHeaderKey(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.BaseURL == "" {
		return fmt.Errorf("base_url is required for profile %q", p.ID)
	}
	return nil
}

// ByID returns the profile by id.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns all configured profiles in file order.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Timeout returns the per-request timeout, zero when unset.
func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Options converts the profile into client options. The token is not included;
// see NewClient.
func (p Profile) Options() []roy.Option {
	var opts []roy.Option
	if len(p.Headers) > 0 {
		opts = append(opts, roy.WithHeaders(p.Headers))
	}
	if p.TimeoutSeconds > 0 {
		opts = append(opts, roy.WithTimeout(p.Timeout()))
	}
	return opts
}

// NewClient builds a client for the profile, authenticated when a token is set.
// Extra options are applied after the profile's own.
func NewClient(p Profile, extra ...roy.Option) *roy.Client {
	opts := append(p.Options(), extra...)
	if p.Token != "" {
		return roy.NewAuth(p.BaseURL, p.Token, opts...)
	}
	return roy.New(p.BaseURL, opts...)
}

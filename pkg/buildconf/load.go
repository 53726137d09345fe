package buildconf

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a config from a local path or an HTTP(S) location,
// applies defaults and validates it.
func Load(location string) (*Config, error) {
	content, err := read(location)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read(location string) ([]byte, error) {
	if IsRemoteLocation(location) {
		return readRemote(location)
	}
	return os.ReadFile(location)
}

func readRemote(location string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("load config failed: %s status=%d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Author: Rosie Kern <rk18@sanger.ac.uk>
 * Author: Iaroslav Popov <ip13@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package options

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnvKey is the environment variable that may hold the path to a
// config file.
const ConfigEnvKey = "GPLOT_CONFIG"

// Config is the content of a gplot config file. Defaults are option key/value
// pairs as accepted by Parse(); the other fields configure the engine.
type Config struct {
	Engine         string            `yaml:"engine,omitempty"`
	Terminal       string            `yaml:"terminal,omitempty"`
	TempDir        string            `yaml:"temp_dir,omitempty"`
	BarrierTimeout time.Duration     `yaml:"barrier_timeout,omitempty"`
	Defaults       map[string]string `yaml:"defaults,omitempty"`
}

// LoadConfig reads the YAML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if _, err := cfg.DefaultSet(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultSet returns Defaults() with the config's defaults merged over it.
// Keys are applied in sorted order so the result doesn't depend on map order.
func (c Config) DefaultSet() (Set, error) {
	keys := make([]string, 0, len(c.Defaults))
	for k := range c.Defaults {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	opts := make([]Option, 0, len(keys))

	for _, k := range keys {
		opt, err := Parse(k, c.Defaults[k])
		if err != nil {
			return Set{}, err
		}

		opts = append(opts, opt)
	}

	return Merge(Defaults(), opts...).Set, nil
}

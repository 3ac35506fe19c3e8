package shareline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy centralizes the business thresholds that used to be scattered as
// literals: the trend-classification band, the minimum-activity gate and the
// persistence tier threshold. There is exactly one source of truth for them,
// and deployments override it with a YAML file.
type Policy struct {
	// TrendThreshold is the absolute trend change (in shares) beyond which a
	// holder is classified as a buyer or a seller.
	TrendThreshold int64 `yaml:"trend_threshold"`

	// MinActiveShares is the minimum share count an entity must have held at
	// least once, on or after ActivitySince, to appear in comparison and
	// ranking views.
	MinActiveShares int64 `yaml:"min_active_shares"`

	// ActivitySince is the cutoff date of the minimum-activity gate,
	// typically the listing date.
	ActivitySince Date `yaml:"activity_since"`

	// FastTierLimit is the serialized size, in bytes, above which a value is
	// persisted on the durable tier instead of the fast one.
	FastTierLimit int `yaml:"fast_tier_limit"`
}

// DefaultPolicy returns the observed production defaults.
func DefaultPolicy() Policy {
	return Policy{
		TrendThreshold:  1000,
		MinActiveShares: 20000,
		ActivitySince:   NewDate(2021, 7, 19),
		FastTierLimit:   2 << 20, // 2 MiB
	}
}

// LoadPolicy reads a policy YAML file over the defaults: absent fields keep
// their default value, so a file may override a single threshold.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("cannot read policy file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("cannot parse policy file %q: %w", path, err)
	}
	return p, nil
}

// UnmarshalYAML parses a Date from its ISO string form in YAML files.
func (j *Date) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	d, err := ParseDate(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

// MarshalYAML formats a Date as its ISO string form.
func (j Date) MarshalYAML() (any, error) { return j.String(), nil }

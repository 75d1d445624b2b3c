package bankprofile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

// AmountMarker ties a lexical token ("bs.", "$us") to the currency it
// announces. Tokens are matched case-insensitively at word boundaries.
type AmountMarker struct {
	Token    string          `yaml:"token"`
	Currency domain.Currency `yaml:"currency"`
}

// Profile is the declarative description of one bank source. Adding a bank
// is a data change: a new profile, not new branching logic.
type Profile struct {
	BankID               string         `yaml:"bankId"`
	DisplayName          string         `yaml:"displayName"`
	SourcePackages       []string       `yaml:"sourcePackages"`
	Keywords             []string       `yaml:"keywords"`
	AmountMarkers        []AmountMarker `yaml:"amountMarkers"`
	NameIntroducers      []string       `yaml:"nameIntroducers"`
	ReferenceIntroducers []string       `yaml:"referenceIntroducers"`
}

func (p Profile) Validate() error {
	var errs []string
	if strings.TrimSpace(p.BankID) == "" {
		errs = append(errs, "bankId is required")
	}
	if len(p.Keywords) == 0 && len(p.SourcePackages) == 0 {
		errs = append(errs, "at least one keyword or sourcePackage is required")
	}
	if len(p.AmountMarkers) == 0 {
		errs = append(errs, "at least one amountMarker is required")
	}
	for _, marker := range p.AmountMarkers {
		if strings.TrimSpace(marker.Token) == "" {
			errs = append(errs, "amountMarker token is required")
		}
		if !marker.Currency.Valid() {
			errs = append(errs, fmt.Sprintf("amountMarker currency %q is not supported", marker.Currency))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type overrideFile struct {
	Banks []Profile `yaml:"banks"`
}

// LoadFile reads bank profiles from a YAML override file. Profiles sharing
// a bankId with a builtin replace it wholesale; others are appended.
func LoadFile(path string) ([]Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank profile file: %w", err)
	}
	var doc overrideFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse bank profile file: %w", err)
	}
	for i, profile := range doc.Banks {
		if err := profile.Validate(); err != nil {
			return nil, fmt.Errorf("bank profile %d (%s): %w", i, profile.BankID, err)
		}
	}
	return doc.Banks, nil
}

func Merge(base, overrides []Profile) []Profile {
	if len(overrides) == 0 {
		return base
	}
	byID := make(map[string]Profile, len(overrides))
	for _, override := range overrides {
		byID[strings.ToLower(override.BankID)] = override
	}
	merged := make([]Profile, 0, len(base)+len(overrides))
	replaced := make(map[string]bool, len(overrides))
	for _, profile := range base {
		key := strings.ToLower(profile.BankID)
		if override, ok := byID[key]; ok {
			merged = append(merged, override)
			replaced[key] = true
			continue
		}
		merged = append(merged, profile)
	}
	for _, override := range overrides {
		if !replaced[strings.ToLower(override.BankID)] {
			merged = append(merged, override)
		}
	}
	return merged
}

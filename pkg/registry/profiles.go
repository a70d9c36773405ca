package registry

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Profile is a named backend configuration: the scheme to use plus its
// option map. Profiles let a config file give memorable names to fully
// configured stores, resolved through "profile://name/path" locations.
type Profile struct {
	Type    string         `mapstructure:"type" yaml:"type"`
	Options map[string]any `mapstructure:",remain" yaml:",inline"`
}

// LoadProfiles reads the "profiles" section of a config file through
// viper. The file format is whatever viper infers from the extension,
// YAML in practice:
//
//	profiles:
//	  backups:
//	    type: s3
//	    bucket: my-bucket
//	    region: eu-west-1
func LoadProfiles(path string) (map[string]Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var profiles map[string]Profile
	if err := v.UnmarshalKey("profiles", &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles in %s: %w", path, err)
	}

	if err := checkProfiles(profiles); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return profiles, nil
}

// ParseProfiles decodes a raw YAML document of profiles, for callers that
// carry the configuration as bytes instead of a file:
//
//	staging:
//	  type: mem
func ParseProfiles(data []byte) (map[string]Profile, error) {
	var profiles map[string]Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	if err := checkProfiles(profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

func checkProfiles(profiles map[string]Profile) error {
	for name, profile := range profiles {
		if profile.Type == "" {
			return fmt.Errorf("profile %q: type is required", name)
		}
	}

	return nil
}

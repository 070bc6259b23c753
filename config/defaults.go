package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	ini "gopkg.in/ini.v1"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/location"
)

// Defaults is the [mkrelease] section of the defaults file, plus its
// [aliases] section and the index servers of ~/.pypirc.
type Defaults struct {
	DistBase      string   `mapstructure:"distbase"`
	DistDefault   []string `mapstructure:"distdefault"`
	Formats       []string `mapstructure:"formats"`
	Sign          bool     `mapstructure:"sign"`
	Identity      string   `mapstructure:"identity"`
	Push          bool     `mapstructure:"push"`
	Register      bool     `mapstructure:"register"`
	Develop       bool     `mapstructure:"develop"`
	Quiet         bool     `mapstructure:"quiet"`
	MaxAliasDepth int      `mapstructure:"maxaliasdepth"`
	Python        string   `mapstructure:"python"`
	Twine         string   `mapstructure:"twine"`

	Aliases map[string][]string
	Servers []string
}

// Builtin returns the values used when no configuration file sets them.
func Builtin() Defaults {
	return Defaults{
		Formats:       []string{"gztar"},
		MaxAliasDepth: location.MaxAliasDepth,
		Aliases:       map[string][]string{},
	}
}

// Resolver returns a location resolver over the configured aliases and
// servers.
func (d Defaults) Resolver() *location.Resolver {
	return &location.Resolver{
		Aliases:       d.Aliases,
		Servers:       d.Servers,
		DistBase:      d.DistBase,
		DistDefault:   d.DistDefault,
		MaxAliasDepth: d.MaxAliasDepth,
	}
}

// Load reads the defaults file at path and the index servers of the pypirc
// file. Either path may be empty. The defaults file is INI unless its
// extension says YAML or TOML.
func Load(fs afero.Fs, path, pypirc string) (Defaults, error) {
	d := Builtin()
	if path != "" {
		raw, err := readRaw(fs, path)
		if err != nil {
			return d, errors.Wrap(err, errors.User, "could not read config file %s", path)
		}
		if section, ok := raw["mkrelease"]; ok {
			if err := decode(section, &d); err != nil {
				return d, errors.Wrap(err, errors.User, "invalid [mkrelease] section in %s", path)
			}
		}
		if section, ok := raw["aliases"]; ok {
			if err := decode(section, &d.Aliases); err != nil {
				return d, errors.Wrap(err, errors.User, "invalid [aliases] section in %s", path)
			}
		}
	}
	if pypirc != "" {
		servers, err := ReadServers(fs, pypirc)
		if err != nil {
			return d, errors.Wrap(err, errors.User, "could not read %s", pypirc)
		}
		d.Servers = servers
	}
	return d, nil
}

func readRaw(fs afero.Fs, path string) (map[string]interface{}, error) {
	var raw map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err := files.ReadYAML(fs, &raw, path)
		return raw, err
	case ".toml":
		err := files.ReadTOML(fs, &raw, path)
		return raw, err
	default:
		f, err := loadINI(fs, path)
		if err != nil {
			return nil, err
		}
		raw = make(map[string]interface{})
		for _, section := range f.Sections() {
			values := make(map[string]interface{})
			for _, key := range section.Keys() {
				values[key.Name()] = key.Value()
			}
			raw[section.Name()] = values
		}
		return raw, nil
	}
}

func loadINI(fs afero.Fs, path string) (*ini.File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return ini.LoadSources(ini.LoadOptions{AllowPythonMultilineValues: true}, data)
}

func decode(input, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(splitList, parseYesNo),
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// splitList turns `a b, c` into a list when a list is expected.
func splitList(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	return strings.FieldsFunc(reflect.ValueOf(data).String(), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}), nil
}

// parseYesNo accepts the boolean spellings of Python's ConfigParser.
func parseYesNo(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String())) {
	case "1", "yes", "true", "on":
		return true, nil
	case "", "0", "no", "false", "off":
		return false, nil
	default:
		return data, nil
	}
}

// ReadServers returns the index servers named in the [distutils] section of
// a pypirc file. A file with a [pypi] section but no index-servers key
// defines just pypi.
func ReadServers(fs afero.Fs, path string) ([]string, error) {
	f, err := loadINI(fs, path)
	if err != nil {
		return nil, err
	}
	if section, err := f.GetSection("distutils"); err == nil && section.HasKey("index-servers") {
		return strings.Fields(section.Key("index-servers").String()), nil
	}
	if f.HasSection(location.PyPI) {
		return []string{location.PyPI}, nil
	}
	return nil, nil
}

package files

import (
	"github.com/BurntSushi/toml"
	"github.com/apex/log"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

func ReadTOML(fs afero.Fs, v interface{}, path string) error {
	return ReadUnmarshal(fs, v, path, toml.Unmarshal)
}

func ReadYAML(fs afero.Fs, v interface{}, path string) error {
	return ReadUnmarshal(fs, v, path, yaml.Unmarshal)
}

type UnmarshalFunc func(data []byte, v interface{}) error

func ReadUnmarshal(fs afero.Fs, v interface{}, path string, unmarshal UnmarshalFunc) error {
	log.WithField("path", path).Debug("parsing file")
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("could not read file")
		return err
	}
	err = unmarshal(contents, v)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("could not parse file")
	}
	return err
}

package config

import (
	"errors"

	"github.com/spf13/afero"
)

var ErrFileNotFound = errors.New("no files existed")

func TryStrings(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func TryStringSlices(candidates ...[]string) []string {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

func TryFiles(fs afero.Fs, candidates ...string) (string, error) {
	for _, c := range candidates {
		ok, err := afero.Exists(fs, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return "", ErrFileNotFound
}

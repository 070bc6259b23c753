package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossas/mkrelease/config"
	"github.com/fossas/mkrelease/errors"
)

const mkreleaseINI = `[mkrelease]
distbase = jarn.com:/var/dist
distdefault = public
formats = zip, wheel
sign = yes
identity = stefan@jarn.com
push = on
maxaliasdepth = 5
python = python3.11

[aliases]
public =
    pypi
    jarn.com:/var/dist/public
world = public jarn.com:/var/dist/world
`

const pypirc = `[distutils]
index-servers =
    pypi
    internal

[pypi]
username = __token__

[internal]
repository = https://pypi.jarn.com/simple
`

func TestLoadINI(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/stefan/.mkrelease", []byte(mkreleaseINI), 0644))
	require.NoError(t, afero.WriteFile(fs, "/home/stefan/.pypirc", []byte(pypirc), 0600))

	d, err := config.Load(fs, "/home/stefan/.mkrelease", "/home/stefan/.pypirc")
	require.NoError(t, err)

	assert.Equal(t, "jarn.com:/var/dist", d.DistBase)
	assert.Equal(t, []string{"public"}, d.DistDefault)
	assert.Equal(t, []string{"zip", "wheel"}, d.Formats)
	assert.True(t, d.Sign)
	assert.Equal(t, "stefan@jarn.com", d.Identity)
	assert.True(t, d.Push)
	assert.False(t, d.Register)
	assert.Equal(t, 5, d.MaxAliasDepth)
	assert.Equal(t, "python3.11", d.Python)
	assert.Equal(t, "", d.Twine)
	assert.Equal(t, map[string][]string{
		"public": {"pypi", "jarn.com:/var/dist/public"},
		"world":  {"public", "jarn.com:/var/dist/world"},
	}, d.Aliases)
	assert.Equal(t, []string{"pypi", "internal"}, d.Servers)

	locations, err := d.Resolver().Get("world")
	require.NoError(t, err)
	assert.Equal(t, []string{"pypi", "jarn.com:/var/dist/public", "jarn.com:/var/dist/world"}, locations)
}

func TestLoadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/mkrelease.yml", []byte(`
mkrelease:
  distbase: jarn.com:/var/dist
  formats: [gztar, zip]
  sign: true
aliases:
  public:
    - pypi
    - jarn.com:/var/dist/public
  other: jarn.com:/a jarn.com:/b
`), 0644))

	d, err := config.Load(fs, "/etc/mkrelease.yml", "")
	require.NoError(t, err)
	assert.Equal(t, "jarn.com:/var/dist", d.DistBase)
	assert.Equal(t, []string{"gztar", "zip"}, d.Formats)
	assert.True(t, d.Sign)
	assert.Equal(t, []string{"pypi", "jarn.com:/var/dist/public"}, d.Aliases["public"])
	assert.Equal(t, []string{"jarn.com:/a", "jarn.com:/b"}, d.Aliases["other"])
	assert.Empty(t, d.Servers)
}

func TestLoadTOML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/mkrelease.toml", []byte(`
[mkrelease]
distdefault = "public private"
maxaliasdepth = "7"
quiet = "yes"

[aliases]
public = ["pypi"]
`), 0644))

	d, err := config.Load(fs, "/etc/mkrelease.toml", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "private"}, d.DistDefault)
	assert.Equal(t, 7, d.MaxAliasDepth)
	assert.True(t, d.Quiet)
	assert.Equal(t, []string{"pypi"}, d.Aliases["public"])
}

func TestLoadDefaults(t *testing.T) {
	d, err := config.Load(afero.NewMemMapFs(), "", "")
	require.NoError(t, err)
	assert.Equal(t, config.Builtin(), d)
	assert.Equal(t, []string{"gztar"}, d.Formats)
	assert.Equal(t, 23, d.MaxAliasDepth)
}

func TestLoadInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/mkrelease", []byte("[mkrelease]\nsign = maybe\n"), 0644))
	_, err := config.Load(fs, "/etc/mkrelease", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.User))

	_, err = config.Load(fs, "/etc/missing", "")
	assert.True(t, errors.Is(err, errors.User))
}

func TestReadServers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a", []byte(pypirc), 0600))
	require.NoError(t, afero.WriteFile(fs, "/b", []byte("[pypi]\nusername = stefan\n"), 0600))
	require.NoError(t, afero.WriteFile(fs, "/c", []byte("[server-login]\nusername = stefan\n"), 0600))

	servers, err := config.ReadServers(fs, "/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"pypi", "internal"}, servers)

	servers, err = config.ReadServers(fs, "/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"pypi"}, servers)

	servers, err = config.ReadServers(fs, "/c")
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestTryStrings(t *testing.T) {
	assert.Equal(t, "b", config.TryStrings("", "b", "c"))
	assert.Equal(t, "", config.TryStrings("", ""))
	assert.Equal(t, []string{"x"}, config.TryStringSlices(nil, []string{"x"}))
}

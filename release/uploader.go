package release

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/spf13/afero"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/urls"
)

// Uploader copies distributions to index servers with twine and to
// everything else with scp or sftp.
type Uploader struct {
	Runner   exec.Runner
	Fs       afero.Fs
	TwineCmd string

	// IsServer reports whether a location names an index server.
	IsServer func(location string) bool
	// Register registers the package with index servers before uploading.
	Register bool
}

// NewUploader returns an Uploader using the twine command, or `twine` if
// empty.
func NewUploader(r exec.Runner, twine string, isServer func(string) bool) *Uploader {
	if twine == "" {
		twine = "twine"
	}
	return &Uploader{
		Runner:   r,
		Fs:       afero.NewOsFs(),
		TwineCmd: twine,
		IsServer: isServer,
	}
}

// Upload copies files to location.
func (u *Uploader) Upload(location string, files []string) error {
	log.WithFields(log.Fields{"location": location, "files": files}).Debug("uploading")
	switch {
	case u.IsServer != nil && u.IsServer(location):
		return u.twine(location, files)
	case urls.Scheme(location) == "sftp":
		return u.sftp(location, files)
	default:
		return u.scp(location, files)
	}
}

func (u *Uploader) twine(server string, files []string) error {
	if u.Register {
		for _, f := range files {
			if strings.HasSuffix(f, ".asc") {
				continue
			}
			if err := u.run("register with "+server, exec.Cmd{
				Name: u.TwineCmd,
				Argv: []string{"register", "-r", server, f},
			}); err != nil {
				return err
			}
			break
		}
	}
	return u.run("upload to "+server, exec.Cmd{
		Name: u.TwineCmd,
		Argv: append([]string{"upload", "-r", server}, files...),
	})
}

func (u *Uploader) scp(location string, files []string) error {
	_, target := urls.ToSSHURL(location)
	return u.run("upload to "+location, exec.Cmd{
		Name: "scp",
		Argv: append(append([]string{}, files...), target),
	})
}

var sftpEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// sftpQuote double-quotes s for an sftp batch file. Only backslashes and
// double quotes are escaped.
func sftpQuote(s string) string {
	return `"` + sftpEscaper.Replace(s) + `"`
}

// sftp uploads through a batch file so that a failing command aborts the
// session.
func (u *Uploader) sftp(location string, files []string) error {
	_, shorthand := urls.ToSSHURL(location)
	host, path := shorthand, ""
	if i := strings.Index(shorthand, ":"); i >= 0 {
		host, path = shorthand[:i], shorthand[i+1:]
	}

	var batch strings.Builder
	if path != "" {
		fmt.Fprintf(&batch, "cd %s\n", sftpQuote(path))
	}
	for _, f := range files {
		fmt.Fprintf(&batch, "put %s\n", sftpQuote(f))
	}
	batch.WriteString("bye\n")

	tmp, err := afero.TempFile(u.Fs, "", "mkrelease-sftp-")
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "could not create sftp batch file")
	}
	defer u.Fs.Remove(tmp.Name())
	_, err = tmp.WriteString(batch.String())
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "could not write sftp batch file")
	}

	return u.run("upload to "+location, exec.Cmd{
		Name: "sftp",
		Argv: []string{"-b", tmp.Name(), host},
	})
}

func (u *Uploader) run(what string, cmd exec.Cmd) error {
	result, err := u.Runner.Run(cmd)
	if err != nil {
		return err
	}
	if !result.OK() {
		return errors.New(errors.Command, "could not %s", what).
			WithTroubleshooting("`%s` failed:\n%s", cmd.Name, strings.Join(result.Output(), "\n"))
	}
	return nil
}

package deps

import (
	"fmt"
	"os/exec"
)

const (
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
	MpvInstallURL    = "https://mpv.io/installation/"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Check looks up bin in PATH and returns a DependencyError pointing at installURL when it is missing.
func Check(bin, installURL string) error {
	if _, err := exec.LookPath(bin); err != nil {
		return &DependencyError{
			Name:       bin,
			InstallURL: installURL,
		}
	}
	return nil
}

// Tool is an external binary cliporama shells out to.
type Tool struct {
	Bin        string
	InstallURL string
	// Required tools are needed by every run; the rest only by some commands.
	Required bool
}

// Check reports whether t.Bin can be found.
func (t Tool) Check() error {
	return Check(t.Bin, t.InstallURL)
}

// Ffmpeg describes the ffmpeg binary at bin.
func Ffmpeg(bin string) Tool {
	return Tool{Bin: bin, InstallURL: FfmpegInstallURL, Required: true}
}

// Ffprobe describes the ffprobe binary at bin.
// It ships with ffmpeg, so the install link is the same.
func Ffprobe(bin string) Tool {
	return Tool{Bin: bin, InstallURL: FfmpegInstallURL, Required: true}
}

// Mpv describes the mpv binary at bin. Only preview needs it.
func Mpv(bin string) Tool {
	return Tool{Bin: bin, InstallURL: MpvInstallURL}
}

// Required checks the required tools and returns an error for each missing one.
func Required(tools ...Tool) []error {
	var errors []error

	for _, t := range tools {
		if !t.Required {
			continue
		}
		if err := t.Check(); err != nil {
			errors = append(errors, err)
		}
	}

	return errors
}

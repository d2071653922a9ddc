package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is the running release, overridden at build time with
// -ldflags "-X github.com/Fepozopo/canvasfill/pkg/cli.Version=x.y.z".
var Version = "0.1.0"

const updateRepo = "Fepozopo/canvasfill"

var releasesURL = "https://api.github.com/repos/" + updateRepo + "/releases"

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// semverRe finds v1.2.3 or 1.2.3 inside a tag or release name.
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

func fetchReleases(url string) ([]githubRelease, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}
	return releases, nil
}

// latestRelease picks the highest semver among published, non-prerelease
// releases. The asset is the first one named for the running platform,
// else the first asset.
func latestRelease(releases []githubRelease) (*selfupdate.Release, bool) {
	var best *selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			if match = semverRe.FindString(r.Name); match == "" {
				continue
			}
		}
		v, err := semver.ParseTolerant(match)
		if err != nil {
			continue
		}
		assetURL := ""
		for _, a := range r.Assets {
			name := strings.ToLower(a.Name)
			if strings.Contains(name, runtime.GOOS) && strings.Contains(name, runtime.GOARCH) {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		cand := &selfupdate.Release{
			Version:   v,
			AssetURL:  assetURL,
			Name:      r.Name,
			RepoOwner: "Fepozopo",
			RepoName:  "canvasfill",
		}
		if best == nil || v.GT(best.Version) {
			best = cand
		}
	}
	return best, best != nil
}

// sortedVersions returns the versions found in release tags, newest first.
func sortedVersions(releases []githubRelease) []semver.Version {
	var vs []semver.Version
	for _, r := range releases {
		if v, err := semver.ParseTolerant(semverRe.FindString(r.TagName)); err == nil {
			vs = append(vs, v)
		}
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].GT(vs[j]) })
	return vs
}

// CheckForUpdates compares Version with the newest GitHub release and, if
// prompt confirms, replaces the running binary and restarts it.
func CheckForUpdates(prompt func(string) (string, error)) error {
	fmt.Printf("Current version: %s\n", Version)
	releases, err := fetchReleases(releasesURL)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	debugf("found release versions %v", sortedVersions(releases))
	latest, found := latestRelease(releases)
	if !found {
		fmt.Printf("No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", latest.Version)

	current, perr := semver.ParseTolerant(Version)
	if perr != nil {
		fmt.Printf("warning: could not parse current version %q: %v\n", Version, perr)
	}
	if perr == nil && latest.Version.LTE(current) {
		fmt.Printf("You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Printf("A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		fmt.Println("Please visit the project releases page to download the new version.")
		return nil
	}

	answer, err := prompt(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	if b, _ := parseBoolLikeToString(answer); b != "true" {
		fmt.Println("Update cancelled.")
		return nil
	}

	fmt.Println("Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	// Exec only returns on error.
	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Printf("Updated to version %s, but failed to restart automatically: %v; fallback start error: %v\n", latest.Version, err, startErr)
			fmt.Println("Please restart the application manually.")
			return nil
		}
		os.Exit(0)
	}
	return nil
}

// Package update checks GitHub releases for a newer dustmask version.
package update

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
	"github.com/dustmask/dustmask/internal/config"
)

const (
	// Repo is the GitHub repository releases are published to.
	Repo          = "dustmask/dustmask"
	cacheFileName = "update.json"
	checkInterval = 24 * time.Hour
)

var latestURL = "https://api.github.com/repos/" + Repo + "/releases/latest"

type cache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

func loadCache() (cache, error) {
	var c cache
	dir, err := config.Dir()
	if err != nil {
		return c, err
	}
	b, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal(b, &c)
	return c, nil
}

func saveCache(c cache) {
	dir, err := config.Dir()
	if err != nil {
		return
	}
	_ = os.MkdirAll(dir, 0755)
	b, _ := json.MarshalIndent(c, "", "  ")
	_ = os.WriteFile(filepath.Join(dir, cacheFileName), b, 0644)
}

func latestVersionOnline(url string) (string, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "dustmask-updater")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	v := obj.TagName
	if v == "" {
		v = obj.Name
	}
	return v, nil
}

// Check returns (latest, isNewer, error). It uses a 24h cache and skips in CI.
func Check(current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	current = normalize(current)
	c, _ := loadCache()
	latest := c.Latest
	if time.Since(c.LastChecked) > checkInterval || latest == "" {
		if v, err := latestVersionOnline(latestURL); err == nil {
			latest = normalize(v)
			c.Latest = latest
			c.LastChecked = time.Now()
			saveCache(c)
		}
	}
	if latest == "" || current == "" {
		return latest, false, nil
	}
	return latest, Newer(latest, current), nil
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}

// Newer reports whether version a is strictly newer than b. Unparseable
// versions never compare as newer.
func Newer(a, b string) bool {
	av, err := semver.ParseTolerant(a)
	if err != nil {
		return false
	}
	bv, err := semver.ParseTolerant(b)
	if err != nil {
		return false
	}
	return av.GT(bv)
}

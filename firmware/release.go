package firmware

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// DefaultReleasesURL lists the Crazyflie releases, newest first.
const DefaultReleasesURL = "https://api.github.com/repos/bitcraze/crazyflie-release/releases"

// Latest selects the newest release in Client.Find.
const Latest = "latest"

type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
}

type Release struct {
	Name   string  `json:"name"`
	Tag    string  `json:"tag_name"`
	Body   string  `json:"body"`
	Assets []Asset `json:"assets"`
}

// ZipAsset is the first asset packaged as a zip.
func (r Release) ZipAsset() (Asset, error) {
	for _, a := range r.Assets {
		if strings.HasSuffix(strings.ToLower(a.Name), ".zip") && a.DownloadURL != "" {
			return a, nil
		}
	}
	return Asset{}, errors.Wrap(ErrorNoZipAsset, r.Tag)
}

type Client struct {
	HTTP        *http.Client
	ReleasesURL string
}

func NewClient() *Client {
	return &Client{HTTP: http.DefaultClient, ReleasesURL: DefaultReleasesURL}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "firmware: GET %s", url)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "firmware: GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("firmware: GET %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "firmware: GET %s", url)
	}
	return body, nil
}

// Releases fetches the published releases, newest first.
func (c *Client) Releases(ctx context.Context) ([]Release, error) {
	body, err := c.get(ctx, c.ReleasesURL)
	if err != nil {
		return nil, err
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, errors.Wrap(err, "firmware: decoding releases")
	}
	return releases, nil
}

// Find returns the release with the given tag or name, or the newest one for
// Latest.
func (c *Client) Find(ctx context.Context, tag string) (Release, error) {
	releases, err := c.Releases(ctx)
	if err != nil {
		return Release{}, err
	}
	if len(releases) == 0 {
		return Release{}, ErrorNoReleases
	}
	if tag == Latest {
		return releases[0], nil
	}
	for _, r := range releases {
		if r.Tag == tag || r.Name == tag {
			return r, nil
		}
	}
	return Release{}, errors.Wrap(ErrorReleaseNotFound, tag)
}

// Download fetches and unpacks the zip asset of r.
func (c *Client) Download(ctx context.Context, r Release) (*Archive, error) {
	asset, err := r.ZipAsset()
	if err != nil {
		return nil, err
	}

	log.Printf("firmware: downloading %s", asset.Name)
	data, err := c.get(ctx, asset.DownloadURL)
	if err != nil {
		return nil, err
	}
	return ParseArchive(data)
}

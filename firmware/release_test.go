package firmware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
)

func newReleaseServer(t *testing.T, archive []byte) *httptest.Server {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"name": "2025.02", "tag_name": "2025.02", "body": "newest", "assets": [
				{"name": "firmware-cf2-2025.02.zip", "browser_download_url": "%[1]s/download/2025.02.zip"}
			]},
			{"name": "2024.10", "tag_name": "2024.10", "body": "", "assets": [
				{"name": "notes.txt", "browser_download_url": "%[1]s/download/notes.txt"}
			]}
		]`, server.URL)
	})
	mux.HandleFunc("/download/2025.02.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFindAndDownload(t *testing.T) {
	server := newReleaseServer(t, testRelease(t))
	c := &Client{HTTP: server.Client(), ReleasesURL: server.URL + "/releases"}
	ctx := context.Background()

	latest, err := c.Find(ctx, Latest)
	if err != nil {
		t.Fatalf("Find latest: %v", err)
	}
	if latest.Tag != "2025.02" {
		t.Errorf("latest = %s", latest.Tag)
	}

	a, err := c.Download(ctx, latest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if images, err := a.Images(DefaultPlatform); err != nil || len(images) != 2 {
		t.Errorf("images = %d, %v", len(images), err)
	}

	old, err := c.Find(ctx, "2024.10")
	if err != nil {
		t.Fatalf("Find 2024.10: %v", err)
	}
	if _, err := c.Download(ctx, old); errors.Cause(err) != ErrorNoZipAsset {
		t.Errorf("expected ErrorNoZipAsset, got %v", err)
	}

	if _, err := c.Find(ctx, "2019.01"); errors.Cause(err) != ErrorReleaseNotFound {
		t.Errorf("expected ErrorReleaseNotFound, got %v", err)
	}
}

func TestReleasesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := &Client{HTTP: server.Client(), ReleasesURL: server.URL}
	if _, err := c.Releases(context.Background()); err == nil {
		t.Error("expected an error for a 404")
	}
}

func TestNoReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := &Client{HTTP: server.Client(), ReleasesURL: server.URL}
	if _, err := c.Find(context.Background(), Latest); err != ErrorNoReleases {
		t.Errorf("expected ErrorNoReleases, got %v", err)
	}
}

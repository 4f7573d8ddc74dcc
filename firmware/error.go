package firmware

import "fmt"

type firmwareError uint8

func (e firmwareError) Error() string {
	return fmt.Sprintf("firmware: %s", firmwareErrorString[e])
}

const (
	ErrorNoManifest firmwareError = iota
	ErrorManifestVersion
	ErrorMissingFile
	ErrorMissingImage
	ErrorNoReleases
	ErrorReleaseNotFound
	ErrorNoZipAsset
)

var firmwareErrorString = map[firmwareError]string{
	ErrorNoManifest:      "archive has no manifest.json",
	ErrorManifestVersion: "manifest version not supported",
	ErrorMissingFile:     "manifest names a file the archive does not hold",
	ErrorMissingImage:    "archive holds no firmware for this platform",
	ErrorNoReleases:      "no releases published",
	ErrorReleaseNotFound: "release not found",
	ErrorNoZipAsset:      "release has no zip asset",
}

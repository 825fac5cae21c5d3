package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"quizlet-importer/internal/collection"
	"quizlet-importer/internal/components/telemetry"

	"github.com/sony/gobreaker"
)

const report_media_download = "media.download"

var ttsRegex = regexp.MustCompile(`tts/(\w+)\.mp3\?.*&s=([^&]+)`)

// mediaTarget works out where to download a media url from and the file name
// it is stored under. Text to speech urls are named after their voice and
// signature, images lose their mobile "_m" suffix so the full size original
// is downloaded.
func mediaTarget(mediaUrl string) (download, name string, err error) {
	if strings.Contains(mediaUrl, "/tts/") {
		groups := ttsRegex.FindStringSubmatch(mediaUrl)
		if groups == nil {
			return "", "", fmt.Errorf("unrecognized tts url %q", mediaUrl)
		}
		return mediaUrl, fmt.Sprintf("quizlet-%s-%s.mp3", groups[1], groups[2]), nil
	}

	parsed, err := url.Parse(mediaUrl)
	if err != nil {
		return "", "", fmt.Errorf("parse media url: %w", err)
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return "", "", fmt.Errorf("media url %q has no file name", mediaUrl)
	}
	ext := path.Ext(base)
	if stem := strings.TrimSuffix(base, ext); strings.HasSuffix(stem, "_m") {
		base = strings.TrimSuffix(stem, "_m") + ext
		parsed.Path = path.Join(path.Dir(parsed.Path), base)
	}
	return parsed.String(), "quizlet-" + base, nil
}

// mediaDownloader fetches media through a circuit breaker, once the media
// host keeps failing the remaining downloads of a run fail fast instead.
type mediaDownloader struct {
	source  Source
	breaker *gobreaker.CircuitBreaker
	tel     telemetry.API
}

func newMediaDownloader(source Source, tel telemetry.API) *mediaDownloader {
	settings := gobreaker.Settings{
		Name:        "media",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			tel.ReportWarning(report_media_download, fmt.Errorf("circuit breaker %s: %s -> %s", name, from, to))
		},
	}
	return &mediaDownloader{
		source:  source,
		breaker: gobreaker.NewCircuitBreaker(settings),
		tel:     tel,
	}
}

// download stores the media at mediaUrl in the collection and returns its
// stored name. An error means the field it was meant for stays empty.
func (d *mediaDownloader) download(ctx context.Context, tx *collection.Tx, mediaUrl string) (string, error) {
	source, name, err := mediaTarget(mediaUrl)
	if err != nil {
		d.tel.ReportWarning(report_media_download, err)
		return "", err
	}

	data, err := d.breaker.Execute(func() (any, error) {
		return d.source.Media(ctx, source)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			d.tel.ReportDebug("media download skipped, breaker open", source)
		} else {
			d.tel.ReportWarning(report_media_download, err, source)
		}
		return "", err
	}

	stored, err := tx.WriteMedia(ctx, name, data.([]byte))
	if err != nil {
		return "", fmt.Errorf("store media %s: %w", name, err)
	}
	return stored, nil
}

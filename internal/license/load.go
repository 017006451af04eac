package license

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// fileFetcher satisfies fetcher.Fetcher from a local file, so a state
// source can ingest a manually downloaded export through the same parse
// path it uses for live fetches. Every URL resolves to the one file.
type fileFetcher struct {
	path string
}

func (f fileFetcher) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	r, err := os.Open(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "license: open local export %s", f.path)
	}
	return r, nil
}

func (f fileFetcher) DownloadToFile(ctx context.Context, _ string, path string) (int64, error) {
	src, err := f.Download(ctx, "")
	if err != nil {
		return 0, err
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "license: create %s", path)
	}
	defer dst.Close() //nolint:errcheck

	n, err := io.Copy(dst, src)
	if err != nil {
		return 0, eris.Wrapf(err, "license: copy local export to %s", path)
	}
	return n, nil
}

func (f fileFetcher) HeadETag(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (f fileFetcher) DownloadIfChanged(ctx context.Context, url string, _ string) (io.ReadCloser, string, bool, error) {
	r, err := f.Download(ctx, url)
	if err != nil {
		return nil, "", false, err
	}
	return r, "", true, nil
}

// LoadFile ingests a manually downloaded registry export for one state.
// The file is parsed with the state's own column mapping, so it must be
// the same export format the live source fetches.
func (i *Ingestor) LoadFile(ctx context.Context, state, path, tempDir string) (SyncResult, error) {
	src, err := i.reg.Get(state)
	if err != nil {
		return SyncResult{}, err
	}

	res := SyncResult{State: src.State(), Board: src.Board()}

	lics, err := src.Fetch(ctx, fileFetcher{path: path}, tempDir)
	if eris.Is(err, ErrScraperSource) {
		return res, eris.Errorf("license: %s has no file export to load", src.State())
	}
	if err != nil {
		return res, eris.Wrapf(err, "license: load %s from %s", src.State(), path)
	}

	res.Parsed = len(lics)
	n, err := i.store.Upsert(ctx, lics)
	if err != nil {
		return res, err
	}
	res.Loaded = n

	zap.L().Info("state export loaded",
		zap.String("component", "license.ingest"),
		zap.String("state", src.State()),
		zap.String("file", path),
		zap.Int("parsed", res.Parsed),
		zap.Int64("loaded", res.Loaded),
	)
	return res, nil
}

// Package srcio opens a CP/M archive input from a local path, an S3
// bucket, or an http(s) URL: vintage BBS and FTP archive mirrors are
// routinely rehosted on S3 today, so extraction needs the same
// remote-or-local open contract as any other archive tool.
package srcio

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff/v3"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
)

// RegisterS3 installs the s3:// file.Implementation. Call once, from an
// init or at program startup, before Open is used with an s3:// path.
func RegisterS3() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

// CloseFunc releases resources acquired by Open.
type CloseFunc func(context.Context) error

// Open returns a reader over name's contents, its size (if known; -1
// otherwise), and a cleanup function the caller must invoke when done.
// http(s):// URLs are fetched over HTTP; s3:// and local paths are opened
// through grailbio/base/file. Both routes retry transient failures.
func Open(ctx context.Context, name string) (io.Reader, int64, CloseFunc, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return openHTTP(ctx, name)
	}
	return openFile(ctx, name)
}

func openHTTP(ctx context.Context, url string) (io.Reader, int64, CloseFunc, error) {
	var resp *http.Response

	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := http.DefaultClient.Do(req)
		if err != nil {
			return err // network errors are treated as transient
		}
		if r.StatusCode >= 500 {
			r.Body.Close()
			return &httpStatusError{url: url, status: r.StatusCode}
		}
		if r.StatusCode >= 400 {
			r.Body.Close()
			return backoff.Permanent(&httpStatusError{url: url, status: r.StatusCode})
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, 0, nil, err
	}

	return resp.Body, resp.ContentLength, func(context.Context) error {
		return resp.Body.Close()
	}, nil
}

func openFile(ctx context.Context, name string) (io.Reader, int64, CloseFunc, error) {
	var (
		info file.Info
		f    file.File
	)

	fetch := func() error {
		i, err := file.Stat(ctx, name)
		if err != nil {
			return err
		}
		ff, err := file.Open(ctx, name)
		if err != nil {
			return err
		}
		info, f = i, ff
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, 0, nil, err
	}

	return f.Reader(ctx), info.Size(), f.Close, nil
}

type httpStatusError struct {
	url    string
	status int
}

func (e *httpStatusError) Error() string {
	return "fetch " + e.url + ": unexpected status " + strconv.Itoa(e.status)
}

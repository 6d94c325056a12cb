// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"
)

const DefaultHTTPTimeout = 30 * time.Second

type Source interface {
	Description() string
	RelativePath() (string, error)
	Bytes() ([]byte, error)
}

// ContextSource is a Source whose reads can be cancelled.
type ContextSource interface {
	BytesContext(ctx context.Context) ([]byte, error)
}

var _ []Source = []Source{BytesSource{}, StdinSource{},
	LocalSource{}, HTTPSource{}, &CachedSource{}}

var _ []ContextSource = []ContextSource{HTTPSource{}, &CachedSource{}}

// ReadBytes reads src, giving up when ctx is done if src supports it.
func ReadBytes(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ctxSrc, ok := src.(ContextSource); ok {
		return ctxSrc.BytesContext(ctx)
	}
	return src.Bytes()
}

type BytesSource struct {
	path string
	data []byte
}

func NewBytesSource(path string, data []byte) BytesSource { return BytesSource{path, data} }

func (s BytesSource) Description() string           { return s.path }
func (s BytesSource) RelativePath() (string, error) { return s.path, nil }
func (s BytesSource) Bytes() ([]byte, error)        { return s.data, nil }

type StdinSource struct {
	bytes []byte
	err   error
}

func NewStdinSource() StdinSource {
	bs, err := ReadStdin()
	return StdinSource{bs, err}
}

func (s StdinSource) Description() string           { return "stdin.yaml" }
func (s StdinSource) RelativePath() (string, error) { return "stdin.yaml", nil }
func (s StdinSource) Bytes() ([]byte, error)        { return s.bytes, s.err }

type LocalSource struct {
	path string
}

func NewLocalSource(path string) LocalSource { return LocalSource{path} }

func (s LocalSource) Description() string           { return fmt.Sprintf("file '%s'", s.path) }
func (s LocalSource) RelativePath() (string, error) { return filepath.Base(s.path), nil }
func (s LocalSource) Bytes() ([]byte, error)        { return os.ReadFile(s.path) }

type HTTPSource struct {
	url     string
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPSource(path string) HTTPSource {
	return HTTPSource{path, http.DefaultClient, DefaultHTTPTimeout}
}

func (s HTTPSource) Description() string {
	return fmt.Sprintf("HTTP URL '%s'", s.url)
}

func (s HTTPSource) RelativePath() (string, error) { return path.Base(s.url), nil }

func (s HTTPSource) Bytes() ([]byte, error) { return s.BytesContext(context.Background()) }

func (s HTTPSource) BytesContext(ctx context.Context) ([]byte, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("Requesting URL '%s': %s", s.url, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Requesting URL '%s': %s", s.url, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Requesting URL '%s': %s", s.url, resp.Status)
	}

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Reading URL '%s': %s", s.url, err)
	}

	return result, nil
}

type CachedSource struct {
	src Source

	bytesFetched bool
	bytes        []byte
	bytesErr     error
}

func NewCachedSource(src Source) *CachedSource { return &CachedSource{src: src} }

func (s *CachedSource) Description() string           { return s.src.Description() }
func (s *CachedSource) RelativePath() (string, error) { return s.src.RelativePath() }

func (s *CachedSource) Bytes() ([]byte, error) { return s.BytesContext(context.Background()) }

func (s *CachedSource) BytesContext(ctx context.Context) ([]byte, error) {
	if s.bytesFetched {
		return s.bytes, s.bytesErr
	}

	s.bytesFetched = true
	s.bytes, s.bytesErr = ReadBytes(ctx, s.src)

	return s.bytes, s.bytesErr
}

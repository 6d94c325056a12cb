// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package modify

import (
	"context"
	_ "crypto/sha256" // registers sha256 for go-digest
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/rbcompat/rbcompat/pkg/files"
)

type HashType string

const (
	HashMD5    HashType = "md5"
	HashSHA256 HashType = "sha256"
)

var allHashTypes = []HashType{HashMD5, HashSHA256}

type Hash struct {
	Type  HashType
	Value string
}

func (h Hash) String() string { return fmt.Sprintf("%s: %s", h.Type, h.Value) }

// ParseHash parses '<type>:<value>', for example 'sha256:abc...'.
func ParseHash(val string) (Hash, error) {
	hashType, hashVal, found := strings.Cut(val, ":")
	if !found {
		return Hash{}, fmt.Errorf("expected hash '%s' to be in form <type>:<value>", val)
	}

	hash := Hash{Type: HashType(strings.TrimSpace(hashType)), Value: strings.TrimSpace(hashVal)}

	switch hash.Type {
	case HashSHA256:
		err := digest.NewDigestFromEncoded(digest.SHA256, hash.Value).Validate()
		if err != nil {
			return Hash{}, fmt.Errorf("validating sha256 hash: %w", err)
		}
	case HashMD5:
		if len(hash.Value) != 32 {
			return Hash{}, fmt.Errorf("expected md5 hash to have 32 characters, but was %d", len(hash.Value))
		}
	default:
		return Hash{}, fmt.Errorf("unknown hash type '%s' (expected md5 or sha256)", hash.Type)
	}

	return hash, nil
}

// Downloader retrieves source archives to compute their sha256.
type Downloader struct {
	Client  *http.Client
	Timeout time.Duration
	UI      files.UI
}

func NewDownloader(ui files.UI) *Downloader {
	return &Downloader{Client: http.DefaultClient, Timeout: 100 * time.Second, UI: ui}
}

// SHA256 streams the body of url through a sha256 digester.
func (d *Downloader) SHA256(ctx context.Context, url string) (string, error) {
	files.UIOrNoop(d.UI).Printf("Retrieving and hashing %s\n", url)

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("Requesting URL '%s': %s", url, err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Requesting URL '%s': %s", url, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("Requesting URL '%s': %s", url, resp.Status)
	}

	digester := digest.SHA256.Digester()

	_, err = io.Copy(digester.Hash(), resp.Body)
	if err != nil {
		return "", fmt.Errorf("Reading URL '%s': %s", url, err)
	}

	return digester.Digest().Encoded(), nil
}

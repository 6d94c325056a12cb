// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package modify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/template"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoContext = errors.New("Could not find context in recipe")
	ErrNoVersion = errors.New("Could not find version in recipe context")

	versionExprRegexp = regexp.MustCompile(`\$\{\{\s*version`)
)

// CRANMirror is available to source URLs of R recipes.
const CRANMirror = "https://cran.r-project.org"

// UpdateBuildNumber returns the recipe at path with its build number set.
func UpdateBuildNumber(path string, number int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return UpdateBuildNumberBytes(data, number)
}

// UpdateBuildNumberBytes sets the first context entry named build or
// build_*. Without one, build.number of the recipe and of each output is
// set where present.
func UpdateBuildNumberBytes(data []byte, number int) (string, error) {
	doc, err := NewDocument(data)
	if err != nil {
		return "", err
	}

	if !updateBuildNumberInContext(doc, number) {
		updateBuildNumberInRecipe(doc, number)
	}

	out, err := doc.Bytes()
	return string(out), err
}

func updateBuildNumberInContext(doc *Document, number int) bool {
	ctx := mappingValue(doc.Body(), "context")
	for _, key := range mappingKeys(ctx) {
		if strings.HasPrefix(key, "build_") || key == "build" {
			setInt(mappingValue(ctx, key), number)
			return true
		}
	}
	return false
}

func updateBuildNumberInRecipe(doc *Document, number int) bool {
	var modified bool

	if num := mappingValue(mappingValue(doc.Body(), "build"), "number"); num != nil {
		setInt(num, number)
		modified = true
	}

	outputs := mappingValue(doc.Body(), "outputs")
	if outputs != nil && outputs.Kind == yaml.SequenceNode {
		for _, output := range outputs.Content {
			if num := mappingValue(mappingValue(output, "build"), "number"); num != nil {
				setInt(num, number)
				modified = true
			}
		}
	}

	return modified
}

// UpdateVersion returns the recipe at path moved to version. Sources whose
// URL depends on the version get hash, or the sha256 of the downloaded
// archive when hash is nil.
func UpdateVersion(ctx context.Context, path, version string, hash *Hash, downloader *Downloader) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return UpdateVersionBytes(ctx, data, version, hash, downloader)
}

func UpdateVersionBytes(ctx context.Context, data []byte, version string, hash *Hash, downloader *Downloader) (string, error) {
	doc, err := NewDocument(data)
	if err != nil {
		return "", err
	}

	contextNode := mappingValue(doc.Body(), "context")
	if contextNode == nil {
		return "", ErrNoContext
	}
	versionNode := mappingValue(contextNode, "version")
	if versionNode == nil {
		return "", ErrNoVersion
	}

	setString(versionNode, version)

	vars, err := renderedContext(contextNode)
	if err != nil {
		return "", err
	}

	env := template.NewEnvironment()

	for _, source := range doc.SourceNodes() {
		url, found := firstURL(source)
		if !found || !versionExprRegexp.MatchString(url) {
			continue
		}

		renderedURL, err := env.RenderString(url, vars)
		if err != nil {
			return "", fmt.Errorf("rendering source url '%s': %w", url, err)
		}

		err = UpdateHash(ctx, source, renderedURL, hash, downloader)
		if err != nil {
			return "", err
		}
	}

	out, err := doc.Bytes()
	return string(out), err
}

func renderedContext(contextNode *yaml.Node) (template.Context, error) {
	val, err := orderedmap.FromNode(contextNode)
	if err != nil {
		return nil, err
	}

	ctxMap, ok := val.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("expected recipe context to be a mapping")
	}

	resolved, err := template.RenderContext(ctxMap, nil)
	if err != nil {
		return nil, err
	}

	vars := template.Context{}
	resolved.Iterate(func(k string, v interface{}) { vars[k] = v })
	vars["cran_mirror"] = CRANMirror

	return vars, nil
}

// UpdateHash stores a hash in the source mapping, dropping hashes of other
// types. Without a hash the archive at url is downloaded and its sha256 is
// used.
func UpdateHash(ctx context.Context, source *yaml.Node, url string, hash *Hash, downloader *Downloader) error {
	hashType := HashSHA256
	if hash != nil {
		hashType = hash.Type
	}

	for _, otherType := range allHashTypes {
		if otherType != hashType {
			deleteMappingKey(source, string(otherType))
		}
	}

	if hash != nil {
		setMappingString(source, string(hash.Type), hash.Value)
		return nil
	}

	if downloader == nil {
		downloader = NewDownloader(nil)
	}

	sum, err := downloader.SHA256(ctx, url)
	if err != nil {
		return err
	}

	setMappingString(source, string(HashSHA256), sum)
	return nil
}

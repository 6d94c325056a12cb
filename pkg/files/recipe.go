// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ValidRecipeNames lists file names recognized as recipes.
	ValidRecipeNames = []string{"recipe.yaml"}

	ignoredRecipeDirs = []string{".AppleDouble"}
)

// FindRecipe returns the recipe file at path. A directory is searched
// recursively; when several recipes are found the one directly inside path
// wins.
func FindRecipe(path string, ui UI) (string, error) {
	ui = UIOrNoop(ui)
	names := strings.Join(ValidRecipeNames, ", ")

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	if !info.IsDir() {
		if isValidRecipeName(filepath.Base(absPath)) {
			return absPath, nil
		}
		return "", fmt.Errorf("%s is not a valid meta file (%s)", absPath, names)
	}

	results, err := findRecipes(absPath)
	if err != nil {
		return "", err
	}

	switch len(results) {
	case 0:
		return "", fmt.Errorf("No meta files (%s) found in %s", names, absPath)
	case 1:
		return results[0], nil
	}

	var baseLevel []string
	for _, name := range ValidRecipeNames {
		candidate := filepath.Join(absPath, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			baseLevel = append(baseLevel, candidate)
		}
	}

	if len(baseLevel) == 1 {
		ui.Warnf("Multiple meta files found. The %s file in the base directory (%s) will be used.\n",
			filepath.Base(baseLevel[0]), absPath)
		return baseLevel[0], nil
	}

	return "", fmt.Errorf("More than one meta files (%s) found in %s", names, absPath)
}

// HasRecipe reports whether path is, or contains, a recipe.
func HasRecipe(path string) bool {
	found, err := FindRecipe(path, nil)
	return err == nil && len(found) > 0
}

func findRecipes(dir string) ([]string, error) {
	var results []string

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			for _, ignored := range ignoredRecipeDirs {
				if matched, _ := filepath.Match(ignored, entry.Name()); matched && path != dir {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if isValidRecipeName(entry.Name()) {
			results = append(results, path)
		}
		return nil
	})

	return results, err
}

func isValidRecipeName(name string) bool {
	for _, valid := range ValidRecipeNames {
		if name == valid {
			return true
		}
	}
	return false
}

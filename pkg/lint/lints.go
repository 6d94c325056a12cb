// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	_ "crypto/sha256"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/rbcompat/rbcompat/pkg/conditional"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

var (
	requirementsOrder = []string{"build", "host", "run"}
	testKeys          = []string{"script", "python", "r", "perl", "package_contents", "downstream"}
	hashKeys          = []string{"sha256", "sha1", "md5"}
	pinOperators      = []string{"!=", "=", "==", ">", "<", "<=", ">="}

	packageNameRegexp = regexp.MustCompile(`^[a-z0-9_\-.]+$`)
	exprRefRegexp     = regexp.MustCompile(`\$\{\{(.*?)\}\}`)
)

func lintAboutContents(about *orderedmap.Map) []string {
	var lints []string
	for _, key := range []string{"homepage", "license", "summary"} {
		if isEmpty(get(about, key)) {
			lints = append(lints, fmt.Sprintf("The %s item is expected in the about section.", key))
		}
	}
	return lints
}

func lintRecipeMaintainers(extra *orderedmap.Map) []string {
	var lints []string

	maintainers := get(extra, "recipe-maintainers")
	if isEmpty(maintainers) {
		lints = append(lints, "The recipe could do with some maintainers listed in the `extra/recipe-maintainers` section.")
	}
	if _, isList := maintainers.([]interface{}); !isList {
		lints = append(lints, "Recipe maintainers should be a json list.")
	}
	return lints
}

func hasTests(tests interface{}) bool {
	for item := range conditional.Visit(tests, nil) {
		if entry, ok := item.(*orderedmap.Map); ok {
			for _, key := range testKeys {
				if entry.Has(key) {
					return true
				}
			}
		}
	}
	return false
}

func lintRecipeTests(tests interface{}, outputs []*orderedmap.Map) (lints, hints []string) {
	if tests != nil && hasTests(tests) {
		return nil, nil
	}
	if len(outputs) == 0 {
		return []string{"The recipe must have some tests."}, nil
	}

	var outputHints []string
	outputHasTests := false

	for _, output := range outputs {
		if hasTests(get(output, "tests")) {
			outputHasTests = true
			continue
		}
		outputHints = append(outputHints, fmt.Sprintf("It looks like the '%s' output doesn't have any tests.", outputName(output)))
	}

	if !outputHasTests {
		return []string{"The recipe must have some tests."}, nil
	}
	return nil, outputHints
}

func outputName(output *orderedmap.Map) string {
	if name := str(get(asMap(get(output, "package")), "name")); name != "" {
		return name
	}
	if name := str(get(output, "name")); name != "" {
		return name
	}
	return "???"
}

func lintLicenseNotUnknown(about *orderedmap.Map) []string {
	if strings.TrimSpace(strings.ToLower(str(get(about, "license")))) == "unknown" {
		return []string{"The recipe license cannot be unknown."}
	}
	return nil
}

func lintBuildNumber(build *orderedmap.Map) []string {
	if isEmpty(get(build, "number")) {
		return []string{"The recipe must have a `build/number` section."}
	}
	return nil
}

func lintRequirementsOrder(requirements *orderedmap.Map) []string {
	var seen []string
	for _, key := range requirements.Keys() {
		if slices.Contains(requirementsOrder, key) {
			seen = append(seen, key)
		}
	}

	sorted := slices.Clone(seen)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return slices.Index(requirementsOrder, a) - slices.Index(requirementsOrder, b)
	})

	if slices.Equal(seen, sorted) {
		return nil
	}
	return []string{fmt.Sprintf("The `requirements/` sections should be defined in the following order: %s; instead saw: %s.",
		strings.Join(requirementsOrder, ", "), strings.Join(seen, ", "))}
}

// resolvedField prefers the package value unless it is an expression, in
// which case the context value is used.
func resolvedField(pkg, context *orderedmap.Map, field string) string {
	val := str(get(pkg, field))
	if val == "" || strings.HasPrefix(val, "$") {
		return str(get(context, field))
	}
	return val
}

func lintPackageVersion(pkg, context *orderedmap.Map) []string {
	version := resolvedField(pkg, context, "version")
	if version == "" || strings.HasPrefix(version, "$") {
		return nil
	}
	if !IsValidVersion(version) {
		return []string{fmt.Sprintf("Package version %s doesn't match conda spec", version)}
	}
	return nil
}

func lintFilesHaveHash(sources []*orderedmap.Map) []string {
	var lints []string
	for _, source := range sources {
		if !source.Has("url") {
			continue
		}
		hasHash := slices.ContainsFunc(hashKeys, source.Has)
		if !hasHash {
			lints = append(lints, "When defining a source/url please add a sha256, sha1 or md5 checksum (sha256 preferably).")
		}
	}
	return lints
}

func lintSHA256Literals(sources []*orderedmap.Map) []string {
	var lints []string
	for _, source := range sources {
		val := str(get(source, "sha256"))
		if val == "" || strings.Contains(val, "${{") {
			continue
		}
		err := digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(val)).Validate()
		if err != nil {
			lints = append(lints, fmt.Sprintf("The source sha256 '%s' is not a valid sha256 checksum.", val))
		}
	}
	return lints
}

func lintLegacyCompilers(requirements *orderedmap.Map) []string {
	if slices.Contains(strs(get(requirements, "build")), "toolchain") {
		return []string{"Using toolchain directly in this manner is deprecated. Consider using the compilers outlined " +
			"[here](https://conda-forge.org/docs/maintainer/knowledge_base.html#compilers)."}
	}
	return nil
}

func lintHasLicenseFile(about *orderedmap.Map) []string {
	if isEmpty(get(about, "license_file")) {
		return []string{"license_file entry is missing, but is required."}
	}
	return nil
}

func lintPackageName(pkg, context *orderedmap.Map) []string {
	name := strings.TrimSpace(resolvedField(pkg, context, "name"))
	if !packageNameRegexp.MatchString(name) {
		return []string{"Recipe name has invalid characters. only lowercase alpha, numeric, underscores, hyphens and dots allowed"}
	}
	return nil
}

func lintLegacyPatterns(requirements *orderedmap.Map) []string {
	if slices.Contains(strs(get(requirements, "build")), "numpy x.x") {
		return []string{"Using pinned numpy packages is a deprecated pattern.  Consider using the method outlined " +
			"[here](https://conda-forge.org/docs/maintainer/knowledge_base.html#linking-numpy)."}
	}
	return nil
}

// hasBranchRecords reports whether any unevaluated requirement list holds
// a branch record.
func hasBranchRecords(rawRequirements *orderedmap.Map) bool {
	found := false
	rawRequirements.Iterate(func(_ string, reqs interface{}) {
		items, _ := reqs.([]interface{})
		for _, item := range items {
			if _, isMap := item.(*orderedmap.Map); isMap {
				found = true
			}
		}
	})
	return found
}

func lintNoarchSelectors(noarch string, build, rawRequirements *orderedmap.Map) []string {
	msg := fmt.Sprintf("`noarch` packages can't have skips with selectors. If the selectors are necessary, please remove `noarch: %s`.", noarch)

	var lints []string
	if hasBranchRecords(rawRequirements) {
		lints = append(lints, msg)
	}
	if build.Has("skip") {
		lints = append(lints, msg)
	}
	return lints
}

func lintSingleSpacePinning(requirements *orderedmap.Map) []string {
	var lints []string

	requirements.Iterate(func(section string, reqs interface{}) {
		for _, req := range strs(reqs) {
			if strings.Contains(req, "${{") {
				continue
			}

			parts := strings.Fields(req)
			if len(parts) == 0 {
				continue
			}

			if len(parts) > 2 && slices.Contains(pinOperators, parts[1]) {
				lints = append(lints, fmt.Sprintf("``requirements: %s: %s`` should not contain a space between "+
					"relational operator and the version, i.e. ``%s %s``", section, req, parts[0], strings.Join(parts[1:], "")))
				continue
			}

			idx := strings.IndexAny(parts[0], "><=")
			if idx >= 0 {
				lints = append(lints, fmt.Sprintf("``requirements: %s: %s`` must contain a space between the name "+
					"and the pin, i.e. ``%s %s``", section, req, parts[0][:idx], parts[0][idx:]+strings.Join(parts[1:], "")))
			}
		}
	})

	return lints
}

func lintNonNoarchLanguageConstraints(requirements *orderedmap.Map) []string {
	var lints []string

	host := strs(get(requirements, "host"))
	run := strs(get(requirements, "run"))

	for _, language := range []string{"python", "r-base"} {
		hostReqs := requirementsNamed(host, language)
		runReqs := requirementsNamed(run, language)

		if len(hostReqs) > 0 && len(runReqs) == 0 {
			lints = append(lints, fmt.Sprintf("If %s is a host requirement, it should be a run requirement.", language))
		}

		for _, reqs := range [][]string{hostReqs, runReqs} {
			if slices.Contains(reqs, language) {
				continue
			}
			for _, req := range reqs {
				_, constraint, found := strings.Cut(req, " ")
				if found && (strings.HasPrefix(constraint, ">") || strings.HasPrefix(constraint, "<")) {
					lints = append(lints, fmt.Sprintf("Non noarch packages should have %s requirement without any version constraints.", language))
				}
			}
		}
	}

	return lints
}

func requirementsNamed(reqs []string, name string) []string {
	var result []string
	for _, req := range reqs {
		if requirementName(req) == name {
			result = append(result, req)
		}
	}
	return result
}

// requirementName returns the package name of a match spec such as
// "python >=3.8" or "python>=3.8".
func requirementName(req string) string {
	req = strings.TrimSpace(req)
	if idx := strings.IndexAny(req, " <>=!~"); idx >= 0 {
		return req[:idx]
	}
	return req
}

func lintPythonLowerBound(requirements *orderedmap.Map) []string {
	for _, req := range strs(get(requirements, "run")) {
		if requirementName(req) == "python" && req != "python" {
			return nil
		}
	}
	return []string{"noarch: python recipes are required to have a lower bound on the python version. " +
		"Typically this means putting `python >=3.6` in **both** `host` and `run` but you should check " +
		"upstream for the package's Python compatibility."}
}

func hintExpressionSpacing(data []byte) []string {
	var badLines []string

	for i, line := range strings.Split(string(data), "\n") {
		for _, match := range exprRefRegexp.FindAllStringSubmatch(line, -1) {
			if match[1] != " "+strings.TrimSpace(match[1])+" " {
				badLines = append(badLines, fmt.Sprintf("%d", i+1))
				break
			}
		}
	}

	if len(badLines) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("Jinja2 variable references are suggested to take a "+
		"``${{<one space><variable name><one space>}}`` form. See lines [%s].", strings.Join(badLines, ", "))}
}

func hintPipUsage(build *orderedmap.Map) []string {
	for _, script := range scripts(get(build, "script")) {
		if strings.Contains(script, "python setup.py install") {
			return []string{"Whenever possible python packages should use pip. " +
				"See https://conda-forge.org/docs/maintainer/adding_pkgs.html#use-pip"}
		}
	}
	return nil
}

func scripts(val interface{}) []string {
	switch typedVal := val.(type) {
	case string:
		return []string{typedVal}
	case []interface{}:
		return strs(typedVal)
	case *orderedmap.Map:
		return scripts(get(typedVal, "content"))
	default:
		return nil
	}
}

func hintNoarchUsage(build, rawRequirements *orderedmap.Map) []string {
	buildReqs := strs(get(rawRequirements, "build"))
	if len(buildReqs) == 0 || !slices.Contains(buildReqs, "pip") {
		return nil
	}

	for _, req := range buildReqs {
		if strings.HasPrefix(req, "${{") && (strings.Contains(req, "compiler('c')") || strings.Contains(req, `compiler("c")`)) {
			return nil
		}
	}

	if build.Has("skip") || hasBranchRecords(rawRequirements) {
		return nil
	}

	return []string{"Whenever possible python packages should use noarch. " +
		"See https://conda-forge.org/docs/maintainer/knowledge_base.html#noarch-builds"}
}

// hintSpecificPackages adds the hint of every requirement (of the recipe
// and its outputs) that has one.
func hintSpecificPackages(requirements *orderedmap.Map, outputs []*orderedmap.Map, specific map[string]string, hints []string) []string {
	var reqs []string
	collect := func(section *orderedmap.Map) {
		for _, key := range requirementsOrder {
			reqs = append(reqs, strs(get(section, key))...)
		}
	}

	collect(requirements)
	for _, output := range outputs {
		switch typedReqs := get(output, "requirements").(type) {
		case *orderedmap.Map:
			collect(typedReqs)
		case []interface{}:
			reqs = append(reqs, strs(typedReqs)...)
		}
	}

	var result []string
	for _, req := range reqs {
		hint, found := specific[requirementName(req)]
		if found && !slices.Contains(hints, hint) && !slices.Contains(result, hint) {
			result = append(result, hint)
		}
	}
	return result
}

func get(m *orderedmap.Map, key string) interface{} {
	if m == nil {
		return nil
	}
	val, _ := m.Get(key)
	return val
}

func asMap(val interface{}) *orderedmap.Map {
	if typedVal, ok := val.(*orderedmap.Map); ok {
		return typedVal
	}
	return orderedmap.NewMap()
}

func str(val interface{}) string {
	typedVal, _ := val.(string)
	return typedVal
}

// strs returns the string items of a (possibly conditional) list.
func strs(val interface{}) []string {
	if isEmpty(val) {
		return nil
	}
	var result []string
	for item := range conditional.Visit(val, nil) {
		if typedItem, ok := item.(string); ok {
			result = append(result, typedItem)
		}
	}
	return result
}

func isEmpty(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil:
		return true
	case string:
		return typedVal == ""
	case []interface{}:
		return len(typedVal) == 0
	case *orderedmap.Map:
		return typedVal.Len() == 0
	default:
		return false
	}
}

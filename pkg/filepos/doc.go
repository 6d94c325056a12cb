// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos provides the concept of Position: a source name (usually a
recipe or variant file) and a line/column within that source.

Positions are attached to loader and template errors so that users can find
the offending "if" branch or "${{ }}" expression.

The zero-value of Position (see NewUnknownPosition()) represents a location
that is not known, for example a value built in memory.
*/
package filepos

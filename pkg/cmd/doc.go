// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to the full set of rbcompat's "commands" -- instances of cobra.Command
(not to be confused with ./cmd which contains the bootstrapping for executing rbcompat).

For a list of commands run:

	$ rbcompat help
*/
package cmd

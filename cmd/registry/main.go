// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"a2aregistry/server/registry"
)

func main() {
	registry.Run()
}

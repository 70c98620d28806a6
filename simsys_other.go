// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64
// +build !amd64

package pdf

// hasAVX2 reports AVX2 support. Always false outside amd64.
func hasAVX2() bool {
	return false
}

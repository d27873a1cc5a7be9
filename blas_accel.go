//go:build netlib

package main

import (
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// This file swaps in the netlib BLAS backend when you build
// with `-tags netlib`.
func init() {
	blas64.Use(netblas.Implementation{})
}

// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

//go:build !unix

package main

func mmapFile(string) ([]byte, func(), error) {
	return nil, nil, errMmapUnsupported
}

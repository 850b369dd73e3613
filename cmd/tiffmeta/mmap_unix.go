// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

//go:build unix

package main

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps filename read-only into memory.
func mmapFile(filename string) ([]byte, func(), error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := fi.Size()
	if size == 0 {
		// Zero length mappings are not allowed.
		return []byte{}, func() {}, nil
	}
	if size != int64(int(size)) {
		return nil, nil, errors.New("file too large to map")
	}

	b, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return b, func() { unix.Munmap(b) }, nil
}

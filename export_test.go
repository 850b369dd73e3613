// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

// Test data builders for the external tests.
var (
	NewTestExif = newTestExif
	NewTestJPEG = newTestJPEG
	JPEGSegment = jpegSegment
	NewTestIPTC = newTestIPTC
	NewTestICC  = newTestICC
	TestXMP     = testXMP
)

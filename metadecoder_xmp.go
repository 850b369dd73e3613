// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

var xmpSkipNamespaces = map[string]bool{
	"xmlns": true,
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#": true,
	"http://purl.org/dc/elements/1.1/":            true,
}

type rdf struct {
	XMLName      xml.Name
	Descriptions []rdfDescription `xml:"Description"`
}

// Note: We currently only handle a subset of XMP tags,
// but a very common subset.
type rdfDescription struct {
	XMLName   xml.Name
	Attrs     []xml.Attr `xml:",any,attr"`
	Creator   seqList    `xml:"creator"`
	Publisher bagList    `xml:"publisher"`
	Subject   bagList    `xml:"subject"`
	Rights    altList    `xml:"rights"`

	// Simple child elements.
	GPSLatitude      string `xml:"GPSLatitude"`
	GPSLongitude     string `xml:"GPSLongitude"`
	DateTimeOriginal string `xml:"DateTimeOriginal"`
	CreateDate       string `xml:"CreateDate"`
}

type altList struct {
	XMLName xml.Name
	Alt     struct {
		Items []string `xml:"li"`
	} `xml:"Alt"`
}

type seqList struct {
	XMLName xml.Name
	Seq     struct {
		Items []string `xml:"li"`
	} `xml:"Seq"`
}

type bagList struct {
	XMLName xml.Name
	Bag     struct {
		Items []string `xml:"li"`
	} `xml:"Bag"`
}

type xmpmeta struct {
	XMLName xml.Name
	RDF     rdf `xml:"RDF"`
}

// decodeXMP decodes an XMP packet into a new XMP directory.
// The raw packet is stored as a tag, the properties found in the
// rdf:Description elements are available through XMPProperties.
func decodeXMP(b []byte, md *Metadata, parent *Directory) {
	d := NewDirectory(DirXMP)
	if parent != nil {
		d.SetParent(parent)
	}
	md.Add(d)

	d.Set(tagXMPPacket, string(b))

	props, err := parseXMP(b)
	if err != nil {
		d.AddError(fmt.Sprintf("Error processing XMP data: %s", err))
	}
	d.xmpProperties = props
}

func parseXMP(b []byte) (map[string]any, error) {
	props := make(map[string]any)

	var meta xmpmeta
	if err := xml.NewDecoder(bytes.NewReader(b)).Decode(&meta); err != nil {
		return props, err
	}
	root := meta.RDF
	if meta.XMLName.Local == "RDF" {
		// No x:xmpmeta wrapper.
		if err := xml.NewDecoder(bytes.NewReader(b)).Decode(&root); err != nil {
			return props, err
		}
	}

	for _, desc := range root.Descriptions {
		for _, attr := range desc.Attrs {
			if xmpSkipNamespaces[attr.Name.Space] {
				continue
			}
			props[firstUpper(attr.Name.Local)] = attr.Value
		}

		addXMPList(props, desc.Creator.XMLName, desc.Creator.Seq.Items)
		addXMPList(props, desc.Publisher.XMLName, desc.Publisher.Bag.Items)
		addXMPList(props, desc.Subject.XMLName, desc.Subject.Bag.Items)
		addXMPList(props, desc.Rights.XMLName, desc.Rights.Alt.Items)

		if desc.DateTimeOriginal != "" {
			props["DateTimeOriginal"] = desc.DateTimeOriginal
		}
		if desc.CreateDate != "" {
			props["CreateDate"] = desc.CreateDate
		}

		// Attribute or child element.
		for name, s := range map[string]string{"GPSLatitude": desc.GPSLatitude, "GPSLongitude": desc.GPSLongitude} {
			if s == "" {
				s, _ = props[name].(string)
			}
			if s == "" {
				continue
			}
			if f, err := parseXMPGPSCoordinate(s); err == nil {
				props[name] = f
			}
		}
	}

	return props, nil
}

// addXMPList adds a list property, a single item is stored as a string.
func addXMPList(props map[string]any, name xml.Name, items []string) {
	if len(items) == 0 || name.Local == "" {
		return
	}
	if len(items) == 1 {
		props[firstUpper(name.Local)] = items[0]
		return
	}
	props[firstUpper(name.Local)] = items
}

// parseXMPGPSCoordinate parses GPS coordinates from XMP format.
// XMP GPS coordinates can be in several formats:
// - DMS with direction: "26,34.951N" or "80,12.014W"
// - Decimal with direction: "26.5825N" or "80.2002W"
// - Pure decimal: "26.5825" or "-80.2002"
func parseXMPGPSCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty coordinate")
	}

	var negative bool
	switch s[len(s)-1] {
	case 'S', 's', 'W', 'w':
		negative = true
		s = s[:len(s)-1]
	case 'N', 'n', 'E', 'e':
		s = s[:len(s)-1]
	}

	var degrees float64
	if deg, min, found := strings.Cut(s, ","); found {
		d, err := strconv.ParseFloat(deg, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing degrees: %w", err)
		}
		m, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing minutes: %w", err)
		}
		degrees = d + m/60.0
	} else {
		var err error
		degrees, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing decimal: %w", err)
		}
	}

	if negative {
		degrees = -degrees
	}

	return degrees, nil
}

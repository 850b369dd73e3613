// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

// IPTC tag ids are record<<8 | dataset.
const (
	iptcTagCodedCharacterSet = 1<<8 | 90
	iptcTagKeywords          = 2<<8 | 25
	iptcTagDateCreated       = 2<<8 | 55
	iptcTagTimeCreated       = 2<<8 | 60
)

type iptcField struct {
	name       string
	repeatable bool
	format     string
}

var iptcFields = map[int]iptcField{
	1<<8 | 0:   {"EnvelopeRecordVersion", false, "short"},
	1<<8 | 5:   {"Destination", true, "string"},
	1<<8 | 20:  {"FileFormat", false, "short"},
	1<<8 | 22:  {"FileVersion", false, "short"},
	1<<8 | 30:  {"ServiceIdentifier", false, "string"},
	1<<8 | 40:  {"EnvelopeNumber", false, "string"},
	1<<8 | 50:  {"ProductID", true, "string"},
	1<<8 | 60:  {"EnvelopePriority", false, "string"},
	1<<8 | 70:  {"DateSent", false, "string"},
	1<<8 | 80:  {"TimeSent", false, "string"},
	1<<8 | 90:  {"CodedCharacterSet", false, "bytes"},
	1<<8 | 100: {"UniqueObjectName", false, "string"},
	1<<8 | 120: {"ARMIdentifier", false, "short"},
	1<<8 | 122: {"ARMVersion", false, "short"},

	2<<8 | 0:   {"RecordVersion", false, "short"},
	2<<8 | 3:   {"ObjectTypeReference", false, "string"},
	2<<8 | 4:   {"ObjectAttributeReference", true, "string"},
	2<<8 | 5:   {"ObjectName", false, "string"},
	2<<8 | 7:   {"EditStatus", false, "string"},
	2<<8 | 10:  {"Urgency", false, "byte"},
	2<<8 | 12:  {"SubjectReference", true, "string"},
	2<<8 | 15:  {"Category", false, "string"},
	2<<8 | 20:  {"SupplementalCategories", true, "string"},
	2<<8 | 22:  {"FixtureIdentifier", false, "string"},
	2<<8 | 25:  {"Keywords", true, "string"},
	2<<8 | 26:  {"ContentLocationCode", true, "string"},
	2<<8 | 27:  {"ContentLocationName", true, "string"},
	2<<8 | 30:  {"ReleaseDate", false, "string"},
	2<<8 | 35:  {"ReleaseTime", false, "string"},
	2<<8 | 37:  {"ExpirationDate", false, "string"},
	2<<8 | 38:  {"ExpirationTime", false, "string"},
	2<<8 | 40:  {"SpecialInstructions", false, "string"},
	2<<8 | 42:  {"ActionAdvised", false, "string"},
	2<<8 | 45:  {"ReferenceService", true, "string"},
	2<<8 | 47:  {"ReferenceDate", true, "string"},
	2<<8 | 50:  {"ReferenceNumber", true, "string"},
	2<<8 | 55:  {"DateCreated", false, "string"},
	2<<8 | 60:  {"TimeCreated", false, "string"},
	2<<8 | 62:  {"DigitalCreationDate", false, "string"},
	2<<8 | 63:  {"DigitalCreationTime", false, "string"},
	2<<8 | 65:  {"OriginatingProgram", false, "string"},
	2<<8 | 70:  {"ProgramVersion", false, "string"},
	2<<8 | 75:  {"ObjectCycle", false, "string"},
	2<<8 | 80:  {"By-line", true, "string"},
	2<<8 | 85:  {"By-lineTitle", true, "string"},
	2<<8 | 90:  {"City", false, "string"},
	2<<8 | 92:  {"Sub-location", false, "string"},
	2<<8 | 95:  {"Province-State", false, "string"},
	2<<8 | 100: {"Country-PrimaryLocationCode", false, "string"},
	2<<8 | 101: {"Country-PrimaryLocationName", false, "string"},
	2<<8 | 103: {"OriginalTransmissionReference", false, "string"},
	2<<8 | 105: {"Headline", false, "string"},
	2<<8 | 110: {"Credit", false, "string"},
	2<<8 | 115: {"Source", false, "string"},
	2<<8 | 116: {"CopyrightNotice", false, "string"},
	2<<8 | 118: {"Contact", true, "string"},
	2<<8 | 120: {"Caption-Abstract", false, "string"},
	2<<8 | 121: {"LocalCaption", false, "string"},
	2<<8 | 122: {"Writer-Editor", true, "string"},
	2<<8 | 130: {"ImageType", false, "string"},
	2<<8 | 131: {"ImageOrientation", false, "string"},
	2<<8 | 135: {"LanguageIdentifier", false, "string"},
	2<<8 | 200: {"ObjectPreviewFileFormat", false, "short"},
	2<<8 | 201: {"ObjectPreviewFileVersion", false, "short"},
	2<<8 | 202: {"ObjectPreviewData", false, "bytes"},
}

var fieldsIPTC = func() map[int]string {
	m := make(map[int]string, len(iptcFields))
	for id, f := range iptcFields {
		m[id] = f.name
	}
	return m
}()

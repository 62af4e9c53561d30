// Package models - the object-part vocabulary of the part detector.
package models

import (
	"strings"

	"github.com/nvr-ai/go-camoxai/common"
)

// PartVocabulary lists the part labels in detector class order. Class ids are 1-based.
var PartVocabulary = []string{"leg", "mouth", "shadow", "tail", "arm", "eye"}

const (
	// possessivePrefix is prepended to raw part labels when they are narrated.
	possessivePrefix = "Object's "
	// objectPrefix and objectSuffix wrap the part name of a consolidated finding label.
	objectPrefix = "Object ("
	objectSuffix = ")"
)

// ResolvePart returns the part name for a 1-based detector class id.
func ResolvePart(classID int) (string, error) {
	if classID < 1 || classID > len(PartVocabulary) {
		return "", common.InvalidInput("part class id %d outside 1..%d", classID, len(PartVocabulary))
	}
	return PartVocabulary[classID-1], nil
}

// PartIndex returns the 1-based class id of a part name, or 0 when the name is unknown.
func PartIndex(name string) int {
	for i, p := range PartVocabulary {
		if p == name {
			return i + 1
		}
	}
	return 0
}

// PossessiveLabel returns the raw detection label for a part, e.g. "Object's leg".
func PossessiveLabel(part string) string {
	return possessivePrefix + part
}

// ObjectLabel returns the consolidated finding label for a part, e.g. "Object (leg)".
func ObjectLabel(part string) string {
	return objectPrefix + part + objectSuffix
}

// PartName reduces a label to its bare part name.
//
// "Object's leg" and "Object (leg)" both become "leg"; any other label is returned unchanged.
func PartName(label string) string {
	if strings.HasPrefix(label, possessivePrefix) {
		return strings.TrimPrefix(label, possessivePrefix)
	}
	if strings.HasPrefix(label, objectPrefix) && strings.HasSuffix(label, objectSuffix) {
		return strings.TrimSuffix(strings.TrimPrefix(label, objectPrefix), objectSuffix)
	}
	return label
}

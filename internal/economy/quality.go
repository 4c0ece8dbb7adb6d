package economy

import (
	"fmt"
	"strings"
)

// Quality is an item quality tier. Values are the Steam schema integer codes.
type Quality int

const (
	QualityNormal     Quality = 0
	QualityGenuine    Quality = 1
	QualityVintage    Quality = 3
	QualityUnusual    Quality = 5
	QualityUnique     Quality = 6
	QualityCommunity  Quality = 7
	QualityValve      Quality = 8
	QualitySelfMade   Quality = 9
	QualityStrange    Quality = 11
	QualityHaunted    Quality = 13
	QualityCollectors Quality = 14
	QualityDecorated  Quality = 15
)

type qualityInfo struct {
	name string
	// prefix is the quality word that display names may carry in front of
	// the item name ("Unusual Burning Team Captain", "The Team Captain").
	prefix string
}

var qualityTable = map[Quality]qualityInfo{
	QualityNormal:     {name: "Normal", prefix: ""},
	QualityGenuine:    {name: "Genuine", prefix: "Genuine"},
	QualityVintage:    {name: "Vintage", prefix: "Vintage"},
	QualityUnusual:    {name: "Unusual", prefix: "Unusual"},
	QualityUnique:     {name: "Unique", prefix: "The"},
	QualityCommunity:  {name: "Community", prefix: "Community"},
	QualityValve:      {name: "Valve", prefix: "Valve"},
	QualitySelfMade:   {name: "Self-Made", prefix: "Self-Made"},
	QualityStrange:    {name: "Strange", prefix: "Strange"},
	QualityHaunted:    {name: "Haunted", prefix: "Haunted"},
	QualityCollectors: {name: "Collector's", prefix: "Collector's"},
	QualityDecorated:  {name: "Decorated", prefix: ""},
}

var qualityByName = func() map[string]Quality {
	m := make(map[string]Quality, len(qualityTable))
	for q, info := range qualityTable {
		m[strings.ToLower(info.name)] = q
	}
	return m
}()

// QualityForCode returns the Quality for a Steam schema code.
func QualityForCode(code int) (Quality, error) {
	q := Quality(code)
	if _, ok := qualityTable[q]; !ok {
		return 0, fmt.Errorf("economy: quality code %d: %w", code, ErrMalformedData)
	}
	return q, nil
}

// QualityForName returns the Quality for a quality name, case-insensitive.
func QualityForName(name string) (Quality, error) {
	q, ok := qualityByName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("economy: quality name %q: %w", name, ErrMalformedData)
	}
	return q, nil
}

// Name returns the quality's display name, or the empty string for an
// unknown code.
func (q Quality) Name() string {
	return qualityTable[q].name
}

// StripPrefix removes this quality's display prefix and a trailing space from
// the given name, if present. Display names from inventories and offers carry
// the prefix; catalog keys do not.
func (q Quality) StripPrefix(fullName string) string {
	prefix := qualityTable[q].prefix
	if prefix == "" {
		return fullName
	}
	if len(fullName) > len(prefix)+1 && strings.EqualFold(fullName[:len(prefix)], prefix) && fullName[len(prefix)] == ' ' {
		return fullName[len(prefix)+1:]
	}
	return fullName
}

func (q Quality) String() string {
	if info, ok := qualityTable[q]; ok {
		return info.name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

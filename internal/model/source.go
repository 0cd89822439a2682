package model

import (
	"fmt"
	"strings"
)

// Source identifies one of the description sources
type Source string

const (
	SourceWikipedia           Source = "wikipedia" // en.wikipedia.org articles
	SourceArtfakta            Source = "artfakta"  // Artdatabanken species data API (requires key)
	SourceUKMoths             Source = "ukmoths"   // ukmoths.org.uk species pages
	SourceNRM                 Source = "nrm"       // Naturhistoriska riksmuseet, Svenska fjärilar
	SourceAnimalDiversityWeb  Source = "adw"       // animaldiversity.org accounts
	SourceButterfliesAndMoths Source = "bamona"    // butterfliesandmoths.org (BAMONA)
)

var sourceInfo = map[Source]struct {
	display string
	host    string
}{
	SourceWikipedia:           {"Wikipedia", "wikipedia.org"},
	SourceArtfakta:            {"Artfakta", "artfakta.se"},
	SourceUKMoths:             {"UKMoths", "ukmoths.org.uk"},
	SourceNRM:                 {"NRM", "nrm.se"},
	SourceAnimalDiversityWeb:  {"AnimalDiversityWeb", "animaldiversity.org"},
	SourceButterfliesAndMoths: {"ButterfliesAndMoths", "butterfliesandmoths.org"},
}

// AllSources returns every supported source in canonical order
func AllSources() []Source {
	return []Source{
		SourceWikipedia,
		SourceArtfakta,
		SourceUKMoths,
		SourceNRM,
		SourceAnimalDiversityWeb,
		SourceButterfliesAndMoths,
	}
}

// DisplayName returns the human-readable source name
func (s Source) DisplayName() string {
	if info, ok := sourceInfo[s]; ok {
		return info.display
	}
	return string(s)
}

// Host returns the public host the source is known by
func (s Source) Host() string {
	return sourceInfo[s].host
}

// Valid reports whether s is a supported source
func (s Source) Valid() bool {
	_, ok := sourceInfo[s]
	return ok
}

func (s Source) String() string {
	return string(s)
}

// ParseSource resolves a source from its id, display name or host name.
// Matching is case-insensitive.
func ParseSource(raw string) (Source, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimPrefix(key, "www.")

	for src, info := range sourceInfo {
		if key == string(src) || key == strings.ToLower(info.display) || key == info.host {
			return src, nil
		}
	}

	switch key {
	case "animaldiversity", "animal-diversity-web":
		return SourceAnimalDiversityWeb, nil
	case "butterfliesandmoths", "butterflies-and-moths":
		return SourceButterfliesAndMoths, nil
	case "artdatabanken", "dyntaxa":
		return SourceArtfakta, nil
	case "svenska_fjarilar", "www2.nrm.se":
		return SourceNRM, nil
	}

	return "", fmt.Errorf("unknown source: %q", raw)
}

// ParseSources parses a list of source names, preserving order
func ParseSources(raw []string) ([]Source, error) {
	sources := make([]Source, 0, len(raw))
	for _, r := range raw {
		src, err := ParseSource(r)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// SourceIdentifier is a per-source key (taxon ID, slug) resolved from a query
type SourceIdentifier struct {
	Source Source `json:"source"`
	Value  string `json:"value"`
}

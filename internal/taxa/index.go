package taxa

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
)

// maxEditDistance bounds typo suggestions that are not subsequence matches
const maxEditDistance = 3

// Entry is one row of a Dyntaxa taxon export
type Entry struct {
	ScientificName string
	TaxonID        string // Numeric Artfakta taxon id
	Rank           string // Lowercased taxonRank, e.g. "species", "genus"
	Status         string // taxonomicStatus, may be empty
}

// Index maps scientific names to Artfakta taxon ids
type Index struct {
	byName  map[string][]Entry // Folded name -> entries in file order
	display map[string]string  // Folded name -> name as written in the file
	names   []string           // Folded names, sorted
}

// LoadIndex reads a tab-separated Dyntaxa Taxon.csv file
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxon file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseIndex(f)
}

// ParseIndex reads Dyntaxa rows. The header must name scientificName and
// acceptedNameUsageID; taxonId, taxonRank and taxonomicStatus are optional.
func ParseIndex(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read taxon header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameCol, ok := cols["scientificName"]
	if !ok {
		return nil, errors.New("taxon file has no scientificName column")
	}
	acceptedCol, ok := cols["acceptedNameUsageID"]
	if !ok {
		return nil, errors.New("taxon file has no acceptedNameUsageID column")
	}

	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	ix := &Index{
		byName:  make(map[string][]Entry),
		display: make(map[string]string),
	}

	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read taxon row %d: %w", line, err)
		}
		if nameCol >= len(rec) || acceptedCol >= len(rec) {
			continue
		}

		name := normalize.Clean(rec[nameCol])
		id := lastSegment(rec[acceptedCol])
		if id == "" {
			id = lastSegment(field(rec, "taxonId"))
		}
		if name == "" || id == "" {
			continue
		}

		key := normalize.Fold(name)
		if _, seen := ix.byName[key]; !seen {
			ix.display[key] = name
			ix.names = append(ix.names, key)
		}
		ix.byName[key] = append(ix.byName[key], Entry{
			ScientificName: name,
			TaxonID:        id,
			Rank:           strings.ToLower(field(rec, "taxonRank")),
			Status:         field(rec, "taxonomicStatus"),
		})
	}

	sort.Strings(ix.names)
	return ix, nil
}

// lastSegment extracts "101314" from "urn:lsid:dyntaxa.se:Taxon:101314"
func lastSegment(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Len returns the number of distinct names
func (ix *Index) Len() int {
	return len(ix.names)
}

// Lookup returns the entries for an exact (case-insensitive) name
func (ix *Index) Lookup(name string) []Entry {
	return ix.byName[normalize.Fold(name)]
}

// Resolve maps a query to its Artfakta taxon id. Uninomials only match
// genus rows.
func (ix *Index) Resolve(n model.NormalizedQuery) (model.SourceIdentifier, bool) {
	if !n.HasScientific() {
		return model.SourceIdentifier{}, false
	}

	for _, e := range ix.byName[n.ScientificKey] {
		if n.Rank == model.RankUninomial && e.Rank != "" && e.Rank != "genus" {
			continue
		}
		return model.SourceIdentifier{Source: model.SourceArtfakta, Value: e.TaxonID}, true
	}
	return model.SourceIdentifier{}, false
}

// Suggest returns up to limit indexed names close to name, best first
func (ix *Index) Suggest(name string, limit int) []string {
	key := normalize.Fold(name)
	if key == "" || limit <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(key, ix.names)
	sort.Stable(ranks)

	var out []string
	seen := make(map[string]bool)
	add := func(k string) {
		if !seen[k] && k != key && len(out) < limit {
			seen[k] = true
			out = append(out, ix.display[k])
		}
	}

	for _, r := range ranks {
		add(r.Target)
	}

	if len(out) < limit {
		type scored struct {
			name string
			dist int
		}
		var near []scored
		for _, k := range ix.names {
			if d := fuzzy.LevenshteinDistance(key, k); d <= maxEditDistance {
				near = append(near, scored{k, d})
			}
		}
		sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
		for _, s := range near {
			add(s.name)
		}
	}

	return out
}

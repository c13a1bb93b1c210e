// Package campusfile reads a campus graph from a JSON or YAML document.
//
// Locations are given either on the local plane (x, z in metres) or as WGS 84
// coordinates (lat, lon) that are projected around the document's origin.
package campusfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/pkg/geospatial"
)

// Document is the on-disk campus format.
type Document struct {
	Origin    *Origin             `json:"origin,omitempty" yaml:"origin,omitempty"`
	Locations []Entry             `json:"locations" yaml:"locations"`
	Adjacency map[string][]string `json:"adjacency" yaml:"adjacency"`
}

// Origin anchors the local plane for locations given in lat/lon.
type Origin struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Entry is one location as written in the file.
type Entry struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	X    *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Z    *float64 `json:"z,omitempty" yaml:"z,omitempty"`
	Lat  *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty" yaml:"lon,omitempty"`
}

// Source implements ports.GraphSource for a campus file.
type Source struct {
	path string
}

// NewSource creates a Source reading path. The format follows the extension:
// .yaml and .yml are YAML, anything else is JSON.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// LoadCampus reads and resolves the file on every call.
func (s *Source) LoadCampus(ctx context.Context) ([]domain.Location, map[string][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("read campus file: %w", err)
	}
	doc, err := Parse(data, filepath.Ext(s.path))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return doc.Resolve()
}

// Parse decodes a campus document. ext selects the format (".yaml", ".yml" or ".json").
func Parse(data []byte, ext string) (*Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	return &doc, nil
}

// Resolve normalizes identifiers and turns every entry into a ground-plane location.
// Adjacency is returned as written; the graph constructor checks that it only names known locations.
func (d *Document) Resolve() ([]domain.Location, map[string][]string, error) {
	locations := make([]domain.Location, 0, len(d.Locations))
	for i, e := range d.Locations {
		id := domain.NormalizeID(e.ID)
		if id == "" {
			return nil, nil, fmt.Errorf("%w: location #%d has no id", domain.ErrGraphIntegrity, i)
		}

		loc := domain.Location{ID: id, Name: e.Name}
		switch {
		case e.X != nil && e.Z != nil:
			loc.X, loc.Z = *e.X, *e.Z
		case e.Lat != nil && e.Lon != nil:
			if d.Origin == nil {
				return nil, nil, fmt.Errorf("%w: %s is given in lat/lon but the file has no origin", domain.ErrGraphIntegrity, id)
			}
			loc.X, loc.Z = geospatial.ProjectPlanar(*e.Lat, *e.Lon, d.Origin.Lat, d.Origin.Lon)
		default:
			return nil, nil, fmt.Errorf("%w: %s has no coordinates", domain.ErrGraphIntegrity, id)
		}
		locations = append(locations, loc)
	}

	adjacency := make(map[string][]string, len(d.Adjacency))
	for from, neighbors := range d.Adjacency {
		key := domain.NormalizeID(from)
		for _, to := range neighbors {
			adjacency[key] = append(adjacency[key], domain.NormalizeID(to))
		}
	}
	return locations, adjacency, nil
}

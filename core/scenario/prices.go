package scenario

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// PricePoint is one entry of a year-indexed price projection.
type PricePoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// PriceTable is an ordered sequence of (year, value) pairs. Years need not be
// contiguous: Lookup interpolates linearly between the bracketing entries and
// clamps to the boundary values outside the projected range.
type PriceTable struct {
	name   string
	points []PricePoint
}

// NewPriceTable builds a table from a year-indexed map, as exchanged with
// config files and API payloads.
func NewPriceTable(name string, byYear map[int]float64) PriceTable {
	points := make([]PricePoint, 0, len(byYear))
	for y, v := range byYear {
		points = append(points, PricePoint{Year: y, Value: v})
	}
	return NewPriceTableFromPoints(name, points)
}

// NewPriceTableFromPoints builds a table from explicit points, sorting by year.
// An empty input yields a table indistinguishable from an absent one, so
// serialization round-trips preserve value equality.
func NewPriceTableFromPoints(name string, points []PricePoint) PriceTable {
	if len(points) == 0 {
		return PriceTable{name: name}
	}
	sorted := make([]PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return PriceTable{name: name, points: sorted}
}

// Constant returns a single-entry table, handy for flat price assumptions.
func Constant(name string, year int, value float64) PriceTable {
	return PriceTable{name: name, points: []PricePoint{{Year: year, Value: value}}}
}

// Name identifies the table in error messages.
func (t PriceTable) Name() string { return t.name }

// Len reports the number of projection points.
func (t PriceTable) Len() int { return len(t.points) }

// Points returns a copy of the ordered projection points.
func (t PriceTable) Points() []PricePoint {
	out := make([]PricePoint, len(t.points))
	copy(out, t.points)
	return out
}

// ToMap converts back to the year-indexed form for serialization.
func (t PriceTable) ToMap() map[int]float64 {
	m := make(map[int]float64, len(t.points))
	for _, p := range t.points {
		m[p.Year] = p.Value
	}
	return m
}

// Scaled returns a copy of the table with every value multiplied by f.
func (t PriceTable) Scaled(f float64) PriceTable {
	if len(t.points) == 0 {
		return PriceTable{name: t.name}
	}
	points := make([]PricePoint, len(t.points))
	for i, p := range t.points {
		points[i] = PricePoint{Year: p.Year, Value: p.Value * f}
	}
	return PriceTable{name: t.name, points: points}
}

// MarshalJSON encodes the table in the year-indexed map form used at the
// collaborator boundary, e.g. {"2025": 0.20, "2035": 0.10}.
func (t PriceTable) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(t.points))
	for _, p := range t.points {
		m[strconv.Itoa(p.Year)] = p.Value
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the year-indexed map form. The table name is restored
// during scenario validation.
func (t *PriceTable) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	points := make([]PricePoint, 0, len(m))
	for k, v := range m {
		year, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("price table: invalid year key %q: %w", k, err)
		}
		points = append(points, PricePoint{Year: year, Value: v})
	}
	*t = NewPriceTableFromPoints(t.name, points)
	return nil
}

// Lookup returns the price for the given year. Years between two projection
// points are linearly interpolated; years outside the projected range clamp
// to the nearest boundary entry. An empty table is a MissingDataError.
func (t PriceTable) Lookup(year int) (float64, error) {
	if len(t.points) == 0 {
		return 0, &MissingDataError{Table: t.name, Year: year}
	}
	first, last := t.points[0], t.points[len(t.points)-1]
	if year <= first.Year {
		return first.Value, nil
	}
	if year >= last.Year {
		return last.Value, nil
	}
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].Year >= year })
	hi := t.points[i]
	if hi.Year == year {
		return hi.Value, nil
	}
	lo := t.points[i-1]
	f := float64(year-lo.Year) / float64(hi.Year-lo.Year)
	return lo.Value + f*(hi.Value-lo.Value), nil
}

package object

import "math"

// NoData keeps only the identity and locator of an object. It is the answer
// form for queries that do not need the object content.
type NoData struct {
	id      ID
	locator string
}

// NewNoData strips o down to its identity and locator.
func NewNoData(o Object) *NoData {
	return &NoData{id: o.ID(), locator: o.Locator()}
}

func (n *NoData) ID() ID          { return n.id }
func (n *NoData) Locator() string { return n.locator }

// Distance is undefined for NoData and always returns +Inf.
func (n *NoData) Distance(Object) float32 {
	return float32(math.Inf(1))
}

// Record returns the wire form.
func (n *NoData) Record() (Record, error) {
	return Record{Kind: KindNoData, ID: idString(n.id), Locator: n.locator}, nil
}

func decodeNoData(r Record) (Object, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return nil, err
	}
	return &NoData{id: id, locator: r.Locator}, nil
}

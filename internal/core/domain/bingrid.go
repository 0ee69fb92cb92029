package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attribute identifies one derived bin-grid parameter. Values are the
// P6 parameter codes used by downstream consumers.
type Attribute int

const (
	P6BinGridOriginI               Attribute = 1
	P6BinGridOriginJ               Attribute = 2
	P6BinGridOriginEasting         Attribute = 3
	P6BinGridOriginNorthing        Attribute = 4
	P6BinNodeIncrementOnIaxis      Attribute = 5
	P6BinNodeIncrementOnJaxis      Attribute = 6
	P6BinWidthOnIaxis              Attribute = 7
	P6BinWidthOnJaxis              Attribute = 8
	P6TransformationMethod         Attribute = 10
	P6MapGridBearingOfBinGridJaxis Attribute = 11
	BinGridLocalCoordinates        Attribute = 12
)

// Transformation method codes.
const (
	TransformationMethodRightHanded = 9666
	TransformationMethodLeftHanded  = 1049
)

var attributeNames = map[Attribute]string{
	P6BinGridOriginI:               "P6BinGridOriginI",
	P6BinGridOriginJ:               "P6BinGridOriginJ",
	P6BinGridOriginEasting:         "P6BinGridOriginEasting",
	P6BinGridOriginNorthing:        "P6BinGridOriginNorthing",
	P6BinNodeIncrementOnIaxis:      "P6BinNodeIncrementOnIaxis",
	P6BinNodeIncrementOnJaxis:      "P6BinNodeIncrementOnJaxis",
	P6BinWidthOnIaxis:              "P6BinWidthOnIaxis",
	P6BinWidthOnJaxis:              "P6BinWidthOnJaxis",
	P6TransformationMethod:         "P6TransformationMethod",
	P6MapGridBearingOfBinGridJaxis: "P6MapGridBearingOfBinGridJaxis",
	BinGridLocalCoordinates:        "BinGridLocalCoordinates",
}

// Attributes returns every attribute in declaration order.
func Attributes() []Attribute {
	return []Attribute{
		P6BinGridOriginI,
		P6BinGridOriginJ,
		P6BinGridOriginEasting,
		P6BinGridOriginNorthing,
		P6BinNodeIncrementOnIaxis,
		P6BinNodeIncrementOnJaxis,
		P6BinWidthOnIaxis,
		P6BinWidthOnJaxis,
		P6TransformationMethod,
		P6MapGridBearingOfBinGridJaxis,
		BinGridLocalCoordinates,
	}
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return "Attribute(" + strconv.Itoa(int(a)) + ")"
}

// ParseAttribute resolves an attribute by name.
func ParseAttribute(name string) (Attribute, error) {
	for a, n := range attributeNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown bin grid attribute %q", name)
}

// Decimal is a float that always carries a fractional part on the wire
// (180 is written as 180.0), matching the integer/float split consumers expect.
type Decimal float64

func (d Decimal) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(d), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return []byte(s), nil
}

// LocalCoordinate is one bin-grid corner in annotation space.
type LocalCoordinate struct {
	X int `json:"X"`
	Y int `json:"Y"`
}

// AttributeValue pairs an attribute with its derived value.
type AttributeValue struct {
	Attribute Attribute
	Value     any
}

// BinGrid is the full set of derived attributes in declaration order.
type BinGrid []AttributeValue

// Get returns the value for an attribute.
func (g BinGrid) Get(a Attribute) (any, bool) {
	for _, av := range g {
		if av.Attribute == a {
			return av.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes an object keyed by attribute name, preserving order.
func (g BinGrid) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, av := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(av.Attribute.String())
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(av.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", av.Attribute, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a grid written by MarshalJSON. Key order is kept;
// numbers keep the int/decimal split of the encoded form.
func (g *BinGrid) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("bin grid: expected object")
	}

	var out BinGrid
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		attr, err := ParseAttribute(tok.(string))
		if err != nil {
			return err
		}

		if attr == BinGridLocalCoordinates {
			var coords []LocalCoordinate
			if err := dec.Decode(&coords); err != nil {
				return fmt.Errorf("decode %s: %w", attr, err)
			}
			out = append(out, AttributeValue{Attribute: attr, Value: coords})
			continue
		}

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("decode %s: %w", attr, err)
		}
		val, err := numberValue(n)
		if err != nil {
			return fmt.Errorf("decode %s: %w", attr, err)
		}
		out = append(out, AttributeValue{Attribute: attr, Value: val})
	}

	*g = out
	return nil
}

func numberValue(n json.Number) (any, error) {
	if strings.ContainsAny(n.String(), ".eE") {
		f, err := n.Float64()
		return Decimal(f), err
	}
	i, err := n.Int64()
	return int(i), err
}

// Indent returns the grid as JSON indented with two spaces.
func (g BinGrid) Indent() ([]byte, error) {
	raw, err := g.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package marker implements the HTML convention that lets a hydrator find
// server-rendered islands and recover their component id, initial props and
// render mode.
//
// An island is a single container element:
//
//	<div data-component="Counter" data-props='{"start":1}'>...server html...</div>
//	<div data-component="Counter" data-props='{"start":1}' data-client-only="true"></div>
//
// The container is the unit of scanning. Islands nested inside another
// island's markup are not discovered.
package marker

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/go-json-experiment/json"
)

// Attribute names of the wire contract.
const (
	AttrComponent  = "data-component"
	AttrProps      = "data-props"
	AttrClientOnly = "data-client-only"
)

// Tag is the container element name.
const Tag = "div"

// EmptyProps is the props text used when none are supplied.
const EmptyProps = "{}"

// ErrMissingComponent is returned by Decode when the container has no
// component id.
var ErrMissingComponent = errors.New("marker: missing " + AttrComponent)

// Marker is the serialized unit of a rendered island.
type Marker struct {
	ID         string
	Props      []byte // JSON object text; nil means EmptyProps
	ClientOnly bool
	Inner      string // server-rendered body, ignored when ClientOnly
}

var propsEscaper = strings.NewReplacer(
	"&", "&amp;",
	"'", "&#39;",
	"<", "&lt;",
	">", "&gt;",
)

// Open returns the opening tag of the container.
func Open(m Marker) string {
	props := EmptyProps
	if len(m.Props) > 0 {
		props = string(m.Props)
	}
	var sb strings.Builder
	sb.WriteString(`<` + Tag + ` ` + AttrComponent + `="`)
	sb.WriteString(html.EscapeString(m.ID))
	sb.WriteString(`" ` + AttrProps + `='`)
	sb.WriteString(propsEscaper.Replace(props))
	sb.WriteString(`'`)
	if m.ClientOnly {
		sb.WriteString(` ` + AttrClientOnly + `="true"`)
	}
	sb.WriteString(`>`)
	return sb.String()
}

// Close returns the closing tag of the container.
func Close() string {
	return `</` + Tag + `>`
}

// Encode renders the complete marker element. Client-only markers always
// have an empty body.
func Encode(m Marker) string {
	if m.ClientOnly {
		return Open(m) + Close()
	}
	return Open(m) + m.Inner + Close()
}

// Write writes the encoded marker to w.
func Write(w io.Writer, m Marker) error {
	_, err := io.WriteString(w, Encode(m))
	return err
}

// EncodeProps serializes props as a JSON object with sorted keys.
func EncodeProps(props map[string]any) ([]byte, error) {
	if props == nil {
		return []byte(EmptyProps), nil
	}
	return json.Marshal(props, json.Deterministic(true))
}

// DecodeProps parses a data-props value. An empty value yields an empty map.
func DecodeProps(raw string) (map[string]any, error) {
	props := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return map[string]any{}, err
	}
	if props == nil {
		// JSON null
		props = map[string]any{}
	}
	return props, nil
}

// Decoded is the client-side view of a marker.
type Decoded struct {
	ID         string
	Props      map[string]any
	ClientOnly bool

	// PropsErr is set when data-props was present but malformed. Props is
	// then empty; the island is still mountable.
	PropsErr error
}

// Decode reads a marker through attr, which reports an attribute's value
// and whether it is present. Only a missing component id is an error.
func Decode(attr func(key string) (string, bool)) (Decoded, error) {
	id, ok := attr(AttrComponent)
	if !ok || id == "" {
		return Decoded{}, ErrMissingComponent
	}
	d := Decoded{ID: id}
	_, d.ClientOnly = attr(AttrClientOnly)
	raw, _ := attr(AttrProps)
	props, err := DecodeProps(raw)
	if err != nil {
		d.PropsErr = fmt.Errorf("%s of %q: %w", AttrProps, id, err)
	}
	d.Props = props
	return d, nil
}

package islands

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/pthm/islands/lib/marker"
)

// Props is the initial data passed to an island. It is always a JSON object
// whose values survive a JSON round trip unchanged: numbers are float64,
// arrays are []any and objects are map[string]any.
type Props map[string]any

// NewProps builds Props from a map or struct, rejecting values that cannot
// be represented in JSON (functions, channels, NaN and infinities, cyclic
// values) and values that do not encode to a JSON object.
//
//	props, err := islands.NewProps(CounterProps{Start: 3})
func NewProps(v any) (Props, error) {
	if v == nil {
		return Props{}, nil
	}
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProps, err)
	}
	props := Props{}
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProps, err)
	}
	if props == nil {
		props = Props{}
	}
	return props, nil
}

// MustProps is like NewProps but panics on error. Use it for literals.
func MustProps(v any) Props {
	p, err := NewProps(v)
	if err != nil {
		panic(err)
	}
	return p
}

// JSON returns the canonical (sorted keys) JSON text of the props.
func (p Props) JSON() ([]byte, error) {
	return marker.EncodeProps(p)
}

// Decode copies the props into v, typically a pointer to a struct with json
// tags. Field names match case-sensitively.
func (p Props) Decode(v any) error {
	data, err := p.JSON()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProps, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrPropsDecode, err)
	}
	return nil
}

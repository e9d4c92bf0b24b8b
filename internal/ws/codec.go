package ws

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Frame is one protocol message: a self-describing map with a mandatory
// "type" string key.
type Frame map[string]any

// Type returns the frame's type tag, or "" when absent or not a string.
func (f Frame) Type() string {
	tag, _ := f["type"].(string)
	return tag
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("ws: CBOR encoder initialization failed: " + err.Error())
	}

	// Frames decode into map[string]any; the CBOR default for any-typed
	// targets is map[interface{}]interface{}, which nothing downstream
	// wants.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("ws: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes a frame payload to CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

package islands

import (
	"errors"
	"fmt"

	"github.com/pthm/islands/lib/manifest"
)

// Sentinel errors for island operations.
var (
	ErrUnknownComponent = errors.New("islands: unknown component")
	ErrRender           = errors.New("islands: render failed")
	ErrPropsDecode      = errors.New("islands: props decode failed")
	ErrManifestLoad     = manifest.ErrLoad
	ErrMount            = errors.New("islands: mount failed")
	ErrInvalidProps     = errors.New("islands: props are not JSON-safe")
	ErrDecryptFailed    = errors.New("islands: parameter decryption failed")
	ErrSignatureInvalid = errors.New("islands: signature verification failed")
	ErrInvalidFormat    = errors.New("islands: invalid parameter format")
)

// RenderError reports a server-side render failure for one island. It
// matches ErrRender with errors.Is and unwraps to the underlying cause.
type RenderError struct {
	ID  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("islands: render %q: %v", e.ID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// MountError reports a client-side load or mount failure for one island.
type MountError struct {
	ID  string
	Err error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("islands: mount %q: %v", e.ID, e.Err)
}

func (e *MountError) Unwrap() error {
	return e.Err
}

func (e *MountError) Is(target error) bool {
	return target == ErrMount
}

// unknownComponent wraps ErrUnknownComponent with the offending id.
func unknownComponent(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
}

// IsUnknownComponent checks if err is an unknown-component error.
func IsUnknownComponent(err error) bool {
	return errors.Is(err, ErrUnknownComponent)
}

// IsRenderError checks if err is a server render failure.
func IsRenderError(err error) bool {
	return errors.Is(err, ErrRender)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// IsBadRequest checks if err was caused by malformed client input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrInvalidProps)
}

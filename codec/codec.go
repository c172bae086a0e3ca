// Package codec wraps image codecs behind a small engine interface and
// measures how faithfully a compress/decompress round trip preserves the
// input.
//
// Engines are selected with spec strings of the form "name:param:param",
// for example "jpeg:q90" or "png:c3". Each param is handed to the engine's
// ParseParam in order.
package codec

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Errors returned by engine construction and parameter parsing.
var (
	ErrUnknownCodec      = errors.New("codec: unknown codec")
	ErrUnrecognizedParam = errors.New("codec: unrecognized param")
	ErrEmptyImage        = errors.New("codec: empty image")
)

// Codec is one compression engine. Engines are not safe for concurrent use
// while ParseParam is being called.
type Codec interface {
	// Name returns the engine name used in spec strings.
	Name() string
	// ParseParam applies one ":"-separated parameter. Unknown parameters
	// return an error wrapping ErrUnrecognizedParam.
	ParseParam(param string) error
	Compress(img image.Image) ([]byte, error)
	Decompress(data []byte) (image.Image, error)
}

// Factory constructs a codec with default parameters.
type Factory func() Codec

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"jpeg": newJPEG,
		"png":  newPNG,
		"bmp":  newBMP,
		"tiff": newTIFF,
		"webp": newWebP,
		"zstd": newZstd,
	}
)

// Register makes a codec available to New under name. Registering an
// existing name replaces it.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds a codec from a spec string "name[:param...]".
func New(spec string) (Codec, error) {
	parts := strings.Split(spec, ":")
	registryMu.RLock()
	f, ok := registry[parts[0]]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, parts[0])
	}
	c := f()
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		if err := c.ParseParam(p); err != nil {
			return nil, fmt.Errorf("codec %s: %w", parts[0], err)
		}
	}
	return c, nil
}

func unrecognized(param string) error {
	return fmt.Errorf("%w: %q", ErrUnrecognizedParam, param)
}

// intParam parses params of the form <prefix><int> within [lo, hi].
func intParam(param, prefix string, lo, hi int) (int, bool) {
	s, ok := strings.CutPrefix(param, prefix)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, false
	}
	return v, true
}

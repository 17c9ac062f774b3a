package schema

import (
	"errors"
	"fmt"
)

// Sentinel classes, matched with errors.Is.
var (
	ErrMalformed         = errors.New("malformed document")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMediaNotFound     = errors.New("media not found")
)

// MalformedManifestError reports a language manifest missing a required key
// or holding an unusable value for it.
type MalformedManifestError struct {
	Path string
	Key  string
	Err  error
}

func (e *MalformedManifestError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("invalid '%s' key in: %s: %v", e.Key, e.Path, e.Err)
	}
	return fmt.Sprintf("missing required '%s' key in: %s", e.Key, e.Path)
}

func (e *MalformedManifestError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// MalformedDataError reports a data file that cannot be read as a data file.
// Key is empty when the file is not valid JSON at all.
type MalformedDataError struct {
	Path string
	Key  string
	Err  error
}

func (e *MalformedDataError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("invalid '%s' key in: %s: %v", e.Key, e.Path, e.Err)
	}
	return fmt.Sprintf("missing required '%s' key in: %s", e.Key, e.Path)
}

func (e *MalformedDataError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// UnsupportedFormatError reports a data file declaring a format the
// pipeline cannot normalize.
type UnsupportedFormatError struct {
	Path   string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format '%s' in: %s", e.Format, e.Path)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// MediaNotFoundError reports a media reference with no file behind it.
type MediaNotFoundError struct {
	Dir  string
	Name string
}

func (e *MediaNotFoundError) Error() string {
	return fmt.Sprintf("media file '%s' not found in: %s", e.Name, e.Dir)
}

func (e *MediaNotFoundError) Unwrap() error { return ErrMediaNotFound }

// IsFatal reports whether err must abort the whole run rather than skip a file.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrMediaNotFound)
}

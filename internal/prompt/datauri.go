package prompt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// ParseDataURI decodes a base64 data URI of the form data:<mime>;base64,<payload>.
// MIME parameters such as codecs are dropped from the returned media type.
func ParseDataURI(uri string) (models.Media, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return models.Media{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return models.Media{}, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}
	meta, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return models.Media{}, fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidDataURI)
	}
	mediaType, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(mediaType, "/") {
		return models.Media{}, fmt.Errorf("%w: missing MIME type", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return models.Media{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return models.Media{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return models.Media{MediaType: strings.ToLower(mediaType), Data: data}, nil
}

// EncodeDataURI builds a base64 data URI for the given media.
func EncodeDataURI(m models.Media) string {
	return "data:" + m.MediaType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

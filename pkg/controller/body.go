package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"shoptogether/pkg/serrors"

	"github.com/go-faster/jx"
)

// DefaultBodyLimit matches the usual 100kb limit of JSON APIs.
const DefaultBodyLimit int64 = 100 * 1024

const (
	mediaJSON = "application/json"
	mediaForm = "application/x-www-form-urlencoded"
)

type bodyKey struct{}

// Body returns the decoded request body. Requests that carried no decodable
// body yield an empty object.
func Body(ctx context.Context) any {
	if v := ctx.Value(bodyKey{}); v != nil {
		return v
	}

	return map[string]any{}
}

// Bind copies the decoded body into dst using JSON field rules.
func Bind(r *http.Request, dst any) error {
	raw, err := json.Marshal(Body(r.Context()))
	if err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

// DecodeBody returns the body decoding stage. JSON bodies must hold an object or
// an array; url-encoded bodies are expanded into nested objects and arrays.
// Other content types are left unread. A malformed or oversized body is a
// BadRequest error.
func DecodeBody(limit int64) Stage {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	return StageFunc(func(w http.ResponseWriter, r *http.Request) (*http.Request, Verdict, error) {
		media := mediaType(r)
		if r.Body == nil || (media != mediaJSON && media != mediaForm) {
			return r, Next, nil
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, Next, serrors.Wrap(serrors.ErrBadRequest, err, "request entity too large")
			}

			return nil, Next, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
		}

		var value any
		if media == mediaJSON {
			value, err = decodeJSON(raw)
		} else {
			value, err = ParseForm(string(raw))
		}
		if err != nil {
			return nil, Next, err
		}

		return r.WithContext(context.WithValue(r.Context(), bodyKey{}, value)), Next, nil
	})
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}

	return media
}

func decodeJSON(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	if err := jx.DecodeBytes(raw).Validate(); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "malformed JSON body")
	}

	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.Object, jx.Array:
	default:
		return nil, serrors.With(serrors.ErrBadRequest, "malformed JSON body: top-level value must be an object or array")
	}

	v, err := decodeValue(d)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "malformed JSON body")
	}

	return v, nil
}

func decodeValue(d *jx.Decoder) (any, error) {
	switch d.Next() {
	case jx.Object:
		obj := map[string]any{}
		err := d.Obj(func(d *jx.Decoder, key string) error {
			v, err := decodeValue(d)
			if err != nil {
				return err
			}
			obj[key] = v

			return nil
		})

		return obj, err //nolint: wrapcheck
	case jx.Array:
		arr := []any{}
		err := d.Arr(func(d *jx.Decoder) error {
			v, err := decodeValue(d)
			if err != nil {
				return err
			}
			arr = append(arr, v)

			return nil
		})

		return arr, err //nolint: wrapcheck
	case jx.String:
		return d.Str() //nolint: wrapcheck
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err //nolint: wrapcheck
		}
		if n.IsInt() {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		}

		return n.Float64() //nolint: wrapcheck
	case jx.Bool:
		return d.Bool() //nolint: wrapcheck
	case jx.Null:
		return nil, d.Null() //nolint: wrapcheck
	default:
		return nil, d.Skip() //nolint: wrapcheck
	}
}

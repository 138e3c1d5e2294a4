package weberr

import "errors"

// Opt decorates an error with data for the Errors middleware.
type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

// WithResponse sets the body and status sent to the client. The outermost
// response wins.
func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

// WithFields attaches structured log fields. Fields from every layer of the
// chain are merged when logged.
func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

// Response returns the outermost response attached to err.
func Response(err error) (body interface{}, status int, ok bool) {
	var re *responseError
	if errors.As(err, &re) {
		return re.body, re.status, true
	}
	return nil, 0, false
}

// Fields merges the log fields attached anywhere in the chain of err. Keys
// set closer to the top take precedence.
func Fields(err error) (map[string]interface{}, bool) {
	var out map[string]interface{}
	for ; err != nil; err = errors.Unwrap(err) {
		fe, ok := err.(*fieldsError)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]interface{}, len(fe.fields))
		}
		for k, v := range fe.fields {
			if _, set := out[k]; !set {
				out[k] = v
			}
		}
	}
	return out, out != nil
}

type responseError struct {
	error
	body   interface{}
	status int
}

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]interface{}
}

func (e *fieldsError) Unwrap() error { return e.error }

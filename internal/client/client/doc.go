// Package client talks to the ProjectKeeper HTTP API.
//
// HTTPClient unwraps the {code, message, data} success envelope and turns
// error envelopes into *APIError values. Common conditions can be matched
// with errors.Is: ErrUnavailable for transport failures, ErrUnauthorized for
// 401 answers.
package client

package goksql

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a KsqlError by the policy the executor applies to it.
type ErrorKind string

const (
	// KindCompilationFailure marks a query whose text could not be resolved to column names.
	// The executor recovers from it by projecting nothing.
	KindCompilationFailure ErrorKind = "compilation"
	// KindTransportFailure marks a connection error or a non-2xx answer from the engine.
	KindTransportFailure ErrorKind = "transport"
	// KindSchemaMismatch marks a row whose arity differs from the resolved column list.
	KindSchemaMismatch ErrorKind = "schema"
	// KindMalformedResponse marks an engine answer that could not be interpreted.
	KindMalformedResponse ErrorKind = "response"
	// KindConfiguration marks an invalid or incomplete Config.
	KindConfiguration ErrorKind = "config"
	// KindExport marks a failure while writing a result to its export location.
	KindExport ErrorKind = "export"
)

// KsqlError is the error type returned by every goksql operation that talks to the engine.
type KsqlError struct {
	Number       int
	Kind         ErrorKind
	Statement    string
	HTTPStatus   int
	ResponseBody string
	Message      string
	MessageArgs  []interface{}
	cause        error
}

func (ke *KsqlError) Error() string {
	message := ke.Message
	if len(ke.MessageArgs) > 0 {
		message = fmt.Sprintf(ke.Message, ke.MessageArgs...)
	}
	if ke.cause != nil {
		message = fmt.Sprintf("%s: %v", message, ke.cause)
	}
	if ke.Statement != "" {
		return fmt.Sprintf("%06d (%s): %s: statement=%s", ke.Number, ke.Kind, message, ke.Statement)
	}
	return fmt.Sprintf("%06d (%s): %s", ke.Number, ke.Kind, message)
}

func (ke *KsqlError) Unwrap() error {
	return ke.cause
}

// Is matches another *KsqlError by number, so preformatted errors work with errors.Is.
func (ke *KsqlError) Is(target error) bool {
	var other *KsqlError
	if !errors.As(target, &other) {
		return false
	}
	return other.Number == ke.Number
}

func (ke *KsqlError) withCause(err error) *KsqlError {
	ke.cause = err
	return ke
}

const (
	// configuration

	// ErrCodeEmptyBaseURL is an error code for the case where no engine URL was configured.
	ErrCodeEmptyBaseURL = 270000
	// ErrCodeFailedToParseDSN is an error code for the case where a DSN cannot be parsed.
	ErrCodeFailedToParseDSN = 270001
	// ErrCodeInvalidAuthenticator is an error code for an unknown or incomplete authenticator setting.
	ErrCodeInvalidAuthenticator = 270002
	// ErrCodeFailedToFindDSNInToml is an error code for a connection name missing from connections.toml.
	ErrCodeFailedToFindDSNInToml = 270003
	// ErrCodeTomlFileParsingFailed is an error code for an invalid value in connections.toml.
	ErrCodeTomlFileParsingFailed = 270004
	// ErrCodePrivateKeyParseError is an error code for a private key that cannot be decoded.
	ErrCodePrivateKeyParseError = 270005
	// ErrCodeNilQuery is an error code for Execute called without a query.
	ErrCodeNilQuery = 270006

	// engine

	// ErrCodeRequestFailed is an error code for a transport error or non-2xx engine response.
	ErrCodeRequestFailed = 271000
	// ErrCodeEmptyDescribeResponse is an error code for a describe response without a source description.
	ErrCodeEmptyDescribeResponse = 271001
	// ErrCodeFailedToDecodeResponse is an error code for an engine response that is not valid JSON.
	ErrCodeFailedToDecodeResponse = 271002
	// ErrCodeStreamDecode is an error code for a read or parse fault in the middle of a row stream.
	ErrCodeStreamDecode = 271003
	// ErrCodeColumnCountMismatch is an error code for a row whose arity differs from the column list.
	ErrCodeColumnCountMismatch = 271004
	// ErrCodeCompilationFailed is an error code for a query the compiler rejected.
	ErrCodeCompilationFailed = 271005

	// output and export

	// ErrCodeFailedToEncodeOutput is an error code for an envelope that could not be encoded.
	ErrCodeFailedToEncodeOutput = 272000
	// ErrCodeUnsupportedLocation is an error code for an export location with an unknown scheme.
	ErrCodeUnsupportedLocation = 272001
	// ErrCodeExportFailed is an error code for a storage backend that refused the upload.
	ErrCodeExportFailed = 272002
)

const (
	errMsgRequestFailed           = "request to %v failed with HTTP status %v"
	errMsgRequestNotSent          = "failed to send request to %v"
	errMsgEmptyDescribeResponse   = "describe response for source %v carries no source description"
	errMsgFailedToDecodeResponse  = "failed to decode response from %v"
	errMsgStreamDecode            = "failed to decode row stream"
	errMsgStreamInterrupted       = "row stream from %v was interrupted"
	errMsgColumnCountMismatch     = "select columns count %v is not the same as the query result count %v"
	errMsgFailedToFindDSNInToml   = "failed to find connection %v in connections.toml"
	errMsgFailedToParseTomlFile   = "failed to parse the value of %v in connections.toml: %v"
	errMsgFailedToParseDSN        = "failed to parse DSN"
	errMsgInvalidAuthenticator    = "invalid authenticator %v"
	errMsgFailedToEncodeOutput    = "failed to encode %v output"
	errMsgUnsupportedLocation     = "unsupported export location %v"
	errMsgExportFailed            = "failed to export result to %v"
	errMsgMissingAuthCredential   = "authenticator %v requires %v"
	errMsgCompilationFailed       = "failed to compile query"
	errMsgPrivateKeyParseFailed   = "failed to parse private key"
	errMsgUnsupportedOutputFormat = "unsupported output format %v"
)

var (
	// preformatted errors

	// ErrEmptyBaseURL is returned if neither a base URL nor a host was configured.
	ErrEmptyBaseURL = &KsqlError{
		Number:  ErrCodeEmptyBaseURL,
		Kind:    KindConfiguration,
		Message: "base URL is empty",
	}
	// ErrNilQuery is returned if Execute is called with a nil query.
	ErrNilQuery = &KsqlError{
		Number:  ErrCodeNilQuery,
		Kind:    KindConfiguration,
		Message: "query is nil",
	}
)

// IsSchemaMismatch reports whether err carries a row arity mismatch.
func IsSchemaMismatch(err error) bool {
	return hasKind(err, KindSchemaMismatch)
}

// IsTransportFailure reports whether err was caused by a failed engine request.
func IsTransportFailure(err error) bool {
	return hasKind(err, KindTransportFailure)
}

// IsMalformedResponse reports whether err was caused by an engine answer that could not be interpreted.
func IsMalformedResponse(err error) bool {
	return hasKind(err, KindMalformedResponse)
}

func hasKind(err error, kind ErrorKind) bool {
	var ke *KsqlError
	if !errors.As(err, &ke) {
		return false
	}
	return ke.Kind == kind
}

package goksql

import (
	"errors"
	"fmt"
	"testing"
)

func TestKsqlErrorFormat(t *testing.T) {
	err := &KsqlError{
		Number:      ErrCodeRequestFailed,
		Kind:        KindTransportFailure,
		Statement:   "select a from t",
		Message:     errMsgRequestFailed,
		MessageArgs: []interface{}{queryEndpoint, 400},
	}
	assertEqualE(t, err.Error(), "271000 (transport): request to /query failed with HTTP status 400: statement=select a from t")

	cause := errors.New("EOF")
	wrapped := (&KsqlError{Number: ErrCodeStreamDecode, Kind: KindMalformedResponse, Message: errMsgStreamDecode}).withCause(cause)
	assertEqualE(t, wrapped.Error(), "271003 (response): failed to decode row stream: EOF")
	assertErrIsE(t, wrapped, cause)
}

func TestKsqlErrorIsMatchesNumber(t *testing.T) {
	err := fmt.Errorf("executor: %w", &KsqlError{Number: ErrCodeEmptyBaseURL, Kind: KindConfiguration, Message: "other text"})
	assertErrIsE(t, err, ErrEmptyBaseURL)
	assertFalseE(t, errors.Is(err, ErrNilQuery))
}

func TestErrorKindHelpers(t *testing.T) {
	mismatch := fmt.Errorf("wrapped: %w", &KsqlError{Number: ErrCodeColumnCountMismatch, Kind: KindSchemaMismatch})
	assertTrueE(t, IsSchemaMismatch(mismatch))
	assertFalseE(t, IsTransportFailure(mismatch))
	assertFalseE(t, IsMalformedResponse(errors.New("plain")))
	assertFalseE(t, IsSchemaMismatch(nil))
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeInvalidParam, "bad input")
	assert.Equal(t, "[COMMON_002] bad input", err.Error())

	withDetail := err.WithDetail("lat=99")
	assert.Equal(t, "[COMMON_002] bad input: lat=99", withDetail.Error())
	// Original is not mutated.
	assert.Equal(t, "", err.Detail)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "should be nil"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := New(CodeUpstreamUnavailable, "service down")
	wrapped := Wrap(inner, CodeUnknown, "query failed")
	assert.Equal(t, CodeUpstreamUnavailable, wrapped.Code)
}

func TestWrap_UnwrapChain(t *testing.T) {
	root := stderrors.New("connection refused")
	mid := Wrap(root, CodeUpstreamUnavailable, "transport failure")
	outer := fmt.Errorf("resolving zoning: %w", mid)

	assert.True(t, IsCode(outer, CodeUpstreamUnavailable))
	assert.True(t, stderrors.Is(outer, root))
}

func TestIsCode_NoMatch(t *testing.T) {
	err := New(CodeNotFound, "missing")
	assert.False(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(nil, CodeInternal))
}

func TestIsInvalidParam(t *testing.T) {
	assert.True(t, IsInvalidParam(New(CodeInvalidParam, "x")))
	assert.True(t, IsInvalidParam(New(CodeJurisdictionUnsupported, "x")))
	assert.True(t, IsInvalidParam(New(CodeCoordinateOutOfRange, "x")))
	assert.False(t, IsInvalidParam(New(CodeInternal, "x")))
}

func TestIsUpstream(t *testing.T) {
	assert.True(t, IsUpstream(New(CodeUpstreamUnavailable, "x")))
	assert.True(t, IsUpstream(New(CodeUpstreamRejected, "x")))
	assert.True(t, IsUpstream(New(CodeTimeout, "x")))
	assert.False(t, IsUpstream(New(CodeSalesStoreError, "x")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeValuationFailed, GetCode(New(CodeValuationFailed, "x")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "GEO", ModuleForCode(CodeUpstreamUnavailable))
	assert.Equal(t, "SALES", ModuleForCode(CodeSalesStoreError))
	assert.Equal(t, "COMMON", ModuleForCode(CodeInternal))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "unsupported jurisdiction", DefaultMessageForCode(CodeJurisdictionUnsupported))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("BOGUS_999")))
}

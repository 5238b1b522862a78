package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrame_BitSize_IncludesOverhead(t *testing.T) {
	f := NewFrame(1, 0, 1, 100)
	assert.Equal(t, uint64((100+FrameOverheadBytes)*8), f.BitSize())
	assert.Equal(t, 100+FrameOverheadBytes, f.TotalBytes())
}

func TestFrame_NewFrame_DefaultsToAccessRead(t *testing.T) {
	f := NewFrame(1, 0, 1, 64)
	assert.Equal(t, AccessRead, f.AccessType())
}

func TestFrame_NewAccessFrame_SetsAccessType(t *testing.T) {
	f := NewAccessFrame(1, 0, 1, 64, AccessWrite)
	assert.Equal(t, AccessWrite, f.AccessType())
	assert.Equal(t, 64, f.AccessSizeBytes())
}

func TestFrame_ToResponse_SwapsSourceAndDestination(t *testing.T) {
	request := NewAccessFrame(1, 3, 7, 64, AccessRead)

	response := request.ToResponse(2, 64)

	assert.Equal(t, uint64(2), response.ID())
	assert.Equal(t, request.Destination(), response.Source())
	assert.Equal(t, request.Source(), response.Destination())
	assert.Equal(t, 64, response.PayloadBytes())
}

func TestAccessType_String(t *testing.T) {
	assert.Equal(t, "read", AccessRead.String())
	assert.Equal(t, "write", AccessWrite.String())
	assert.Equal(t, "write-non-posted", AccessWriteNonPosted.String())
	assert.Equal(t, "control", AccessControl.String())
}

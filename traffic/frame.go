// Package traffic implements the reference workload generator used to
// drive a fabric: frames addressed by a configurable traffic pattern, one
// Source per active ingress and one Sink per egress, and an optional
// progress reporter. A finish-tick bound is not part of this package; it
// is the maxTicks argument of engine.Engine.Run.
package traffic

// FrameOverheadBytes is the fixed per-frame header/framing cost added to
// every frame's payload when accounting for total bytes moved, matching
// the 20-byte Ethernet-frame overhead the reference application sizes its
// example frame payloads around.
const FrameOverheadBytes = 20

// AccessType classifies what a frame represents when it is carrying a
// memory-mapped access rather than plain traffic-generator payload. No
// component in this repository currently emits a frame with anything
// other than AccessRead set, but the shape is part of the wire contract
// so a future memory-side component can reuse Frame without widening it.
type AccessType int

const (
	// AccessRead requests data and expects a response carrying it.
	AccessRead AccessType = iota
	// AccessWrite carries data and expects a completion response.
	AccessWrite
	// AccessWriteNonPosted carries data but, unlike AccessWrite, the
	// issuer does not wait for a completion before continuing.
	AccessWriteNonPosted
	// AccessControl carries no payload of its own; it is a bare signal
	// (a doorbell or register access) addressed like any other frame.
	AccessControl
)

func (a AccessType) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessWriteNonPosted:
		return "write-non-posted"
	case AccessControl:
		return "control"
	default:
		return "unknown"
	}
}

// Frame is the payload type carried through a fabric: an addressed packet
// of fixed size. It satisfies engine.SimObject (ID/Tag/BitSize) and
// engine.Routable (Source/Destination).
type Frame struct {
	id           uint64
	source       int
	destination  int
	payloadBytes int
	accessType   AccessType
}

// NewFrame builds a frame with the given id, addressed from source to
// destination (fabric-wide flat port indices), carrying payloadBytes of
// payload. The frame's AccessType is AccessRead; use NewAccessFrame to
// build one representing a memory access.
func NewFrame(id uint64, source, destination, payloadBytes int) Frame {
	return Frame{id: id, source: source, destination: destination, payloadBytes: payloadBytes, accessType: AccessRead}
}

// NewAccessFrame builds a frame representing a memory access of the given
// type, addressed from source to destination, carrying payloadBytes of
// payload (zero for AccessControl or a read request with no inline data).
func NewAccessFrame(id uint64, source, destination, payloadBytes int, accessType AccessType) Frame {
	return Frame{id: id, source: source, destination: destination, payloadBytes: payloadBytes, accessType: accessType}
}

// ID returns the frame's identifier, used for tracing.
func (f Frame) ID() uint64 { return f.id }

// Tag returns a short label for arbiter/store debug logs.
func (f Frame) Tag() string { return "frame" }

// BitSize returns the frame's size on the wire in bits, including
// FrameOverheadBytes.
func (f Frame) BitSize() uint64 {
	return uint64(f.payloadBytes+FrameOverheadBytes) * 8
}

// Source returns the fabric-wide ingress port index this frame entered at.
func (f Frame) Source() int { return f.source }

// Destination returns the fabric-wide egress port index this frame is
// addressed to.
func (f Frame) Destination() int { return f.destination }

// PayloadBytes returns the frame's payload size, excluding overhead.
func (f Frame) PayloadBytes() int { return f.payloadBytes }

// AccessType returns what kind of memory access this frame represents.
func (f Frame) AccessType() AccessType { return f.accessType }

// AccessSizeBytes returns the size of the data this access carries or
// requests: the payload size for AccessWrite/AccessWriteNonPosted, and
// for AccessRead the number of bytes the issuer is asking the eventual
// response to carry (stashed in payloadBytes by the issuer, since a read
// request itself carries no data of its own).
func (f Frame) AccessSizeBytes() int { return f.payloadBytes }

// TotalBytes returns the frame's payload plus its fixed framing overhead,
// matching BitSize()/8.
func (f Frame) TotalBytes() int { return f.payloadBytes + FrameOverheadBytes }

// ToResponse builds the correlated response to this frame: source and
// destination swapped, carrying responsePayloadBytes of response data
// (the requested read data, or zero for a write completion), tagged
// AccessRead so a Sink can tell a response from a fresh request by
// checking which side of the exchange it arrived on.
func (f Frame) ToResponse(responseID uint64, responsePayloadBytes int) Frame {
	return Frame{
		id:           responseID,
		source:       f.destination,
		destination:  f.source,
		payloadBytes: responsePayloadBytes,
		accessType:   AccessRead,
	}
}
